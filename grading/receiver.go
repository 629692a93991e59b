package grading

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/programme-lv/autograde/srvcerror"
	"github.com/programme-lv/autograde/subm"
)

type ResultRecorder interface {
	RecordResult(ctx context.Context, p subm.ResultParams) error
}

// ResultMsg is what the grading service reports when it finishes a job.
type ResultMsg struct {
	JobID        string `json:"job_id"`
	SubmissionID int64  `json:"submission_id"`
	Passed       int    `json:"passed"`
	Failed       int    `json:"failed"`
}

type ResultReceiver struct {
	client   SqsAPI
	queueURL string
	recorder ResultRecorder
	logger   *slog.Logger
	waitSec  int32

	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewResultReceiver(client SqsAPI, queueURL string, recorder ResultRecorder, logger *slog.Logger) *ResultReceiver {
	return &ResultReceiver{
		client:   client,
		queueURL: queueURL,
		recorder: recorder,
		logger:   logger,
		waitSec:  10,

		minBackoff: time.Second,
		maxBackoff: 30 * time.Second,
	}
}

// WithBackoff sets the pause after a failed receive. It doubles on every
// consecutive failure up to max.
func (r *ResultReceiver) WithBackoff(min, max time.Duration) *ResultReceiver {
	r.minBackoff = min
	r.maxBackoff = max
	return r
}

// Run long-polls the result queue until ctx is cancelled.
func (r *ResultReceiver) Run(ctx context.Context) error {
	backoff := r.minBackoff
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		_, err := r.ReceiveOnce(ctx)
		if err == nil {
			backoff = r.minBackoff
			continue
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		r.logger.Error("failed to receive grading results", "error", err, "retry_in", backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(2*backoff, r.maxBackoff)
	}
}

// ReceiveOnce handles one batch and returns how many messages were applied.
func (r *ResultReceiver) ReceiveOnce(ctx context.Context) (int, error) {
	out, err := r.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(r.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     r.waitSec,
	})
	if err != nil {
		return 0, err
	}
	applied := 0
	for _, msg := range out.Messages {
		if r.handle(ctx, msg) {
			applied++
		}
	}
	return applied, nil
}

// handle applies one message. Messages that can never succeed are dropped,
// the rest stay on the queue for redelivery.
func (r *ResultReceiver) handle(ctx context.Context, msg types.Message) bool {
	if msg.Body == nil || msg.ReceiptHandle == nil {
		r.logger.Error("received malformed sqs message", "message_id", aws.ToString(msg.MessageId))
		return false
	}

	var res ResultMsg
	if err := DecodeMessage(*msg.Body, &res); err != nil {
		r.logger.Error("dropping undecodable grading result", "error", err)
		r.ack(ctx, *msg.ReceiptHandle)
		return false
	}

	err := r.recorder.RecordResult(ctx, subm.ResultParams{
		SubmissionID: res.SubmissionID,
		Passed:       res.Passed,
		Failed:       res.Failed,
	})
	var srvcErr *srvcerror.Error
	if errors.As(err, &srvcErr) && srvcErr.HttpStatusCode() < http.StatusInternalServerError {
		r.logger.Warn("dropping rejected grading result",
			"submission_id", res.SubmissionID, "error", err)
		r.ack(ctx, *msg.ReceiptHandle)
		return false
	}
	if err != nil {
		r.logger.Error("failed to record grading result, leaving for redelivery",
			"submission_id", res.SubmissionID, "error", err)
		return false
	}

	r.ack(ctx, *msg.ReceiptHandle)
	return true
}

func (r *ResultReceiver) ack(ctx context.Context, handle string) {
	_, err := r.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(r.queueURL),
		ReceiptHandle: aws.String(handle),
	})
	if err != nil {
		r.logger.Error("failed to ack message", "error", err)
	}
}
