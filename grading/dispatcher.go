// Package grading sends submissions to the external grading service and
// collects the results it reports back.
package grading

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/google/uuid"
	"github.com/programme-lv/autograde/logger"
	"github.com/programme-lv/autograde/subm"
)

// Job is the message the grading service consumes.
type Job struct {
	ID             uuid.UUID `json:"job_id"`
	SubmissionID   int64     `json:"submission_id"`
	AssignmentID   int64     `json:"assignment_id"`
	StudentID      int64     `json:"student_id"`
	SubmissionKey  string    `json:"submission_key"`
	BundleKey      string    `json:"bundle_key"`
	Timeout        int       `json:"timeout"`
	ResultQueueURL string    `json:"result_queue_url,omitempty"`
	EnqueuedAt     time.Time `json:"enqueued_at"`
}

// SqsAPI is the part of the SQS client used here.
type SqsAPI interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

func NewSqsClient(ctx context.Context, region string) (*sqs.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(retry.NewStandard(), 10)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return sqs.NewFromConfig(cfg), nil
}

type SqsDispatcher struct {
	client      SqsAPI
	submQueue   string
	resultQueue string
	now         func() time.Time
}

func NewSqsDispatcher(client SqsAPI, submQueueURL string, resultQueueURL string) *SqsDispatcher {
	return &SqsDispatcher{
		client:      client,
		submQueue:   submQueueURL,
		resultQueue: resultQueueURL,
		now:         time.Now,
	}
}

func (d *SqsDispatcher) Dispatch(ctx context.Context, req subm.GradingRequest) error {
	job := Job{
		ID:             uuid.New(),
		SubmissionID:   req.SubmissionID,
		AssignmentID:   req.AssignmentID,
		StudentID:      req.StudentID,
		SubmissionKey:  req.SubmissionKey,
		BundleKey:      req.BundleKey,
		Timeout:        req.Timeout,
		ResultQueueURL: d.resultQueue,
		EnqueuedAt:     d.now().UTC(),
	}
	body, err := EncodeMessage(job)
	if err != nil {
		return err
	}
	_, err = d.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(d.submQueue),
		MessageBody: aws.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to grading queue: %w", err)
	}
	logger.FromContext(ctx).Info("dispatched grading job",
		"job_id", job.ID, "submission_id", job.SubmissionID)
	return nil
}

// NopDispatcher is used when no grading queue is configured; results then
// only arrive through the runner script callback.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(ctx context.Context, req subm.GradingRequest) error {
	logger.FromContext(ctx).Debug("grading queue not configured, skipping dispatch",
		"submission_id", req.SubmissionID)
	return nil
}
