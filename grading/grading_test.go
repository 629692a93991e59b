package grading_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/programme-lv/autograde/grading"
	"github.com/programme-lv/autograde/srvcerror"
	"github.com/programme-lv/autograde/subm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSqs struct {
	mu      sync.Mutex
	sent    []*sqs.SendMessageInput
	inbox   []types.Message
	deleted []string
	sendErr error

	receiveErr error
	receives   int
}

func (f *fakeSqs) SendMessage(ctx context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, in)
	return &sqs.SendMessageOutput{MessageId: aws.String("m")}, nil
}

func (f *fakeSqs) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receives++
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	msgs := f.inbox
	f.inbox = nil
	return &sqs.ReceiveMessageOutput{Messages: msgs}, nil
}

func (f *fakeSqs) DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

type recorder struct {
	got []subm.ResultParams
	err map[int64]error
}

func (r *recorder) RecordResult(ctx context.Context, p subm.ResultParams) error {
	if err := r.err[p.SubmissionID]; err != nil {
		return err
	}
	r.got = append(r.got, p)
	return nil
}

func TestMessageCodecRoundTrip(t *testing.T) {
	body, err := grading.EncodeMessage(grading.ResultMsg{SubmissionID: 3, Passed: 2, Failed: 1})
	require.NoError(t, err)
	assert.NotContains(t, body, "submission_id")

	var msg grading.ResultMsg
	require.NoError(t, grading.DecodeMessage(body, &msg))
	assert.Equal(t, int64(3), msg.SubmissionID)

	require.Error(t, grading.DecodeMessage("not base64!", &msg))
}

func TestSqsDispatcherSendsJob(t *testing.T) {
	client := &fakeSqs{}
	d := grading.NewSqsDispatcher(client, "https://sqs/subm", "https://sqs/results")

	err := d.Dispatch(context.Background(), subm.GradingRequest{
		SubmissionID: 7, AssignmentID: 2, StudentID: 5,
		SubmissionKey: "uploads/submission/s.zip", BundleKey: "uploads/assignment/b.zip", Timeout: 3,
	})
	require.NoError(t, err)
	require.Len(t, client.sent, 1)
	assert.Equal(t, "https://sqs/subm", aws.ToString(client.sent[0].QueueUrl))

	var job grading.Job
	require.NoError(t, grading.DecodeMessage(aws.ToString(client.sent[0].MessageBody), &job))
	assert.Equal(t, int64(7), job.SubmissionID)
	assert.Equal(t, "uploads/assignment/b.zip", job.BundleKey)
	assert.Equal(t, "https://sqs/results", job.ResultQueueURL)
	assert.NotZero(t, job.ID)

	client.sendErr = errors.New("throttled")
	require.Error(t, d.Dispatch(context.Background(), subm.GradingRequest{SubmissionID: 8}))
}

func TestResultReceiverAppliesAndAcks(t *testing.T) {
	ok, err := grading.EncodeMessage(grading.ResultMsg{SubmissionID: 1, Passed: 4, Failed: 1})
	require.NoError(t, err)
	rejected, err := grading.EncodeMessage(grading.ResultMsg{SubmissionID: 2, Passed: 1})
	require.NoError(t, err)
	transient, err := grading.EncodeMessage(grading.ResultMsg{SubmissionID: 3, Passed: 1})
	require.NoError(t, err)

	client := &fakeSqs{inbox: []types.Message{
		{Body: aws.String(ok), ReceiptHandle: aws.String("h1")},
		{Body: aws.String(rejected), ReceiptHandle: aws.String("h2")},
		{Body: aws.String(transient), ReceiptHandle: aws.String("h3")},
		{Body: aws.String("garbage"), ReceiptHandle: aws.String("h4")},
	}}
	rec := &recorder{err: map[int64]error{
		2: srvcerror.New(subm.ErrCodeSubmissionNotFound, "submission not found").SetHttpStatusCode(404),
		3: errors.New("connection reset"),
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := grading.NewResultReceiver(client, "https://sqs/results", rec, logger)

	applied, err := r.ReceiveOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, []subm.ResultParams{{SubmissionID: 1, Passed: 4, Failed: 1}}, rec.got)
	assert.ElementsMatch(t, []string{"h1", "h2", "h4"}, client.deleted)
}

func TestResultReceiverStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := grading.NewResultReceiver(&fakeSqs{}, "q", &recorder{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.NoError(t, r.Run(ctx))
}

func TestResultReceiverBacksOffOnFailure(t *testing.T) {
	client := &fakeSqs{receiveErr: errors.New("AWS.SimpleQueueService.NonExistentQueue")}
	r := grading.NewResultReceiver(client, "q", &recorder{}, slog.New(slog.NewTextHandler(io.Discard, nil))).
		WithBackoff(50*time.Millisecond, time.Second)

	// attempts at 0ms, 50ms and 150ms, the next one would be at 350ms
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	assert.NoError(t, r.Run(ctx))

	client.mu.Lock()
	defer client.mu.Unlock()
	assert.GreaterOrEqual(t, client.receives, 2)
	assert.LessOrEqual(t, client.receives, 4)
}
