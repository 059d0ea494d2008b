package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/igrejaunida/backend/pkg/queue"
)

type fakeSource struct {
	retried []*queue.Job
}

func (f *fakeSource) Dequeue(ctx context.Context) (*queue.Job, error) { return nil, nil }

func (f *fakeSource) Retry(ctx context.Context, job *queue.Job) error {
	job.Attempt++
	f.retried = append(f.retried, job)
	return nil
}

type fakeSender struct {
	failures int
	sent     int
}

func (f *fakeSender) Send(to, subject, bodyHTML string) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("smtp: connection refused")
	}
	f.sent++
	return nil
}

type fakeLogs struct {
	recorded int
	failed   []int64
	sent     []int64
}

func (f *fakeLogs) Record(ctx context.Context, orgID *int64, recipient, subject, kind string) (int64, error) {
	f.recorded++
	return 42, nil
}

func (f *fakeLogs) MarkSent(ctx context.Context, id int64) error {
	f.sent = append(f.sent, id)
	return nil
}

func (f *fakeLogs) MarkFailed(ctx context.Context, id int64, sendErr string) error {
	f.failed = append(f.failed, id)
	return nil
}

func emailJob(t *testing.T) *queue.Job {
	t.Helper()
	payload, err := json.Marshal(queue.EmailPayload{
		Kind:           queue.EmailKindInvite,
		OrganizationID: 3,
		Recipient:      "ana@church.org",
		Subject:        "Welcome",
		BodyHTML:       "<p>Hi</p>",
	})
	require.NoError(t, err)
	return &queue.Job{ID: "job-1", Type: queue.JobTypeEmail, Payload: payload}
}

func TestProcessRecordsOnceAcrossRetries(t *testing.T) {
	source := &fakeSource{}
	smtp := &fakeSender{failures: 2}
	logs := &fakeLogs{}
	p := &EmailProcessor{queue: source, mailer: smtp, logs: logs, logger: zap.NewNop()}

	job := emailJob(t)
	p.process(context.Background(), job)
	require.Equal(t, int64(42), job.LogID)

	// retries replay the same envelope, log id included
	p.process(context.Background(), job)
	p.process(context.Background(), job)

	require.Equal(t, 1, logs.recorded)
	require.Equal(t, []int64{42, 42}, logs.failed)
	require.Equal(t, []int64{42}, logs.sent)
	require.Equal(t, 1, smtp.sent)
	require.Len(t, source.retried, 2)
}

func TestProcessSendsAndMarks(t *testing.T) {
	source := &fakeSource{}
	smtp := &fakeSender{}
	logs := &fakeLogs{}
	p := &EmailProcessor{queue: source, mailer: smtp, logs: logs, logger: zap.NewNop()}

	p.process(context.Background(), emailJob(t))

	require.Equal(t, 1, logs.recorded)
	require.Equal(t, []int64{42}, logs.sent)
	require.Empty(t, logs.failed)
	require.Empty(t, source.retried)
}

func TestProcessIgnoresUnknownType(t *testing.T) {
	logs := &fakeLogs{}
	p := &EmailProcessor{queue: &fakeSource{}, mailer: &fakeSender{}, logs: logs, logger: zap.NewNop()}

	p.process(context.Background(), &queue.Job{ID: "job-2", Type: "video"})
	require.Zero(t, logs.recorded)
}
