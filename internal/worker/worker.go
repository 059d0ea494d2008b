package worker

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/igrejaunida/backend/internal/emaillogs"
	"github.com/igrejaunida/backend/pkg/mailer"
	"github.com/igrejaunida/backend/pkg/queue"
)

// jobSource dequeues jobs and re-enqueues failed ones.
type jobSource interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// sender delivers one email.
type sender interface {
	Send(to, subject, bodyHTML string) error
}

// logStore tracks delivery outcomes per message.
type logStore interface {
	Record(ctx context.Context, orgID *int64, recipient, subject, kind string) (int64, error)
	MarkSent(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, sendErr string) error
}

// EmailProcessor consumes notification email jobs and delivers them over SMTP.
// Each message gets one email log row; retries update it rather than adding
// new ones.
type EmailProcessor struct {
	queue  jobSource
	mailer sender
	logs   logStore
	logger *zap.Logger
}

// NewEmailProcessor creates the worker loop.
func NewEmailProcessor(q *queue.Queue, m *mailer.Mailer, logs *emaillogs.Repository, logger *zap.Logger) *EmailProcessor {
	return &EmailProcessor{queue: q, mailer: m, logs: logs, logger: logger}
}

// Run blocks, processing jobs until ctx is cancelled.
func (p *EmailProcessor) Run(ctx context.Context) {
	p.logger.Info("email worker started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("email worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("dequeue failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}
		p.process(ctx, job)
	}
}

func (p *EmailProcessor) process(ctx context.Context, job *queue.Job) {
	if job.Type != queue.JobTypeEmail {
		p.logger.Warn("unknown job type", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		return
	}
	var payload queue.EmailPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		p.logger.Error("invalid email payload", zap.String("job_id", job.ID), zap.Error(err))
		return
	}

	if job.LogID == 0 {
		var orgID *int64
		if payload.OrganizationID > 0 {
			orgID = &payload.OrganizationID
		}
		logID, err := p.logs.Record(ctx, orgID, payload.Recipient, payload.Subject, payload.Kind)
		if err != nil {
			p.logger.Warn("record email log", zap.Error(err))
		}
		job.LogID = logID
	}

	if err := p.mailer.Send(payload.Recipient, payload.Subject, payload.BodyHTML); err != nil {
		p.logger.Error("send email failed",
			zap.String("job_id", job.ID),
			zap.String("recipient", payload.Recipient),
			zap.Int("attempt", job.Attempt),
			zap.Error(err))
		if job.LogID > 0 {
			if logErr := p.logs.MarkFailed(ctx, job.LogID, err.Error()); logErr != nil {
				p.logger.Warn("mark email failed", zap.Error(logErr))
			}
		}
		if err := p.queue.Retry(ctx, job); err != nil {
			p.logger.Error("retry failed", zap.String("job_id", job.ID), zap.Error(err))
		}
		return
	}

	if job.LogID > 0 {
		if err := p.logs.MarkSent(ctx, job.LogID); err != nil {
			p.logger.Warn("mark email sent", zap.Error(err))
		}
	}
	p.logger.Info("email sent", zap.String("job_id", job.ID), zap.String("recipient", payload.Recipient), zap.String("kind", payload.Kind))
}
