package scheduler

import (
	"context"
	"fmt"
	"log"

	"emailsummary/internal/domain/digest"
	"emailsummary/internal/domain/subscription"
)

// DigestRunner is the part of the digest dispatcher a scheduled run needs.
type DigestRunner interface {
	Dispatch(ctx context.Context, caller digest.Caller, req digest.Request) (*digest.Result, error)
}

// SessionReaper deletes sessions past their expiry.
type SessionReaper interface {
	ReapExpiredSessions(ctx context.Context) (int64, error)
}

// DigestJob sends the digest for one period to every recipient as the
// system caller.
type DigestJob struct {
	runner DigestRunner
	period string
}

// NewDigestJob creates a digest job for period ("daily", "weekly" or "monthly").
func NewDigestJob(runner DigestRunner, period string) *DigestJob {
	return &DigestJob{runner: runner, period: period}
}

// Execute runs the dispatch. Any failed recipient fails the job.
func (j *DigestJob) Execute(ctx context.Context) error {
	result, err := j.runner.Dispatch(ctx, digest.SystemCaller{}, digest.Request{Period: j.period})
	if err != nil {
		return fmt.Errorf("dispatch failed: %w", err)
	}

	log.Printf("Digest: %s run for %s sent %d/%d",
		j.period, result.Window.Label(), result.Sent, result.Recipients)

	if result.Failed() {
		return fmt.Errorf("%d of %d recipients failed", len(result.Failures), result.Recipients)
	}
	return nil
}

// Description returns a human-readable description of the job
func (j *DigestJob) Description() string {
	return fmt.Sprintf("%s digest", j.period)
}

// SessionReapJob removes expired sessions.
type SessionReapJob struct {
	reaper SessionReaper
}

// NewSessionReapJob creates a session reap job.
func NewSessionReapJob(reaper SessionReaper) *SessionReapJob {
	return &SessionReapJob{reaper: reaper}
}

// Execute deletes expired sessions.
func (j *SessionReapJob) Execute(ctx context.Context) error {
	n, err := j.reaper.ReapExpiredSessions(ctx)
	if err != nil {
		return fmt.Errorf("reap failed: %w", err)
	}
	log.Printf("Sessions: reaped %d expired sessions", n)
	return nil
}

// Description returns a human-readable description of the job
func (j *SessionReapJob) Description() string {
	return "expired session cleanup"
}

// DailyJobs is the job provider for the scheduled run: the daily digest
// followed by session cleanup.
func DailyJobs(runner DigestRunner, reaper SessionReaper) JobProvider {
	return func(ctx context.Context) ([]Job, error) {
		return []Job{
			NewDigestJob(runner, string(subscription.CadenceDaily)),
			NewSessionReapJob(reaper),
		}, nil
	}
}
