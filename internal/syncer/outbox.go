package syncer

import (
	"context"
	"log"
	"sync"
	"time"

	"readalong/internal/models"
	"readalong/internal/remote"
)

// DefaultMaxAttempts is how many times a push is tried before it is
// dropped. The next user-triggered reconciliation re-derives anything
// dropped here, so the default policy stays "log and drop".
const DefaultMaxAttempts = 3

// defaultRetryDelay spaces out DrainFully passes so a failing server
// is not hammered back to back.
const defaultRetryDelay = 500 * time.Millisecond

// pushTask is one queued outbound write. A task with a progress
// payload first upserts the student (so a not-yet-synced record
// exists remotely) and then writes the week's outcome; the two calls
// are sequenced, their failures are logged independently, and neither
// rolls back the local write that spawned the task.
type pushTask struct {
	student  models.StudentRecord
	progress *remote.ProgressUpdate
	attempts int
}

// OutboxStatus is a snapshot of the queue for callers that want to
// surface sync health.
type OutboxStatus struct {
	Pending int
	Sent    int
	Dropped int
}

// Outbox queues best-effort pushes to the server. Replication here is
// explicitly best-effort: bounded retry, then drop with a log line.
type Outbox struct {
	client      *remote.Client
	maxAttempts int
	retryDelay  time.Duration

	mu      sync.Mutex
	tasks   []pushTask
	sent    int
	dropped int
}

// NewOutbox creates an outbox over the given client. maxAttempts <= 0
// uses DefaultMaxAttempts.
func NewOutbox(client *remote.Client, maxAttempts int) *Outbox {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Outbox{client: client, maxAttempts: maxAttempts, retryDelay: defaultRetryDelay}
}

// EnqueueStudent queues a record upsert (used by reconciliation
// backfill).
func (o *Outbox) EnqueueStudent(rec models.StudentRecord) {
	o.mu.Lock()
	o.tasks = append(o.tasks, pushTask{student: rec})
	o.mu.Unlock()
}

// EnqueueResult queues an ensure-exists upsert followed by a progress
// write for one week's outcome.
func (o *Outbox) EnqueueResult(rec models.StudentRecord, update remote.ProgressUpdate) {
	o.mu.Lock()
	o.tasks = append(o.tasks, pushTask{student: rec, progress: &update})
	o.mu.Unlock()
}

// Status reports queue depth and lifetime counters.
func (o *Outbox) Status() OutboxStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return OutboxStatus{Pending: len(o.tasks), Sent: o.sent, Dropped: o.dropped}
}

// Drain processes every currently queued task once, requeueing
// failures that still have attempts left. It returns how many tasks
// were delivered during this pass.
func (o *Outbox) Drain(ctx context.Context) int {
	o.mu.Lock()
	pending := o.tasks
	o.tasks = nil
	o.mu.Unlock()

	delivered := 0
	for _, task := range pending {
		if err := o.send(ctx, task); err != nil {
			task.attempts++
			if task.attempts >= o.maxAttempts {
				log.Printf("Outbox: dropping push for student %s after %d attempts: %v",
					task.student.ID, task.attempts, err)
				o.mu.Lock()
				o.dropped++
				o.mu.Unlock()
				continue
			}
			log.Printf("Outbox: push for student %s failed (attempt %d): %v",
				task.student.ID, task.attempts, err)
			o.mu.Lock()
			o.tasks = append(o.tasks, task)
			o.mu.Unlock()
			continue
		}
		delivered++
		o.mu.Lock()
		o.sent++
		o.mu.Unlock()
	}
	return delivered
}

// DrainFully drains until the queue is empty or only failing tasks
// remain that were dropped. Used by the CLI so a one-shot command
// flushes its writes (within the retry budget) before exiting.
// Retry passes are spaced by retryDelay so a struggling server gets a
// breather between them; cancelling the context abandons the queue.
func (o *Outbox) DrainFully(ctx context.Context) {
	for {
		o.Drain(ctx)
		o.mu.Lock()
		remaining := len(o.tasks)
		o.mu.Unlock()
		if remaining == 0 {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(o.retryDelay):
		}
	}
}

// Run drains the queue on a fixed interval until the context is
// cancelled. Long-running callers use this instead of DrainFully.
func (o *Outbox) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.Drain(ctx)
		}
	}
}

func (o *Outbox) send(ctx context.Context, task pushTask) error {
	if err := o.client.PushStudent(ctx, task.student); err != nil {
		return err
	}
	if task.progress != nil {
		if err := o.client.PushProgress(ctx, task.student.ID, *task.progress); err != nil {
			// The upsert above already landed; only the progress
			// write is retried on the next attempt.
			log.Printf("Outbox: progress write for student %s week %d failed: %v",
				task.student.ID, task.progress.Week, err)
			return err
		}
	}
	return nil
}
