package practice

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"readalong/internal/cache"
	"readalong/internal/models"
	"readalong/internal/remote"
	"readalong/internal/syncer"
)

// ResultWriter records the outcome of one completed practice session
// for one student and week. The local cache write is the durable
// source of truth; everything remote is best-effort until the next
// reconciliation.
type ResultWriter struct {
	cache  *cache.Store
	client *remote.Client
	outbox *syncer.Outbox
}

// NewResultWriter creates a result writer over the given cache,
// remote client and outbox.
func NewResultWriter(cache *cache.Store, client *remote.Client, outbox *syncer.Outbox) *ResultWriter {
	return &ResultWriter{cache: cache, client: client, outbox: outbox}
}

// SaveResult appends week's outcome to the student's history and
// queues the server writes. If the student is not in the local cache
// the call is a logged no-op, because a caller can race ahead of a
// record that has not synced down yet. Audio persistence never blocks
// scoring: a failed upload records the week without a recording.
func (w *ResultWriter) SaveResult(ctx context.Context, studentID string, week, score int, speed models.Speed, audio io.Reader) error {
	audioURL := ""
	if audio != nil {
		filename := fmt.Sprintf("%s_week%d_%s.webm", studentID, week, uuid.NewString()[:8])
		url, err := w.client.UploadAudio(ctx, audio, filename)
		if err != nil {
			log.Printf("Audio upload failed for student %s week %d, recording score without it: %v",
				studentID, week, err)
		} else {
			audioURL = url
		}
	}

	var updated *models.StudentRecord
	err := w.cache.Update(func(records []models.StudentRecord) []models.StudentRecord {
		for i := range records {
			if records[i].ID != studentID {
				continue
			}
			rec := records[i].Clone()
			applyResult(&rec, week, score, speed, audioURL)
			records[i] = rec
			updated = &rec
			break
		}
		return records
	})
	if err != nil {
		return err
	}
	if updated == nil {
		log.Printf("SaveResult: student %s not in local cache, skipping", studentID)
		return nil
	}

	// Ensure the student exists remotely, then write the week's
	// outcome. The full updated record is pushed so the upsert carries
	// the recomputed aggregates rather than zeroes. The outbox
	// sequences the two calls; their failures are logged there and
	// never roll back the local write above.
	w.outbox.EnqueueResult(*updated, remote.ProgressUpdate{
		Week:     week,
		Score:    score,
		Speed:    speed,
		AudioURL: updated.WeekEntry(week).AudioURL,
	})
	return nil
}

// applyResult mutates rec in place with one week's outcome: the week
// entry is created or replaced (history stays ordered by week), a
// prior recording is kept when no new one was obtained, and the
// aggregates are recomputed. readingSpeed is most-recent-wins, not a
// mean.
func applyResult(rec *models.StudentRecord, week, score int, speed models.Speed, audioURL string) {
	entry := models.WeeklyRecord{Week: week, Score: score, Speed: speed, AudioURL: audioURL}

	if existing := rec.WeekEntry(week); existing != nil {
		if entry.AudioURL == "" && existing.AudioURL != "" {
			entry.AudioURL = existing.AudioURL
		}
		*existing = entry
	} else {
		rec.History = append(rec.History, entry)
		rec.SortHistory()
	}

	rec.LastPractice = time.Now()
	rec.RecomputeAverage()
	rec.CompletedLessons = len(rec.History)
	rec.ReadingSpeed = speed
}
