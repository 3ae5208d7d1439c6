package syncer

import (
	"context"
	"log"

	"readalong/internal/cache"
	"readalong/internal/models"
	"readalong/internal/remote"
)

// Reconciler merges the local cache with the server's collection
// using a last-write-wins policy keyed by record id and the
// lastPractice timestamp. It keeps no state of its own; every Sync
// call is a complete, independent pass, and when two passes overlap
// the last save to complete wins, consistent with the merge policy
// itself.
type Reconciler struct {
	cache  *cache.Store
	client *remote.Client
	outbox *Outbox
}

// NewReconciler creates a reconciler over the given cache, remote
// client and outbox.
func NewReconciler(cache *cache.Store, client *remote.Client, outbox *Outbox) *Reconciler {
	return &Reconciler{cache: cache, client: client, outbox: outbox}
}

// Sync runs one reconciliation pass scoped to classID (empty for
// all classes). A failed fetch leaves the local cache untouched:
// transport failure must never be mistaken for an authoritative
// empty collection, or a flaky network would wipe local records.
func (r *Reconciler) Sync(ctx context.Context, classID string) error {
	remoteRecords, err := r.client.FetchStudents(ctx, classID)
	if err != nil {
		log.Printf("Sync: fetch failed, keeping local data: %v", err)
		return nil
	}

	local := r.cache.Load()
	merged, backfill := Merge(local, remoteRecords)

	if err := r.cache.Save(merged); err != nil {
		return err
	}

	for _, rec := range backfill {
		r.outbox.EnqueueStudent(rec)
	}
	return nil
}

// Merge combines a local and a remote collection into one
// authoritative list and reports which records need pushing back to
// the server. The result order is deterministic (remote order first,
// then local-only records in local order) so that reconciling twice
// with no intervening mutation persists byte-identical data.
//
// Policy, per id:
//   - only remote: keep remote.
//   - only local: keep local, backfill to server.
//   - both: the side with the newer lastPractice wins (ties go to
//     local, which is then backfilled). A missing timestamp counts
//     as the epoch. Weekly audio references never regress: for each
//     week the winner also carries, a non-empty audioUrl from the
//     losing side is preserved when the winner has none, because
//     recordings are append-only artifacts.
//
// This is deliberately not a CRDT. Concurrent non-audio edits to the
// same record within clock granularity can drop one side; acceptable
// for the one-teacher-per-class usage this serves.
func Merge(local, remoteRecords []models.StudentRecord) (merged, backfill []models.StudentRecord) {
	localByID := make(map[string]models.StudentRecord, len(local))
	for _, rec := range local {
		if _, dup := localByID[rec.ID]; !dup {
			localByID[rec.ID] = rec
		}
	}
	remoteIDs := make(map[string]bool, len(remoteRecords))

	merged = make([]models.StudentRecord, 0, len(local)+len(remoteRecords))
	backfill = make([]models.StudentRecord, 0)

	for _, remoteRec := range remoteRecords {
		if remoteIDs[remoteRec.ID] {
			continue
		}
		remoteIDs[remoteRec.ID] = true

		localRec, haveLocal := localByID[remoteRec.ID]
		if !haveLocal {
			merged = append(merged, remoteRec)
			continue
		}

		if !localRec.LastPractice.Before(remoteRec.LastPractice) {
			winner := preserveAudio(localRec, remoteRec)
			merged = append(merged, winner)
			backfill = append(backfill, winner)
		} else {
			merged = append(merged, preserveAudio(remoteRec, localRec))
		}
	}

	emitted := make(map[string]bool, len(local))
	for _, localRec := range local {
		if remoteIDs[localRec.ID] || emitted[localRec.ID] {
			continue
		}
		emitted[localRec.ID] = true
		merged = append(merged, localRec)
		backfill = append(backfill, localRec)
	}

	return merged, backfill
}

// preserveAudio copies non-empty weekly audio references from the
// losing record into matching weeks of the winner that lack one.
func preserveAudio(winner, loser models.StudentRecord) models.StudentRecord {
	audioByWeek := make(map[int]string, len(loser.History))
	for _, entry := range loser.History {
		if entry.AudioURL != "" {
			if _, seen := audioByWeek[entry.Week]; !seen {
				audioByWeek[entry.Week] = entry.AudioURL
			}
		}
	}
	if len(audioByWeek) == 0 {
		return winner
	}

	patched := false
	for _, entry := range winner.History {
		if entry.AudioURL == "" && audioByWeek[entry.Week] != "" {
			patched = true
			break
		}
	}
	if !patched {
		return winner
	}

	out := winner.Clone()
	for i := range out.History {
		if out.History[i].AudioURL == "" {
			if url := audioByWeek[out.History[i].Week]; url != "" {
				out.History[i].AudioURL = url
			}
		}
	}
	return out
}
