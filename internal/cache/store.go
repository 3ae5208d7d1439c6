package cache

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"readalong/internal/models"
)

const (
	studentsFile      = "students.json"
	selectedClassFile = "selected_class"
)

// Store is the local cache of the student collection: one JSON blob
// holding every record, replaced wholesale on each save. There is no
// field-level update; callers read, modify, and write the full
// collection. A read-modify-write that stays on one goroutine and
// does not straddle a network call is atomic; one that awaits the
// network in the middle can interleave with another sync and lose the
// race, which is accepted (last completed save wins).
type Store struct {
	dir string

	mu   sync.Mutex
	subs []chan struct{}
}

// New creates a store rooted at dir, creating the directory if
// needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Load reads the cached student collection. A missing file or a
// corrupt one yields an empty collection; corruption is logged and
// the remote store remains the recovery path. Every entry is
// normalized and the collection is de-duplicated by id, first
// occurrence winning.
func (s *Store) Load() []models.StudentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() []models.StudentRecord {
	data, err := os.ReadFile(filepath.Join(s.dir, studentsFile))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Failed to read student cache: %v", err)
		}
		return []models.StudentRecord{}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("Student cache is corrupt, starting empty: %v", err)
		return []models.StudentRecord{}
	}

	records := make([]models.StudentRecord, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, entry := range raw {
		rec := models.Normalize(entry)
		if seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true
		records = append(records, rec)
	}
	return records
}

// Save replaces the cached collection and notifies subscribers. The
// write is atomic at the file level (temp file plus rename) so a
// crash mid-save cannot corrupt the previous blob.
func (s *Store) Save(records []models.StudentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(records)
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, studentsFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}

	s.notifyLocked()
	return nil
}

// Update applies fn to the loaded collection and saves the result in
// one critical section, so in-process callers that stay synchronous
// cannot clobber each other.
func (s *Store) Update(fn func([]models.StudentRecord) []models.StudentRecord) error {
	s.mu.Lock()
	records := s.loadLocked()
	records = fn(records)

	data, err := json.Marshal(records)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	path := filepath.Join(s.dir, studentsFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		s.mu.Unlock()
		return err
	}

	s.notifyLocked()
	s.mu.Unlock()
	return nil
}

// Subscribe returns a channel that receives a signal after every
// successful save. Notifications are dropped, not queued, when the
// subscriber is not ready; consumers reload the full collection on
// each signal so a dropped one is harmless.
func (s *Store) Subscribe() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	s.subs = append(s.subs, ch)
	return ch
}

func (s *Store) notifyLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// SelectedClass returns the class id the client is currently scoped
// to, or the default class when none has been chosen.
func (s *Store) SelectedClass() string {
	data, err := os.ReadFile(filepath.Join(s.dir, selectedClassFile))
	if err != nil {
		return models.DefaultClassID
	}
	id := strings.TrimSpace(string(data))
	if id == "" {
		return models.DefaultClassID
	}
	return id
}

// SetSelectedClass persists the class id used to scope sync calls.
func (s *Store) SetSelectedClass(id string) error {
	return os.WriteFile(filepath.Join(s.dir, selectedClassFile), []byte(id), 0644)
}
