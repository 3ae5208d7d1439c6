package syncer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"readalong/internal/models"
	"readalong/internal/remote"
)

func TestOutboxSequencesUpsertBeforeProgress(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	outbox := NewOutbox(remote.New(server.URL), 0)
	rec := models.FillDefaults(models.StudentRecord{ID: "s1", Name: "An", LastPractice: time.Now()})
	outbox.EnqueueResult(rec, remote.ProgressUpdate{Week: 2, Score: 75, Speed: "30"})

	if sent := outbox.Drain(context.Background()); sent != 1 {
		t.Fatalf("Drain() delivered %d tasks, want 1", sent)
	}

	want := []string{"/api/students", "/api/students/s1/progress"}
	if len(calls) != 2 || calls[0] != want[0] || calls[1] != want[1] {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestOutboxBoundedRetryThenDrop(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	outbox := NewOutbox(remote.New(server.URL), 2)
	outbox.retryDelay = time.Millisecond
	outbox.EnqueueStudent(models.StudentRecord{ID: "s1"})

	outbox.DrainFully(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if attempts != 2 {
		t.Errorf("server saw %d attempts, want 2", attempts)
	}
	status := outbox.Status()
	if status.Pending != 0 || status.Dropped != 1 || status.Sent != 0 {
		t.Errorf("status = %+v, want dropped=1 pending=0", status)
	}
}

func TestOutboxRetrySucceedsOnSecondAttempt(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		fail := attempts == 1
		mu.Unlock()
		if fail {
			http.Error(w, "flaky", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	outbox := NewOutbox(remote.New(server.URL), 3)
	outbox.retryDelay = time.Millisecond
	outbox.EnqueueStudent(models.StudentRecord{ID: "s1"})
	outbox.DrainFully(context.Background())

	status := outbox.Status()
	if status.Sent != 1 || status.Dropped != 0 || status.Pending != 0 {
		t.Errorf("status = %+v, want sent=1", status)
	}
}

func TestOutboxDrainFullySpacesRetryPasses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	outbox := NewOutbox(remote.New(server.URL), 3)
	outbox.retryDelay = 30 * time.Millisecond
	outbox.EnqueueStudent(models.StudentRecord{ID: "s1"})

	start := time.Now()
	outbox.DrainFully(context.Background())
	elapsed := time.Since(start)

	// Three attempts means two waits between passes.
	if elapsed < 60*time.Millisecond {
		t.Errorf("DrainFully finished in %v, want at least two retry delays", elapsed)
	}
	if status := outbox.Status(); status.Dropped != 1 || status.Pending != 0 {
		t.Errorf("status = %+v, want dropped=1 pending=0", status)
	}
}

func TestOutboxPushBodyCarriesSummary(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/students" {
			json.NewDecoder(r.Body).Decode(&body)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	outbox := NewOutbox(remote.New(server.URL), 0)
	rec := models.FillDefaults(models.StudentRecord{
		ID:           "s5",
		Name:         "Binh",
		ClassID:      "1A3",
		AverageScore: 88,
		LastPractice: time.Now(),
		Badges:       []string{"streak-3"},
	})
	outbox.EnqueueStudent(rec)
	outbox.Drain(context.Background())

	if body["id"] != "s5" || body["classId"] != "1A3" || body["averageScore"] != float64(88) {
		t.Errorf("pushed body = %v", body)
	}
}
