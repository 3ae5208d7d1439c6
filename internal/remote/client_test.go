package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"readalong/internal/models"
)

func TestFetchStudentsNormalizesAndFilters(t *testing.T) {
	var gotClass string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClass = r.URL.Query().Get("classId")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"id":"s1","history":[{"week":"2","score":"70"}]},{"id":""}]`)
	}))
	defer server.Close()

	client := New(server.URL)
	records, err := client.FetchStudents(context.Background(), "1A3")
	if err != nil {
		t.Fatalf("FetchStudents() error: %v", err)
	}

	if gotClass != "1A3" {
		t.Errorf("classId query = %q, want %q", gotClass, "1A3")
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].History[0].Week != 2 || records[0].History[0].Score != 70 {
		t.Errorf("history was not normalized: %+v", records[0].History)
	}
	if records[1].ID == "" {
		t.Error("record with missing id should get a placeholder")
	}
}

func TestFetchStudentsErrorOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL)
	if _, err := client.FetchStudents(context.Background(), ""); err == nil {
		t.Fatal("FetchStudents() should report non-2xx responses")
	}
}

func TestPushStudentSendsSummaryFields(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/students" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL)
	rec := models.StudentRecord{ID: "s1", Name: "An", ClassID: "1A3", ReadingSpeed: "40"}
	if err := client.PushStudent(context.Background(), rec); err != nil {
		t.Fatalf("PushStudent() error: %v", err)
	}

	if body["id"] != "s1" || body["name"] != "An" || body["classId"] != "1A3" {
		t.Errorf("pushed body missing identity fields: %v", body)
	}
	if body["readingSpeed"] != float64(40) {
		t.Errorf("numeric speed should marshal as a number, got %v", body["readingSpeed"])
	}
}

func TestPushProgressTargetsStudentPath(t *testing.T) {
	var path string
	var body ProgressUpdate
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL)
	err := client.PushProgress(context.Background(), "s7", ProgressUpdate{Week: 3, Score: 88, Speed: "fast"})
	if err != nil {
		t.Fatalf("PushProgress() error: %v", err)
	}

	if path != "/api/students/s7/progress" {
		t.Errorf("path = %q, want /api/students/s7/progress", path)
	}
	if body.Week != 3 || body.Score != 88 || body.Speed != "fast" {
		t.Errorf("progress body = %+v", body)
	}
}

func TestUploadAudioReturnsServerURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("audioFile")
		if err != nil {
			t.Errorf("missing audioFile part: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer file.Close()
		if header.Filename != "s1_week7.webm" {
			t.Errorf("filename = %q", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "fake audio bytes" {
			t.Errorf("file content = %q", data)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"url":"/uploads/abc.webm"}`)
	}))
	defer server.Close()

	client := New(server.URL)
	url, err := client.UploadAudio(context.Background(), strings.NewReader("fake audio bytes"), "s1_week7.webm")
	if err != nil {
		t.Fatalf("UploadAudio() error: %v", err)
	}
	if url != "/uploads/abc.webm" {
		t.Errorf("url = %q, want /uploads/abc.webm", url)
	}
}

func TestUploadAudioFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "storage down", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL)
	if _, err := client.UploadAudio(context.Background(), strings.NewReader("x"), "a.webm"); err == nil {
		t.Fatal("UploadAudio() should fail on server error")
	}
}

func TestDeleteStudent(t *testing.T) {
	var method, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL)
	if err := client.DeleteStudent(context.Background(), "s9"); err != nil {
		t.Fatalf("DeleteStudent() error: %v", err)
	}
	if method != http.MethodDelete || path != "/api/students/s9" {
		t.Errorf("request = %s %s", method, path)
	}
}
