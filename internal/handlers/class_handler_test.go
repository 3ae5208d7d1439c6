package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"

	"readalong/internal/models"
)

func TestCreateAndListClasses(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/classes", map[string]string{
		"name":        "Year 2 Blue",
		"teacherName": "Mr. Okafor",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}

	var created models.Class
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode class: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created class has no id")
	}

	listResp, err := http.Get(ts.URL + "/api/classes")
	if err != nil {
		t.Fatalf("GET classes: %v", err)
	}
	defer listResp.Body.Close()
	var classes []models.Class
	if err := json.NewDecoder(listResp.Body).Decode(&classes); err != nil {
		t.Fatalf("decode classes: %v", err)
	}
	if len(classes) != 1 || classes[0].ID != created.ID {
		t.Errorf("classes = %+v, want just %s", classes, created.ID)
	}
}

func TestCreateClassRequiresName(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/classes", map[string]string{"teacherName": "Anon"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestLessonSaveAndList(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/lessons", models.Lesson{
		Week:        1,
		Title:       "At the Pond",
		ReadingText: []string{"The frog sat on a log."},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save lesson status = %d", resp.StatusCode)
	}

	listResp, err := http.Get(ts.URL + "/api/lessons")
	if err != nil {
		t.Fatalf("GET lessons: %v", err)
	}
	defer listResp.Body.Close()
	var lessons []models.Lesson
	if err := json.NewDecoder(listResp.Body).Decode(&lessons); err != nil {
		t.Fatalf("decode lessons: %v", err)
	}
	if len(lessons) != 1 || lessons[0].Title != "At the Pond" {
		t.Errorf("lessons = %+v", lessons)
	}
}

func postCustomAudio(t *testing.T, url, sentence, contents string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("text", sentence); err != nil {
		t.Fatalf("write text field: %v", err)
	}
	part, err := mw.CreateFormFile("audioFile", "narration.webm")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fmt.Fprint(part, contents)
	mw.Close()

	resp, err := http.Post(url, mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestLessonCustomAudioLifecycle(t *testing.T) {
	ts := newTestServer(t)
	sentence := "The frog sat on a log."

	resp := postCustomAudio(t, ts.URL+"/api/lessons/week-1/custom-audio", sentence, "first take")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload status = %d", resp.StatusCode)
	}
	var uploaded map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	resp.Body.Close()
	if uploaded["text"] != sentence || uploaded["audioUrl"] == "" {
		t.Fatalf("upload response = %v", uploaded)
	}

	// Re-recording the same sentence replaces the clip.
	resp = postCustomAudio(t, ts.URL+"/api/lessons/week-1/custom-audio", sentence, "second take")
	var replaced map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&replaced); err != nil {
		t.Fatalf("decode re-record response: %v", err)
	}
	resp.Body.Close()

	getResp, err := http.Get(ts.URL + "/api/lessons/week-1/custom-audio")
	if err != nil {
		t.Fatalf("GET custom audio: %v", err)
	}
	defer getResp.Body.Close()
	var clips map[string]string
	if err := json.NewDecoder(getResp.Body).Decode(&clips); err != nil {
		t.Fatalf("decode clips: %v", err)
	}
	if len(clips) != 1 || clips[sentence] != replaced["audioUrl"] {
		t.Errorf("clips = %v, want %q mapped to the latest take", clips, sentence)
	}

	fileResp, err := http.Get(ts.URL + clips[sentence])
	if err != nil {
		t.Fatalf("GET %s: %v", clips[sentence], err)
	}
	fileResp.Body.Close()
	if fileResp.StatusCode != http.StatusOK {
		t.Errorf("serving narration file status = %d", fileResp.StatusCode)
	}

	// A lesson without recordings yields an empty object, not an error.
	emptyResp, err := http.Get(ts.URL + "/api/lessons/week-2/custom-audio")
	if err != nil {
		t.Fatalf("GET empty custom audio: %v", err)
	}
	defer emptyResp.Body.Close()
	var empty map[string]string
	if err := json.NewDecoder(emptyResp.Body).Decode(&empty); err != nil {
		t.Fatalf("decode empty clips: %v", err)
	}
	if emptyResp.StatusCode != http.StatusOK || len(empty) != 0 {
		t.Errorf("empty lesson: status = %d, clips = %v", emptyResp.StatusCode, empty)
	}
}

func TestLessonCustomAudioRequiresFile(t *testing.T) {
	ts := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("text", "A sentence with no clip.")
	mw.Close()

	resp, err := http.Post(ts.URL+"/api/lessons/week-1/custom-audio", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST custom audio: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
