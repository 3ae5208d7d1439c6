package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"readalong/internal/audio"
	"readalong/internal/models"
	"readalong/internal/service"
)

// LessonHandler handles lesson HTTP requests, including the custom
// narration clips teachers record against individual sentences.
type LessonHandler struct {
	lessonService *service.LessonService
	store         *audio.Store
	maxSize       int64
}

// NewLessonHandler creates a new lesson handler. maxSize caps the
// accepted narration upload body in bytes.
func NewLessonHandler(lessonService *service.LessonService, store *audio.Store, maxSize int64) *LessonHandler {
	return &LessonHandler{lessonService: lessonService, store: store, maxSize: maxSize}
}

// List handles GET /api/lessons
func (h *LessonHandler) List(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.lessonService.ListLessons()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load lessons", "Error listing lessons", err)
		return
	}
	respondJSON(w, http.StatusOK, lessons)
}

// Get handles GET /api/lessons/{id}
func (h *LessonHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	lesson, err := h.lessonService.GetLesson(id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load lesson", "Error loading lesson", err)
		return
	}
	if lesson == nil {
		respondWithError(w, http.StatusNotFound, "Lesson not found", "", nil)
		return
	}

	respondJSON(w, http.StatusOK, lesson)
}

// Save handles POST /api/lessons
func (h *LessonHandler) Save(w http.ResponseWriter, r *http.Request) {
	var lesson models.Lesson
	if err := json.NewDecoder(r.Body).Decode(&lesson); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lesson payload", "", err)
		return
	}
	if lesson.Title == "" || lesson.Week < 1 {
		respondWithError(w, http.StatusBadRequest, "Lesson needs a title and a week number", "", nil)
		return
	}

	saved, err := h.lessonService.SaveLesson(lesson)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save lesson", "Error saving lesson", err)
		return
	}

	respondJSON(w, http.StatusOK, saved)
}

// UploadCustomAudio handles POST /api/lessons/{id}/custom-audio. The
// multipart field "audioFile" carries the clip and the form field
// "text" names the sentence it narrates. Re-recording the same
// sentence replaces the earlier clip.
func (h *LessonHandler) UploadCustomAudio(w http.ResponseWriter, r *http.Request) {
	lessonID := r.PathValue("id")
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)

	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "Upload too large or malformed", "", err)
		return
	}

	file, header, err := r.FormFile("audioFile")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "No audio file received", "", err)
		return
	}
	defer file.Close()

	sentence := r.FormValue("text")
	if sentence == "" {
		respondWithError(w, http.StatusBadRequest, "Missing sentence text", "", nil)
		return
	}

	filename, err := h.store.Save(file, header.Filename)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to store audio", "Error storing narration", err)
		return
	}

	audioURL := "/uploads/" + filename
	if err := h.lessonService.SetCustomAudio(lessonID, sentence, audioURL); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save narration", "Error saving narration", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"audioUrl": audioURL, "text": sentence})
}

// CustomAudio handles GET /api/lessons/{id}/custom-audio, returning a
// sentence-to-URL map. Lessons without recordings get an empty object.
func (h *LessonHandler) CustomAudio(w http.ResponseWriter, r *http.Request) {
	clips, err := h.lessonService.CustomAudio(r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load narration", "Error loading narration", err)
		return
	}
	respondJSON(w, http.StatusOK, clips)
}

// Delete handles DELETE /api/lessons/{id}
func (h *LessonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.lessonService.DeleteLesson(id)
	if errors.Is(err, service.ErrLessonNotFound) {
		respondWithError(w, http.StatusNotFound, "Lesson not found", "", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to delete lesson", "Error deleting lesson", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
