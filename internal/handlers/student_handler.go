package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"readalong/internal/models"
	"readalong/internal/service"
)

var validate = validator.New()

// StudentHandler handles student HTTP requests.
type StudentHandler struct {
	studentService *service.StudentService
}

// NewStudentHandler creates a new student handler.
func NewStudentHandler(studentService *service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// List handles GET /api/students?classId=...
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	classID := r.URL.Query().Get("classId")

	records, err := h.studentService.ListStudents(classID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load students", "Error listing students", err)
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// Get handles GET /api/students/{id}
func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rec, err := h.studentService.GetStudent(id)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load student", "Error loading student", err)
		return
	}
	if rec == nil {
		respondWithError(w, http.StatusNotFound, "Student not found", "", nil)
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// Save handles POST /api/students. The payload is whatever shape the
// client device has cached, so the raw body goes to the service and
// through the lenient decoder rather than a strict struct.
func (h *StudentHandler) Save(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Failed to read request body", "", err)
		return
	}

	saved, err := h.studentService.SaveStudent(body)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save student", "Error saving student", err)
		return
	}

	respondJSON(w, http.StatusOK, saved)
}

// progressRequest is one week's practice outcome reported by a device.
type progressRequest struct {
	Week          int          `json:"week" validate:"required,min=1"`
	Score         int          `json:"score" validate:"min=0,max=100"`
	Speed         models.Speed `json:"speed"`
	AudioURL      string       `json:"audioUrl"`
	ReadingScore  *int         `json:"readingScore" validate:"omitempty,min=0,max=100"`
	WordScore     *int         `json:"wordScore" validate:"omitempty,min=0,max=100"`
	SentenceScore *int         `json:"sentenceScore" validate:"omitempty,min=0,max=100"`
	ExerciseScore *int         `json:"exerciseScore" validate:"omitempty,min=0,max=100"`
}

// RecordProgress handles POST /api/students/{id}/progress
func (h *StudentHandler) RecordProgress(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req progressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid progress payload", "", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid progress payload", "", err)
		return
	}

	updated, err := h.studentService.RecordProgress(id, models.WeeklyRecord{
		Week:          req.Week,
		Score:         req.Score,
		Speed:         req.Speed,
		AudioURL:      req.AudioURL,
		ReadingScore:  req.ReadingScore,
		WordScore:     req.WordScore,
		SentenceScore: req.SentenceScore,
		ExerciseScore: req.ExerciseScore,
	})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to record progress", "Error recording progress", err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/students/{id}
func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.studentService.DeleteStudent(id); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to delete student", "Error deleting student", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
