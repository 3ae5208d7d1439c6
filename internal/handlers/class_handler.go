package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"readalong/internal/service"
)

// ClassHandler handles class HTTP requests.
type ClassHandler struct {
	classService *service.ClassService
}

// NewClassHandler creates a new class handler.
func NewClassHandler(classService *service.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

// List handles GET /api/classes
func (h *ClassHandler) List(w http.ResponseWriter, r *http.Request) {
	classes, err := h.classService.ListClasses()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load classes", "Error listing classes", err)
		return
	}
	respondJSON(w, http.StatusOK, classes)
}

type createClassRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	TeacherName string `json:"teacherName"`
}

// Create handles POST /api/classes
func (h *ClassHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid class payload", "", err)
		return
	}
	if err := validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Class name is required", "", err)
		return
	}

	class, err := h.classService.CreateClass(req.Name, req.TeacherName, req.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to create class", "Error creating class", err)
		return
	}

	respondJSON(w, http.StatusCreated, class)
}

// Delete handles DELETE /api/classes/{id}
func (h *ClassHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := h.classService.DeleteClass(id)
	if errors.Is(err, service.ErrClassNotFound) {
		respondWithError(w, http.StatusNotFound, "Class not found", "", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to delete class", "Error deleting class", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
