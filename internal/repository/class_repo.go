package repository

import (
	"database/sql"
	"time"

	"readalong/internal/database"
	"readalong/internal/models"
)

// ClassRepository handles class persistence.
type ClassRepository struct {
	db *database.DB
}

// NewClassRepository creates a new class repository.
func NewClassRepository(db *database.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List retrieves all classes ordered by creation time.
func (r *ClassRepository) List() ([]models.Class, error) {
	rows, err := r.db.Query(`
		SELECT id, name, teacher_name, created_at
		FROM classes
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := []models.Class{}
	for rows.Next() {
		var class models.Class
		if err := rows.Scan(&class.ID, &class.Name, &class.TeacherName, &class.CreatedAt); err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, rows.Err()
}

// GetByID retrieves one class, or nil when unknown.
func (r *ClassRepository) GetByID(id string) (*models.Class, error) {
	var class models.Class
	err := r.db.QueryRow(`
		SELECT id, name, teacher_name, created_at
		FROM classes
		WHERE id = ?
	`, id).Scan(&class.ID, &class.Name, &class.TeacherName, &class.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &class, nil
}

// Create inserts a new class.
func (r *ClassRepository) Create(class models.Class) (*models.Class, error) {
	if class.CreatedAt.IsZero() {
		class.CreatedAt = time.Now()
	}
	_, err := r.db.Exec(`
		INSERT INTO classes (id, name, teacher_name, created_at)
		VALUES (?, ?, ?, ?)
	`, class.ID, class.Name, class.TeacherName, class.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &class, nil
}

// Delete removes a class. Students keep their class_id; the list
// endpoint simply stops matching them until they are reassigned.
func (r *ClassRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM classes WHERE id = ?", id)
	return err
}
