package models

import "time"

// Class is a named grouping of students. The ID doubles as the join
// code handed out to parents and students (e.g. "1A3-Q7KX").
type Class struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	TeacherName string    `json:"teacherName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
