package service

import (
	"encoding/json"
	"fmt"
	"time"

	"readalong/internal/models"
	"readalong/internal/repository"
)

// StudentService handles student business logic on the server side.
type StudentService struct {
	studentRepo *repository.StudentRepository
}

// NewStudentService creates a new student service.
func NewStudentService(studentRepo *repository.StudentRepository) *StudentService {
	return &StudentService{studentRepo: studentRepo}
}

// ListStudents retrieves students for a class. An empty classID is
// treated as the default class.
func (s *StudentService) ListStudents(classID string) ([]models.StudentRecord, error) {
	if classID == "" {
		classID = models.DefaultClassID
	}
	records, err := s.studentRepo.ListByClass(classID)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.StudentRecord{}
	}
	return records, nil
}

// GetStudent retrieves one student, or nil when unknown.
func (s *StudentService) GetStudent(id string) (*models.StudentRecord, error) {
	return s.studentRepo.GetByID(id)
}

// SaveStudent upserts a student record as supplied by a client
// device. Only the fields present in the payload are applied; for a
// known student the rest keep their stored values, so an
// identity-only push cannot wipe badges or zero the summary columns.
// New students get missing defaults filled the same way a device
// would fill them.
func (s *StudentService) SaveStudent(data json.RawMessage) (*models.StudentRecord, error) {
	rec := models.Normalize(data)
	existing, err := s.studentRepo.GetByID(rec.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		rec = models.Patch(*existing, data)
	}
	saved, err := s.studentRepo.Upsert(rec)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// RecordProgress records one week's practice outcome for a student.
// Unknown students are created on the fly so a device that practiced
// offline before ever syncing can still report results. The derived
// summary fields are recomputed from the full stored history.
func (s *StudentService) RecordProgress(studentID string, entry models.WeeklyRecord) (*models.StudentRecord, error) {
	rec, err := s.studentRepo.GetByID(studentID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		created, err := s.studentRepo.Upsert(models.StudentRecord{
			ID:      studentID,
			Name:    fmt.Sprintf("Student %s", studentID),
			ClassID: models.DefaultClassID,
			Badges:  []string{},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create student %s: %w", studentID, err)
		}
		rec = created
	}

	if err := s.studentRepo.UpsertWeek(studentID, entry); err != nil {
		return nil, fmt.Errorf("failed to record week %d for %s: %w", entry.Week, studentID, err)
	}

	rec, err = s.studentRepo.GetByID(studentID)
	if err != nil {
		return nil, err
	}
	rec.RecomputeAverage()
	rec.CompletedLessons = len(rec.History)
	rec.LastPractice = time.Now()
	if entry.Speed != "" {
		rec.ReadingSpeed = entry.Speed
	}
	err = s.studentRepo.UpdateStats(studentID, rec.AverageScore, rec.CompletedLessons, rec.ReadingSpeed, rec.LastPractice)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteStudent removes a student and their history.
func (s *StudentService) DeleteStudent(id string) error {
	return s.studentRepo.Delete(id)
}
