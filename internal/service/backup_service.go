package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"readalong/internal/models"
	"readalong/internal/repository"
)

// BackupData is the portable snapshot format: everything the server
// stores, as one JSON document.
type BackupData struct {
	Version    string                 `json:"version"`
	ExportedAt time.Time              `json:"exported_at"`
	Classes    []models.Class         `json:"classes"`
	Students   []models.StudentRecord `json:"students"`
	Lessons    []models.Lesson        `json:"lessons"`
}

// BackupService handles export and restore of the whole dataset.
type BackupService struct {
	studentRepo *repository.StudentRepository
	classRepo   *repository.ClassRepository
	lessonRepo  *repository.LessonRepository
}

// NewBackupService creates a new backup service.
func NewBackupService(studentRepo *repository.StudentRepository, classRepo *repository.ClassRepository, lessonRepo *repository.LessonRepository) *BackupService {
	return &BackupService{
		studentRepo: studentRepo,
		classRepo:   classRepo,
		lessonRepo:  lessonRepo,
	}
}

// Export writes a complete snapshot to a file.
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting export...")

	backup, err := s.snapshot()
	if err != nil {
		return err
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported %d classes, %d students, %d lessons to %s",
		len(backup.Classes), len(backup.Students), len(backup.Lessons), outputPath)
	return nil
}

// ExportToWriter writes a complete snapshot to a writer, used by the
// download endpoint.
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup, err := s.snapshot()
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores a snapshot from a file. Existing rows with matching
// ids are overwritten; rows absent from the snapshot are kept.
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a snapshot from a reader.
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version %s, exported at %s", backup.Version, backup.ExportedAt)

	for _, class := range backup.Classes {
		existing, err := s.classRepo.GetByID(class.ID)
		if err != nil {
			return fmt.Errorf("failed to import class %s: %w", class.ID, err)
		}
		if existing != nil {
			continue
		}
		if _, err := s.classRepo.Create(class); err != nil {
			return fmt.Errorf("failed to import class %s: %w", class.ID, err)
		}
	}

	for _, rec := range backup.Students {
		if _, err := s.studentRepo.Upsert(models.FillDefaults(rec)); err != nil {
			return fmt.Errorf("failed to import student %s: %w", rec.ID, err)
		}
	}

	for _, lesson := range backup.Lessons {
		if _, err := s.lessonRepo.Upsert(lesson); err != nil {
			return fmt.Errorf("failed to import lesson %s: %w", lesson.ID, err)
		}
	}

	log.Printf("Import completed: %d classes, %d students, %d lessons",
		len(backup.Classes), len(backup.Students), len(backup.Lessons))
	return nil
}

func (s *BackupService) snapshot() (*BackupData, error) {
	classes, err := s.classRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to export classes: %w", err)
	}

	students, err := s.studentRepo.ListByClass("")
	if err != nil {
		return nil, fmt.Errorf("failed to export students: %w", err)
	}
	if students == nil {
		students = []models.StudentRecord{}
	}

	lessons, err := s.lessonRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to export lessons: %w", err)
	}

	return &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Classes:    classes,
		Students:   students,
		Lessons:    lessons,
	}, nil
}
