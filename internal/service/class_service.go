package service

import (
	"errors"
	"fmt"
	"log"

	"readalong/internal/codes"
	"readalong/internal/models"
	"readalong/internal/repository"
)

// ErrClassNotFound is returned when an operation targets an unknown class.
var ErrClassNotFound = errors.New("class not found")

// ClassService handles class business logic.
type ClassService struct {
	classRepo *repository.ClassRepository
}

// NewClassService creates a new class service.
func NewClassService(classRepo *repository.ClassRepository) *ClassService {
	return &ClassService{classRepo: classRepo}
}

// ListClasses retrieves all classes.
func (s *ClassService) ListClasses() ([]models.Class, error) {
	return s.classRepo.List()
}

// GetClass retrieves one class, or nil when unknown.
func (s *ClassService) GetClass(id string) (*models.Class, error) {
	return s.classRepo.GetByID(id)
}

// CreateClass creates a class. When no id is supplied a readable
// class code is generated, retrying on the rare collision.
func (s *ClassService) CreateClass(name, teacherName, id string) (*models.Class, error) {
	if id == "" {
		for attempt := 0; attempt < 5; attempt++ {
			code, err := codes.GenerateClassCode()
			if err != nil {
				return nil, fmt.Errorf("failed to generate class code: %w", err)
			}
			existing, err := s.classRepo.GetByID(code)
			if err != nil {
				return nil, err
			}
			if existing == nil {
				id = code
				break
			}
		}
		if id == "" {
			return nil, errors.New("failed to generate a unique class code")
		}
	} else {
		existing, err := s.classRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("class %s already exists", id)
		}
	}

	return s.classRepo.Create(models.Class{
		ID:          id,
		Name:        name,
		TeacherName: teacherName,
	})
}

// DeleteClass removes a class. The default class cannot be deleted.
func (s *ClassService) DeleteClass(id string) error {
	if id == models.DefaultClassID {
		return errors.New("the default class cannot be deleted")
	}
	existing, err := s.classRepo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrClassNotFound
	}
	return s.classRepo.Delete(id)
}

// EnsureDefaultClass creates the default class if it does not exist,
// so a fresh database always has somewhere for unassigned students.
func (s *ClassService) EnsureDefaultClass() error {
	existing, err := s.classRepo.GetByID(models.DefaultClassID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	_, err = s.classRepo.Create(models.Class{
		ID:   models.DefaultClassID,
		Name: "My Class",
	})
	if err != nil {
		return err
	}
	log.Println("Created default class")
	return nil
}
