package service

import (
	"errors"
	"log"

	"github.com/google/uuid"

	"readalong/internal/models"
	"readalong/internal/repository"
)

// ErrLessonNotFound is returned when an operation targets an unknown lesson.
var ErrLessonNotFound = errors.New("lesson not found")

// LessonService handles lesson business logic.
type LessonService struct {
	lessonRepo *repository.LessonRepository
}

// NewLessonService creates a new lesson service.
func NewLessonService(lessonRepo *repository.LessonRepository) *LessonService {
	return &LessonService{lessonRepo: lessonRepo}
}

// ListLessons retrieves all lessons ordered by week.
func (s *LessonService) ListLessons() ([]models.Lesson, error) {
	return s.lessonRepo.List()
}

// GetLesson retrieves one lesson, or nil when unknown.
func (s *LessonService) GetLesson(id string) (*models.Lesson, error) {
	return s.lessonRepo.GetByID(id)
}

// SaveLesson inserts or replaces a lesson. A missing id gets a
// generated one.
func (s *LessonService) SaveLesson(lesson models.Lesson) (*models.Lesson, error) {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	if lesson.ReadingText == nil {
		lesson.ReadingText = []string{}
	}
	if lesson.Phonemes == nil {
		lesson.Phonemes = []string{}
	}
	for i := range lesson.Questions {
		if lesson.Questions[i].ID == "" {
			lesson.Questions[i].ID = uuid.NewString()
		}
	}
	if lesson.Vocabulary == nil {
		lesson.Vocabulary = []string{}
	}
	if lesson.Questions == nil {
		lesson.Questions = []models.QuizQuestion{}
	}
	return s.lessonRepo.Upsert(lesson)
}

// SetCustomAudio stores a teacher-recorded narration clip for one
// sentence of a lesson. The lesson itself is not required to exist
// yet, so a recording made against a draft lesson is kept.
func (s *LessonService) SetCustomAudio(lessonID, sentence, audioURL string) error {
	return s.lessonRepo.SetCustomAudio(lessonID, sentence, audioURL)
}

// CustomAudio returns a lesson's custom narration clips keyed by
// sentence. Lessons without recordings yield an empty map.
func (s *LessonService) CustomAudio(lessonID string) (map[string]string, error) {
	return s.lessonRepo.CustomAudio(lessonID)
}

// DeleteLesson removes a lesson.
func (s *LessonService) DeleteLesson(id string) error {
	existing, err := s.lessonRepo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrLessonNotFound
	}
	return s.lessonRepo.Delete(id)
}

// SeedDefaultLessons loads the starter curriculum into an empty
// lessons table. Databases that already have lessons are left alone
// so teacher edits survive restarts.
func (s *LessonService) SeedDefaultLessons() error {
	count, err := s.lessonRepo.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, lesson := range defaultLessons {
		if _, err := s.lessonRepo.Upsert(lesson); err != nil {
			return err
		}
	}
	log.Printf("Seeded %d default lessons", len(defaultLessons))
	return nil
}

var defaultLessons = []models.Lesson{
	{
		ID:          "lesson-week-1",
		Week:        1,
		Title:       "At the Pond",
		Description: "Short vowel sounds and simple sentences",
		ReadingText: []string{
			"The frog sat on a log.",
			"A duck swam in the pond.",
			"The sun was hot.",
			"The frog went hop, hop, hop into the cool water.",
		},
		Phonemes:   []string{"o", "u", "fr", "sw"},
		Vocabulary: []string{"frog", "pond", "swam", "cool"},
		Questions: []models.QuizQuestion{
			{
				ID:            "q1-1",
				Question:      "Where did the frog sit?",
				Options:       []string{"On a log", "On a rock", "In a tree", "On the grass"},
				CorrectAnswer: "On a log",
			},
			{
				ID:            "q1-2",
				Question:      "What did the frog do when it was hot?",
				Options:       []string{"Went to sleep", "Hopped into the water", "Ate a fly", "Sat still"},
				CorrectAnswer: "Hopped into the water",
			},
		},
	},
	{
		ID:          "lesson-week-2",
		Week:        2,
		Title:       "The Lost Kite",
		Description: "Long vowel sounds with silent e",
		ReadingText: []string{
			"Kate made a kite with a long white tail.",
			"The wind took the kite high into the sky.",
			"It got stuck in a pine tree.",
			"Dad used a rake to get the kite back.",
			"Kate gave Dad a big smile.",
		},
		Phonemes:   []string{"a_e", "i_e", "igh"},
		Vocabulary: []string{"kite", "white", "pine", "smile"},
		Questions: []models.QuizQuestion{
			{
				ID:            "q2-1",
				Question:      "What did Kate make?",
				Options:       []string{"A cake", "A kite", "A boat", "A hat"},
				CorrectAnswer: "A kite",
			},
			{
				ID:            "q2-2",
				Question:      "Where did the kite get stuck?",
				Options:       []string{"On the roof", "In a pine tree", "In the pond", "On a fence"},
				CorrectAnswer: "In a pine tree",
			},
			{
				ID:            "q2-3",
				Question:      "How did Kate feel at the end?",
				Options:       []string{"Sad", "Angry", "Happy", "Scared"},
				CorrectAnswer: "Happy",
			},
		},
	},
	{
		ID:          "lesson-week-3",
		Week:        3,
		Title:       "The Rainy Day",
		Description: "Digraphs ai and ay",
		ReadingText: []string{
			"Rain fell all day on Sunday.",
			"May stayed inside and painted a picture of a gray sail boat.",
			"When the rain stopped, she ran outside to play in the puddles with her dog.",
		},
		Phonemes:   []string{"ai", "ay", "gr"},
		Vocabulary: []string{"rain", "paint", "gray", "play"},
		Questions: []models.QuizQuestion{
			{
				ID:            "q3-1",
				Question:      "What did May paint?",
				Options:       []string{"A dog", "A sail boat", "A house", "A rainbow"},
				CorrectAnswer: "A sail boat",
			},
			{
				ID:            "q3-2",
				Question:      "What did May do when the rain stopped?",
				Options:       []string{"Took a nap", "Painted more", "Played in the puddles", "Read a book"},
				CorrectAnswer: "Played in the puddles",
			},
		},
	},
	{
		ID:          "lesson-week-4",
		Week:        4,
		Title:       "A Trip to the Farm",
		Description: "Consonant blends and compound words",
		ReadingText: []string{
			"Our class went on a trip to a farm.",
			"We saw sheep, goats and three small pigs.",
			"A black hen sat on her nest in the barn.",
			"The farmer let us feed the lambs with a bottle.",
			"It was the best school trip ever.",
		},
		Phonemes:   []string{"sh", "ch", "tr", "bl"},
		Vocabulary: []string{"sheep", "barn", "farmer", "lambs"},
		Questions: []models.QuizQuestion{
			{
				ID:            "q4-1",
				Question:      "How many small pigs did the class see?",
				Options:       []string{"One", "Two", "Three", "Four"},
				CorrectAnswer: "Three",
			},
			{
				ID:            "q4-2",
				Question:      "Where was the hen sitting?",
				Options:       []string{"On the fence", "On her nest", "In a tree", "By the pond"},
				CorrectAnswer: "On her nest",
			},
		},
	},
}
