package repository

import (
	"database/sql"
	"encoding/json"

	"readalong/internal/database"
	"readalong/internal/models"
)

// LessonRepository handles lesson persistence. The structured fields
// (phoneme list, vocabulary, quiz questions) are stored as JSON text
// so a lesson row round-trips without a join.
type LessonRepository struct {
	db *database.DB
}

// NewLessonRepository creates a new lesson repository.
func NewLessonRepository(db *database.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// List retrieves all lessons ordered by week.
func (r *LessonRepository) List() ([]models.Lesson, error) {
	rows, err := r.db.Query(`
		SELECT id, week, title, description, reading_text, phonemes, vocabulary, questions
		FROM lessons
		ORDER BY week ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lessons := []models.Lesson{}
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}
	return lessons, rows.Err()
}

// GetByID retrieves one lesson, or nil when unknown.
func (r *LessonRepository) GetByID(id string) (*models.Lesson, error) {
	row := r.db.QueryRow(`
		SELECT id, week, title, description, reading_text, phonemes, vocabulary, questions
		FROM lessons
		WHERE id = ?
	`, id)
	lesson, err := scanLesson(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// Upsert inserts or replaces a lesson.
func (r *LessonRepository) Upsert(lesson models.Lesson) (*models.Lesson, error) {
	readingText, err := json.Marshal(lesson.ReadingText)
	if err != nil {
		return nil, err
	}
	phonemes, err := json.Marshal(lesson.Phonemes)
	if err != nil {
		return nil, err
	}
	vocabulary, err := json.Marshal(lesson.Vocabulary)
	if err != nil {
		return nil, err
	}
	questions, err := json.Marshal(lesson.Questions)
	if err != nil {
		return nil, err
	}

	existing, err := r.GetByID(lesson.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		_, err = r.db.Exec(`
			INSERT INTO lessons (id, week, title, description, reading_text,
			                     phonemes, vocabulary, questions)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, lesson.ID, lesson.Week, lesson.Title, lesson.Description, string(readingText),
			string(phonemes), string(vocabulary), string(questions))
	} else {
		_, err = r.db.Exec(`
			UPDATE lessons
			SET week = ?, title = ?, description = ?, reading_text = ?,
			    phonemes = ?, vocabulary = ?, questions = ?
			WHERE id = ?
		`, lesson.Week, lesson.Title, lesson.Description, string(readingText),
			string(phonemes), string(vocabulary), string(questions), lesson.ID)
	}
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// Delete removes a lesson and any custom narration recorded for it.
func (r *LessonRepository) Delete(id string) error {
	if _, err := r.db.Exec("DELETE FROM lesson_audio WHERE lesson_id = ?", id); err != nil {
		return err
	}
	_, err := r.db.Exec("DELETE FROM lessons WHERE id = ?", id)
	return err
}

// SetCustomAudio stores or replaces the custom narration clip for one
// sentence of a lesson. Idempotent per (lesson, sentence).
func (r *LessonRepository) SetCustomAudio(lessonID, sentence, audioURL string) error {
	result, err := r.db.Exec(`
		UPDATE lesson_audio SET audio_url = ? WHERE lesson_id = ? AND sentence = ?
	`, audioURL, lessonID, sentence)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	_, err = r.db.Exec(`
		INSERT INTO lesson_audio (lesson_id, sentence, audio_url) VALUES (?, ?, ?)
	`, lessonID, sentence, audioURL)
	return err
}

// CustomAudio returns every custom narration clip for a lesson, keyed
// by the sentence it reads. An unknown lesson yields an empty map.
func (r *LessonRepository) CustomAudio(lessonID string) (map[string]string, error) {
	rows, err := r.db.Query(`
		SELECT sentence, audio_url FROM lesson_audio WHERE lesson_id = ?
	`, lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clips := map[string]string{}
	for rows.Next() {
		var sentence, audioURL string
		if err := rows.Scan(&sentence, &audioURL); err != nil {
			return nil, err
		}
		clips[sentence] = audioURL
	}
	return clips, rows.Err()
}

// Count returns the number of stored lessons, used to decide whether
// the default curriculum needs seeding.
func (r *LessonRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM lessons").Scan(&n)
	return n, err
}

func scanLesson(row rowScanner) (models.Lesson, error) {
	var lesson models.Lesson
	var readingText, phonemes, vocabulary, questions string
	err := row.Scan(
		&lesson.ID,
		&lesson.Week,
		&lesson.Title,
		&lesson.Description,
		&readingText,
		&phonemes,
		&vocabulary,
		&questions,
	)
	if err != nil {
		return lesson, err
	}
	if err := json.Unmarshal([]byte(readingText), &lesson.ReadingText); err != nil || lesson.ReadingText == nil {
		lesson.ReadingText = []string{}
	}
	if err := json.Unmarshal([]byte(phonemes), &lesson.Phonemes); err != nil || lesson.Phonemes == nil {
		lesson.Phonemes = []string{}
	}
	if err := json.Unmarshal([]byte(vocabulary), &lesson.Vocabulary); err != nil || lesson.Vocabulary == nil {
		lesson.Vocabulary = []string{}
	}
	if err := json.Unmarshal([]byte(questions), &lesson.Questions); err != nil || lesson.Questions == nil {
		lesson.Questions = []models.QuizQuestion{}
	}
	return lesson, nil
}
