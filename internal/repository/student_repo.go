package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"readalong/internal/database"
	"readalong/internal/models"
)

// StudentRepository handles student persistence on the server side.
// History lives in its own table keyed (student_id, week); the
// uniqueness of week within a student is enforced by the schema.
type StudentRepository struct {
	db *database.DB
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(db *database.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListByClass retrieves students, most recently practiced first.
// An empty classID returns everything. The default class also matches
// rows whose class was never set, so pre-class records keep showing
// up for the teacher that never created classes.
func (r *StudentRepository) ListByClass(classID string) ([]models.StudentRecord, error) {
	query := `
		SELECT id, class_id, name, completed_lessons, average_score,
		       reading_speed, badges, last_practice
		FROM students
	`
	var args []interface{}
	switch classID {
	case "":
	case models.DefaultClassID:
		query += " WHERE class_id = ? OR class_id = ''"
		args = append(args, models.DefaultClassID)
	default:
		query += " WHERE class_id = ?"
		args = append(args, classID)
	}
	query += " ORDER BY last_practice DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.StudentRecord
	for rows.Next() {
		rec, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		history, err := r.getHistory(records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].History = history
	}
	return records, nil
}

// GetByID retrieves one student with full history, or nil when the
// id is unknown.
func (r *StudentRepository) GetByID(id string) (*models.StudentRecord, error) {
	row := r.db.QueryRow(`
		SELECT id, class_id, name, completed_lessons, average_score,
		       reading_speed, badges, last_practice
		FROM students
		WHERE id = ?
	`, id)

	rec, err := scanStudent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	history, err := r.getHistory(id)
	if err != nil {
		return nil, err
	}
	rec.History = history
	return &rec, nil
}

// Upsert inserts or updates a record's summary fields and replaces
// any history weeks present in the payload. Idempotent per id.
func (r *StudentRepository) Upsert(rec models.StudentRecord) (*models.StudentRecord, error) {
	badges, err := json.Marshal(rec.Badges)
	if err != nil {
		return nil, err
	}
	if rec.Badges == nil {
		badges = []byte("[]")
	}
	classID := rec.ClassID
	if classID == "" {
		classID = models.DefaultClassID
	}
	lastPractice := rec.LastPractice
	if lastPractice.IsZero() {
		lastPractice = time.Now()
	}

	existing, err := r.GetByID(rec.ID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		_, err = r.db.Exec(`
			INSERT INTO students (id, class_id, name, completed_lessons,
			                      average_score, reading_speed, badges, last_practice)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, classID, rec.Name, rec.CompletedLessons, rec.AverageScore,
			rec.ReadingSpeed.String(), string(badges), lastPractice)
	} else {
		_, err = r.db.Exec(`
			UPDATE students
			SET class_id = ?, name = ?, completed_lessons = ?,
			    average_score = ?, reading_speed = ?, badges = ?, last_practice = ?
			WHERE id = ?
		`, classID, rec.Name, rec.CompletedLessons, rec.AverageScore,
			rec.ReadingSpeed.String(), string(badges), lastPractice, rec.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to upsert student %s: %w", rec.ID, err)
	}

	for _, entry := range rec.History {
		if err := r.UpsertWeek(rec.ID, entry); err != nil {
			return nil, err
		}
	}

	return r.GetByID(rec.ID)
}

// UpsertWeek inserts or replaces one week's outcome for a student.
// Idempotent per (student, week). A payload without a recording keeps
// any audio reference already stored for that week; the COALESCE
// makes the column write-once unless a new recording replaces it.
func (r *StudentRepository) UpsertWeek(studentID string, entry models.WeeklyRecord) error {
	result, err := r.db.Exec(`
		UPDATE weekly_records
		SET score = ?, speed = ?, audio_url = COALESCE(?, audio_url),
		    reading_score = ?, word_score = ?, sentence_score = ?, exercise_score = ?
		WHERE student_id = ? AND week = ?
	`, entry.Score, entry.Speed.String(), nullableString(entry.AudioURL),
		entry.ReadingScore, entry.WordScore, entry.SentenceScore, entry.ExerciseScore,
		studentID, entry.Week)
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
		INSERT INTO weekly_records (student_id, week, score, speed, audio_url,
		                            reading_score, word_score, sentence_score, exercise_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, studentID, entry.Week, entry.Score, entry.Speed.String(), nullableString(entry.AudioURL),
		entry.ReadingScore, entry.WordScore, entry.SentenceScore, entry.ExerciseScore)
	return err
}

// SetWeekAudio updates only the audio reference for one week, used
// when a late upload finishes after the score was recorded.
func (r *StudentRepository) SetWeekAudio(studentID string, week int, audioURL string) error {
	_, err := r.db.Exec(`
		UPDATE weekly_records SET audio_url = ? WHERE student_id = ? AND week = ?
	`, audioURL, studentID, week)
	return err
}

// UpdateStats rewrites the derived summary columns after a progress
// write.
func (r *StudentRepository) UpdateStats(id string, averageScore, completedLessons int, speed models.Speed, lastPractice time.Time) error {
	_, err := r.db.Exec(`
		UPDATE students
		SET average_score = ?, completed_lessons = ?, reading_speed = ?, last_practice = ?
		WHERE id = ?
	`, averageScore, completedLessons, speed.String(), lastPractice, id)
	return err
}

// Delete removes a student and, via the schema's cascade, their
// history. No tombstone is written: a peer with a stale cache can
// resurrect the record on its next sync.
func (r *StudentRepository) Delete(id string) error {
	_, err := r.db.Exec("DELETE FROM students WHERE id = ?", id)
	return err
}

func (r *StudentRepository) getHistory(studentID string) ([]models.WeeklyRecord, error) {
	rows, err := r.db.Query(`
		SELECT week, score, speed, audio_url,
		       reading_score, word_score, sentence_score, exercise_score
		FROM weekly_records
		WHERE student_id = ?
		ORDER BY week ASC
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []models.WeeklyRecord{}
	for rows.Next() {
		var entry models.WeeklyRecord
		var speed string
		var audioURL sql.NullString
		err := rows.Scan(
			&entry.Week,
			&entry.Score,
			&speed,
			&audioURL,
			&entry.ReadingScore,
			&entry.WordScore,
			&entry.SentenceScore,
			&entry.ExerciseScore,
		)
		if err != nil {
			return nil, err
		}
		entry.Speed = models.Speed(speed)
		if audioURL.Valid {
			entry.AudioURL = audioURL.String
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

// rowScanner lets scanStudent work for both Query and QueryRow.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanStudent(row rowScanner) (models.StudentRecord, error) {
	var rec models.StudentRecord
	var speed, badges string
	err := row.Scan(
		&rec.ID,
		&rec.ClassID,
		&rec.Name,
		&rec.CompletedLessons,
		&rec.AverageScore,
		&speed,
		&badges,
		&rec.LastPractice,
	)
	if err != nil {
		return rec, err
	}
	rec.ReadingSpeed = models.Speed(speed)
	if err := json.Unmarshal([]byte(badges), &rec.Badges); err != nil || rec.Badges == nil {
		rec.Badges = []string{}
	}
	return rec, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
