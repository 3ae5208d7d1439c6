package service

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"readalong/internal/database"
	"readalong/internal/models"
	"readalong/internal/repository"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping sqlite-backed test in short mode")
	}

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func newStudentService(t *testing.T) *StudentService {
	t.Helper()
	return NewStudentService(repository.NewStudentRepository(newTestDB(t)))
}

func saveRecord(t *testing.T, svc *StudentService, rec models.StudentRecord) {
	t.Helper()
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal record %s: %v", rec.ID, err)
	}
	if _, err := svc.SaveStudent(data); err != nil {
		t.Fatalf("SaveStudent(%s) error: %v", rec.ID, err)
	}
}

func TestRecordProgressCreatesUnknownStudent(t *testing.T) {
	svc := newStudentService(t)

	updated, err := svc.RecordProgress("s1", models.WeeklyRecord{Week: 1, Score: 80, Speed: "25"})
	if err != nil {
		t.Fatalf("RecordProgress() error: %v", err)
	}

	if updated.Name != "Student s1" {
		t.Errorf("auto-created name = %q, want %q", updated.Name, "Student s1")
	}
	if updated.ClassID != models.DefaultClassID {
		t.Errorf("auto-created class = %q, want %q", updated.ClassID, models.DefaultClassID)
	}
	if len(updated.History) != 1 || updated.History[0].Score != 80 {
		t.Fatalf("history = %+v, want one week with score 80", updated.History)
	}
	if updated.CompletedLessons != 1 {
		t.Errorf("completedLessons = %d, want 1", updated.CompletedLessons)
	}
}

func TestRecordProgressRecomputesSummary(t *testing.T) {
	svc := newStudentService(t)

	scores := []struct {
		week  int
		score int
		speed models.Speed
	}{
		{1, 70, "20"},
		{2, 90, "28"},
		{3, 100, "32"},
	}

	var updated *models.StudentRecord
	var err error
	for _, s := range scores {
		updated, err = svc.RecordProgress("s2", models.WeeklyRecord{Week: s.week, Score: s.score, Speed: s.speed})
		if err != nil {
			t.Fatalf("RecordProgress(week %d) error: %v", s.week, err)
		}
	}

	if updated.AverageScore != 87 {
		t.Errorf("averageScore = %d, want 87", updated.AverageScore)
	}
	if updated.CompletedLessons != 3 {
		t.Errorf("completedLessons = %d, want 3", updated.CompletedLessons)
	}
	if updated.ReadingSpeed != "32" {
		t.Errorf("readingSpeed = %q, want %q", updated.ReadingSpeed, "32")
	}
	if time.Since(updated.LastPractice) > time.Minute {
		t.Errorf("lastPractice not refreshed: %v", updated.LastPractice)
	}
}

func TestRecordProgressReplacesWeek(t *testing.T) {
	svc := newStudentService(t)

	if _, err := svc.RecordProgress("s3", models.WeeklyRecord{Week: 2, Score: 50}); err != nil {
		t.Fatalf("first RecordProgress() error: %v", err)
	}
	updated, err := svc.RecordProgress("s3", models.WeeklyRecord{Week: 2, Score: 95})
	if err != nil {
		t.Fatalf("second RecordProgress() error: %v", err)
	}

	if len(updated.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(updated.History))
	}
	if updated.History[0].Score != 95 {
		t.Errorf("re-recorded score = %d, want 95", updated.History[0].Score)
	}
}

func TestSaveStudentPersistsHistory(t *testing.T) {
	svc := newStudentService(t)

	reading := 80
	saveRecord(t, svc, models.StudentRecord{
		ID:   "s4",
		Name: "Mei",
		History: []models.WeeklyRecord{
			{Week: 1, Score: 75, Speed: "22", AudioURL: "/uploads/a.webm", ReadingScore: &reading},
			{Week: 2, Score: 85},
		},
		Badges:       []string{"starter"},
		LastPractice: time.Now(),
	})

	got, err := svc.GetStudent("s4")
	if err != nil {
		t.Fatalf("GetStudent() error: %v", err)
	}
	if got == nil {
		t.Fatal("saved student not found")
	}
	if len(got.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(got.History))
	}
	if got.History[0].AudioURL != "/uploads/a.webm" {
		t.Errorf("audioUrl = %q, want %q", got.History[0].AudioURL, "/uploads/a.webm")
	}
	if got.History[0].ReadingScore == nil || *got.History[0].ReadingScore != 80 {
		t.Errorf("readingScore not round-tripped: %+v", got.History[0].ReadingScore)
	}
	if len(got.Badges) != 1 || got.Badges[0] != "starter" {
		t.Errorf("badges = %v, want [starter]", got.Badges)
	}
}

func TestSaveStudentPartialPayloadKeepsStoredFields(t *testing.T) {
	svc := newStudentService(t)

	saveRecord(t, svc, models.StudentRecord{
		ID:               "s6",
		Name:             "Anna",
		CompletedLessons: 3,
		AverageScore:     80,
		ReadingSpeed:     "28",
		Badges:           []string{"starter", "streak-3"},
		History: []models.WeeklyRecord{
			{Week: 1, Score: 75},
		},
		LastPractice: time.Now(),
	})

	// An identity-only push, like a device announcing a renamed
	// student, must not disturb what it does not mention.
	if _, err := svc.SaveStudent(json.RawMessage(`{"id":"s6","name":"An"}`)); err != nil {
		t.Fatalf("SaveStudent(partial) error: %v", err)
	}

	got, err := svc.GetStudent("s6")
	if err != nil {
		t.Fatalf("GetStudent() error: %v", err)
	}
	if got.Name != "An" {
		t.Errorf("name = %q, want %q", got.Name, "An")
	}
	if len(got.Badges) != 2 {
		t.Errorf("badges = %v, want both kept", got.Badges)
	}
	if got.AverageScore != 80 {
		t.Errorf("averageScore = %d, want 80", got.AverageScore)
	}
	if got.CompletedLessons != 3 {
		t.Errorf("completedLessons = %d, want 3", got.CompletedLessons)
	}
	if got.ReadingSpeed != "28" {
		t.Errorf("readingSpeed = %q, want %q", got.ReadingSpeed, "28")
	}
	if len(got.History) != 1 {
		t.Errorf("history length = %d, want 1", len(got.History))
	}
}

func TestRecordProgressKeepsEarlierRecording(t *testing.T) {
	svc := newStudentService(t)

	if _, err := svc.RecordProgress("s7", models.WeeklyRecord{Week: 7, Score: 70, AudioURL: "/uploads/a.webm"}); err != nil {
		t.Fatalf("first RecordProgress() error: %v", err)
	}
	updated, err := svc.RecordProgress("s7", models.WeeklyRecord{Week: 7, Score: 90})
	if err != nil {
		t.Fatalf("second RecordProgress() error: %v", err)
	}

	if len(updated.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(updated.History))
	}
	if updated.History[0].Score != 90 {
		t.Errorf("re-recorded score = %d, want 90", updated.History[0].Score)
	}
	if updated.History[0].AudioURL != "/uploads/a.webm" {
		t.Errorf("audioUrl = %q, want earlier recording kept", updated.History[0].AudioURL)
	}
}

func TestListStudentsDefaultClassIncludesUnassigned(t *testing.T) {
	svc := newStudentService(t)

	seed := []models.StudentRecord{
		{ID: "d1", Name: "In default", ClassID: models.DefaultClassID},
		{ID: "d2", Name: "Unassigned"},
		{ID: "o1", Name: "Other class", ClassID: "happy-otter-42"},
	}
	for _, rec := range seed {
		rec.LastPractice = time.Now()
		saveRecord(t, svc, rec)
	}

	records, err := svc.ListStudents("")
	if err != nil {
		t.Fatalf("ListStudents() error: %v", err)
	}

	ids := make(map[string]bool)
	for _, rec := range records {
		ids[rec.ID] = true
	}
	if !ids["d1"] || !ids["d2"] {
		t.Errorf("default listing %v missing default-class students", ids)
	}
	if ids["o1"] {
		t.Error("default listing should not include students from another class")
	}

	other, err := svc.ListStudents("happy-otter-42")
	if err != nil {
		t.Fatalf("ListStudents(other) error: %v", err)
	}
	if len(other) != 1 || other[0].ID != "o1" {
		t.Errorf("other-class listing = %+v, want just o1", other)
	}
}

func TestDeleteStudentRemovesHistory(t *testing.T) {
	svc := newStudentService(t)

	if _, err := svc.RecordProgress("s5", models.WeeklyRecord{Week: 1, Score: 60}); err != nil {
		t.Fatalf("RecordProgress() error: %v", err)
	}
	if err := svc.DeleteStudent("s5"); err != nil {
		t.Fatalf("DeleteStudent() error: %v", err)
	}

	got, err := svc.GetStudent("s5")
	if err != nil {
		t.Fatalf("GetStudent() error: %v", err)
	}
	if got != nil {
		t.Errorf("deleted student still present: %+v", got)
	}
}
