package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Normalize is the single entry point for student data arriving from
// untrusted sources (the local cache file, the network). It coerces
// an arbitrary JSON object into a fully populated StudentRecord,
// degrading malformed fields to safe defaults instead of failing.
// It always returns a usable record.
func Normalize(data json.RawMessage) StudentRecord {
	return FillDefaults(Patch(StudentRecord{}, data))
}

// Patch applies only the fields present in data onto rec, leaving
// absent fields untouched, with the same lenient per-field decoding
// as Normalize. Server-side saves go through this so a partial push
// (an identity-only upsert from a device) cannot zero columns the
// device never sent.
func Patch(rec StudentRecord, data json.RawMessage) StudentRecord {
	var raw rawStudent
	// A partial decode still populates every field that parsed; the
	// error is deliberately ignored.
	_ = json.Unmarshal(data, &raw)

	if raw.ID != nil {
		rec.ID = string(*raw.ID)
	}
	if raw.Name != nil {
		rec.Name = string(*raw.Name)
	}
	if raw.ClassID != nil {
		rec.ClassID = string(*raw.ClassID)
	}
	if raw.CompletedLessons != nil {
		rec.CompletedLessons = int(*raw.CompletedLessons)
	}
	if raw.AverageScore != nil {
		rec.AverageScore = int(*raw.AverageScore)
	}
	if raw.ReadingSpeed != nil {
		rec.ReadingSpeed = *raw.ReadingSpeed
	}
	if raw.LastPractice != nil {
		rec.LastPractice = raw.LastPractice.Time
	}
	if raw.Badges != nil {
		rec.Badges = raw.Badges
	}
	if raw.History != nil {
		history := make([]WeeklyRecord, 0, len(raw.History))
		for _, entry := range raw.History {
			history = append(history, normalizeWeekly(entry))
		}
		rec.History = history
	}
	return rec
}

// FillDefaults completes a typed record that may be missing fields.
// A missing id gets a session-unique placeholder so the record can be
// keyed until the authoritative side assigns one.
func FillDefaults(rec StudentRecord) StudentRecord {
	if rec.ID == "" {
		rec.ID = "local-" + uuid.NewString()
	}
	if rec.Name == "" {
		rec.Name = "Student " + rec.ID
	}
	if rec.History == nil {
		rec.History = []WeeklyRecord{}
	}
	if rec.Badges == nil {
		rec.Badges = []string{}
	}
	if rec.LastPractice.IsZero() {
		rec.LastPractice = time.Now()
	}
	if rec.CompletedLessons < 0 {
		rec.CompletedLessons = 0
	}
	return rec
}

func normalizeWeekly(data json.RawMessage) WeeklyRecord {
	var raw rawWeekly
	_ = json.Unmarshal(data, &raw)

	entry := WeeklyRecord{
		Week:  int(raw.Week),
		Score: int(raw.Score),
		Speed: raw.Speed,
	}
	if url := strings.TrimSpace(string(raw.AudioURL)); url != "" {
		entry.AudioURL = url
	}
	entry.ReadingScore = raw.ReadingScore
	entry.WordScore = raw.WordScore
	entry.SentenceScore = raw.SentenceScore
	entry.ExerciseScore = raw.ExerciseScore
	return entry
}

// rawStudent mirrors StudentRecord with lenient scalar types so that
// a single bad field cannot poison the rest of the object.
type rawStudent struct {
	ID               *lenientString    `json:"id"`
	Name             *lenientString    `json:"name"`
	ClassID          *lenientString    `json:"classId"`
	CompletedLessons *lenientInt       `json:"completedLessons"`
	AverageScore     *lenientInt       `json:"averageScore"`
	ReadingSpeed     *Speed            `json:"readingSpeed"`
	History          []json.RawMessage `json:"history"`
	LastPractice     *lenientTime      `json:"lastPractice"`
	Badges           []string          `json:"badges"`
}

type rawWeekly struct {
	Week          lenientInt    `json:"week"`
	Score         lenientInt    `json:"score"`
	Speed         Speed         `json:"speed"`
	AudioURL      lenientString `json:"audioUrl"`
	ReadingScore  *int          `json:"readingScore"`
	WordScore     *int          `json:"wordScore"`
	SentenceScore *int          `json:"sentenceScore"`
	ExerciseScore *int          `json:"exerciseScore"`
}

// lenientInt decodes from a number or a numeric string; anything else
// becomes 0.
type lenientInt int

func (n *lenientInt) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = lenientInt(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = lenientInt(v)
			return nil
		}
	}
	*n = 0
	return nil
}

// lenientString decodes from a string or a number; anything else
// becomes empty.
type lenientString string

func (s *lenientString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = lenientString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = lenientString(num.String())
		return nil
	}
	*s = ""
	return nil
}

// lenientTime decodes an RFC 3339 timestamp or epoch milliseconds;
// anything else becomes the zero time.
type lenientTime struct {
	time.Time
}

func (t *lenientTime) UnmarshalJSON(data []byte) error {
	var parsed time.Time
	if err := json.Unmarshal(data, &parsed); err == nil {
		t.Time = parsed
		return nil
	}
	var millis int64
	if err := json.Unmarshal(data, &millis); err == nil && millis > 0 {
		t.Time = time.UnixMilli(millis)
		return nil
	}
	t.Time = time.Time{}
	return nil
}
