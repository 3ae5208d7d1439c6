package models

import (
	"math"
	"sort"
	"time"
)

// DefaultClassID is the grouping key for students that were created
// before classes existed. Listing the default class must also return
// records with no class at all.
const DefaultClassID = "DEFAULT"

// StudentRecord is one student's persisted profile and practice
// history. LastPractice is the conflict-resolution clock: whichever
// side of a merge carries the newer timestamp wins the record.
type StudentRecord struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	ClassID          string         `json:"classId,omitempty"`
	CompletedLessons int            `json:"completedLessons"`
	AverageScore     int            `json:"averageScore"`
	ReadingSpeed     Speed          `json:"readingSpeed"`
	History          []WeeklyRecord `json:"history"`
	LastPractice     time.Time      `json:"lastPractice"`
	Badges           []string       `json:"badges"`
}

// WeeklyRecord is one week's practice outcome. The sub-scores are
// only set by manual teacher edits and are not inputs to the overall
// score.
type WeeklyRecord struct {
	Week          int    `json:"week"`
	Score         int    `json:"score"`
	Speed         Speed  `json:"speed"`
	AudioURL      string `json:"audioUrl,omitempty"`
	ReadingScore  *int   `json:"readingScore,omitempty"`
	WordScore     *int   `json:"wordScore,omitempty"`
	SentenceScore *int   `json:"sentenceScore,omitempty"`
	ExerciseScore *int   `json:"exerciseScore,omitempty"`
}

// WeekEntry returns a pointer to the history entry for the given
// week, or nil if the student has not practiced that week.
func (s *StudentRecord) WeekEntry(week int) *WeeklyRecord {
	for i := range s.History {
		if s.History[i].Week == week {
			return &s.History[i]
		}
	}
	return nil
}

// SortHistory orders the history by week ascending. The sort is
// stable so duplicate week entries keep their relative order.
func (s *StudentRecord) SortHistory() {
	sort.SliceStable(s.History, func(i, j int) bool {
		return s.History[i].Week < s.History[j].Week
	})
}

// RecomputeAverage sets AverageScore to the rounded mean of all
// history scores. An empty history yields 0.
func (s *StudentRecord) RecomputeAverage() {
	if len(s.History) == 0 {
		s.AverageScore = 0
		return
	}
	total := 0
	for _, h := range s.History {
		total += h.Score
	}
	s.AverageScore = int(math.Round(float64(total) / float64(len(s.History))))
}

// Clone returns a deep copy of the record so callers can mutate it
// without aliasing cached state.
func (s StudentRecord) Clone() StudentRecord {
	out := s
	if s.History != nil {
		out.History = make([]WeeklyRecord, len(s.History))
		for i, h := range s.History {
			entry := h
			entry.ReadingScore = cloneIntPtr(h.ReadingScore)
			entry.WordScore = cloneIntPtr(h.WordScore)
			entry.SentenceScore = cloneIntPtr(h.SentenceScore)
			entry.ExerciseScore = cloneIntPtr(h.ExerciseScore)
			out.History[i] = entry
		}
	}
	if s.Badges != nil {
		out.Badges = append([]string(nil), s.Badges...)
	}
	return out
}

// InDefaultClass reports whether the record belongs to the legacy
// ungrouped class, either explicitly or by having no class at all.
func (s *StudentRecord) InDefaultClass() bool {
	return s.ClassID == "" || s.ClassID == DefaultClassID
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
