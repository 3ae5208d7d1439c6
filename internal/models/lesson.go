package models

// Lesson is one week's reading material: the text itself plus the
// phonemes and vocabulary it introduces, and optional comprehension
// questions.
type Lesson struct {
	ID          string         `json:"id"`
	Week        int            `json:"week"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	ReadingText []string       `json:"readingText"`
	Phonemes    []string       `json:"phonemes"`
	Vocabulary  []string       `json:"vocabulary"`
	Questions   []QuizQuestion `json:"questions,omitempty"`
}

// QuizQuestion is a multiple-choice comprehension question attached
// to a lesson.
type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}
