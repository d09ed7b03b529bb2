package domain

import "time"

// Difficulty is the closed set of course difficulty levels.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// Valid reports whether the difficulty is a known level.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Lesson is one entry in a course's ordered lesson sequence.
type Lesson struct {
	Position    int
	Title       string
	Duration    string
	VideoID     string
	Description string
	Resources   []string
}

// Course mirrors the persisted representation in the courses table.
// The catalog is read-only to this service apart from the students counter,
// which is incremented as a side effect of enrollment.
type Course struct {
	ID            string
	Title         string
	Description   string
	Instructor    string
	Category      string
	Difficulty    Difficulty
	Duration      string
	Thumbnail     string
	Price         float64
	Rating        float64
	StudentsCount int
	Lessons       []Lesson
	Tags          []string
	IsPublished   bool
	CreatedAt     time.Time
}

// LessonCount returns the length of the lesson sequence.
func (c Course) LessonCount() int {
	return len(c.Lessons)
}
