package model

import "time"

// Question visibility values as stored in questions.visibility.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Feedback is the explanation shown to a student after answering.  It is
// flattened into the feedback_* columns of the questions table.
type Feedback struct {
	Title        string `json:"title"`
	Illustration string `json:"illustration"`
	Text         string `json:"text"`
}

// Question is a row in the `questions` table.  Options are stored as a JSON
// array in options_json; the correct option is an index into that array.
// Mutation is gated on role only, not on CreatedBy: any teacher may edit any
// question.  The deployed clients rely on that for shared question banks.
type Question struct {
	ID                 string
	Theme              string
	Text               string
	Options            []string
	CorrectOptionIndex int
	Feedback           Feedback
	CreatedBy          string
	Visibility         string
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}
