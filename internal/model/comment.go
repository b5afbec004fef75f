package model

import "time"

// Comment is a row in the `comments` table.  The question theme and text
// are snapshotted at comment time so the thread stays readable even if the
// question is later edited or deleted.
type Comment struct {
	ID            string
	QuestionID    string
	QuestionTheme string
	QuestionText  string
	UserID        string
	UserName      string
	UserType      Role
	Message       string
	CreatedAt     time.Time
	Responses     []CommentResponse
}

// CommentResponse is a row in `comments_responses`: a flat one-level reply
// to a comment, never a nested tree.  Responses carry their own author
// snapshot independent of the parent's author and are never edited or
// deleted.
type CommentResponse struct {
	ID        string
	CommentID string
	UserID    string
	UserName  string
	UserType  Role
	Message   string
	CreatedAt time.Time
}
