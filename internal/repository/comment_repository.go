package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/model"
)

// CommentRepo provides access to the `comments` and `comments_responses`
// tables.  It only runs the per-source queries; merging, deduplication and
// final ordering belong to the visibility resolver.
type CommentRepo struct{ DB *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{DB: db} }

const commentColumns = "id, question_id, question_theme, question_text, user_id, user_name, user_type, message, created_at"

// Create inserts a comment.
func (r *CommentRepo) Create(ctx context.Context, c model.Comment) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO comments (id, question_id, question_theme, question_text, user_id, user_name, user_type, message, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		c.ID, c.QuestionID, c.QuestionTheme, c.QuestionText,
		c.UserID, c.UserName, string(c.UserType), c.Message, c.CreatedAt.UTC())
	return err
}

// Exists reports whether a comment id refers to a real row; response
// creation requires the parent to exist.
func (r *CommentRepo) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM comments WHERE id = ? LIMIT 1", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// ListByAuthors returns comments written by any of the given users, newest
// first.  An empty author list yields no rows.
func (r *CommentRepo) ListByAuthors(ctx context.Context, authorIDs []string) ([]model.Comment, error) {
	if len(authorIDs) == 0 {
		return []model.Comment{}, nil
	}
	placeholders := strings.Repeat(",?", len(authorIDs))[1:]
	args := make([]any, len(authorIDs))
	for i, id := range authorIDs {
		args[i] = id
	}
	return r.list(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE user_id IN ("+placeholders+") ORDER BY created_at DESC",
		args...)
}

// ListOnPublicQuestionsBy returns every comment, by anyone, on a public
// question created by the given teacher, newest first.
func (r *CommentRepo) ListOnPublicQuestionsBy(ctx context.Context, teacherID string) ([]model.Comment, error) {
	return r.list(ctx,
		`SELECT c.id, c.question_id, c.question_theme, c.question_text, c.user_id, c.user_name, c.user_type, c.message, c.created_at
		 FROM comments c
		 INNER JOIN questions q ON c.question_id = q.id
		 WHERE q.created_by = ? AND q.visibility = ?
		 ORDER BY c.created_at DESC`,
		teacherID, model.VisibilityPublic)
}

// ListByAuthorAsc returns one user's own comments, oldest first.
func (r *CommentRepo) ListByAuthorAsc(ctx context.Context, userID string) ([]model.Comment, error) {
	return r.list(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE user_id = ? ORDER BY created_at ASC",
		userID)
}

// CreateResponse inserts a reply to an existing comment.
func (r *CommentRepo) CreateResponse(ctx context.Context, resp model.CommentResponse) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO comments_responses (id, comment_id, user_id, user_name, user_type, message, created_at)
		 VALUES (?,?,?,?,?,?,?)`,
		resp.ID, resp.CommentID, resp.UserID, resp.UserName, string(resp.UserType),
		resp.Message, resp.CreatedAt.UTC())
	return err
}

// ResponsesFor returns the replies of a comment, oldest first.
func (r *CommentRepo) ResponsesFor(ctx context.Context, commentID string) ([]model.CommentResponse, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, comment_id, user_id, user_name, user_type, message, created_at
		 FROM comments_responses WHERE comment_id = ? ORDER BY created_at ASC`,
		commentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	resps := []model.CommentResponse{}
	for rows.Next() {
		var resp model.CommentResponse
		var userType string
		if err := rows.Scan(&resp.ID, &resp.CommentID, &resp.UserID, &resp.UserName,
			&userType, &resp.Message, &resp.CreatedAt); err != nil {
			return nil, err
		}
		resp.UserType = model.ParseRole(userType)
		resps = append(resps, resp)
	}
	return resps, rows.Err()
}

func (r *CommentRepo) list(ctx context.Context, query string, args ...any) ([]model.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cs := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		var userType string
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.QuestionTheme, &c.QuestionText,
			&c.UserID, &c.UserName, &userType, &c.Message, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.UserType = model.ParseRole(userType)
		cs = append(cs, c)
	}
	return cs, rows.Err()
}
