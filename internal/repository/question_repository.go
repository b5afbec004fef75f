package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/model"
)

// QuestionRepo provides access to the `questions` table.  The options list
// lives in the options_json column and is (de)serialized here so callers
// only ever see []string.
type QuestionRepo struct{ DB *sql.DB }

func NewQuestionRepo(db *sql.DB) *QuestionRepo { return &QuestionRepo{DB: db} }

const questionColumns = `id, theme, question_text, options_json, correct_option_index,
	feedback_title, feedback_illustration, feedback_text, created_by, visibility, created_at, updated_at`

// Create inserts a new question.
func (r *QuestionRepo) Create(ctx context.Context, q model.Question) error {
	opts, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO questions (id, theme, question_text, options_json, correct_option_index,
		   feedback_title, feedback_illustration, feedback_text, created_by, visibility, created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		q.ID, q.Theme, q.Text, string(opts), q.CorrectOptionIndex,
		q.Feedback.Title, q.Feedback.Illustration, q.Feedback.Text,
		q.CreatedBy, q.Visibility, q.CreatedAt.UTC())
	return err
}

// ListAll returns every question regardless of visibility, newest first.
// This is the teacher branch of the resolver: teachers form a trusted
// cohort with global read.
func (r *QuestionRepo) ListAll(ctx context.Context) ([]model.Question, error) {
	return r.list(ctx, "SELECT "+questionColumns+" FROM questions ORDER BY created_at DESC")
}

// ListPublic returns only public questions, newest first.
func (r *QuestionRepo) ListPublic(ctx context.Context) ([]model.Question, error) {
	return r.list(ctx,
		"SELECT "+questionColumns+" FROM questions WHERE visibility = ? ORDER BY created_at DESC",
		model.VisibilityPublic)
}

// ListVisibleToStudent returns public questions plus private questions
// created by any of the given linked teachers, newest first.  An empty
// teacher list degrades to ListPublic.
func (r *QuestionRepo) ListVisibleToStudent(ctx context.Context, linkedTeacherIDs []string) ([]model.Question, error) {
	if len(linkedTeacherIDs) == 0 {
		return r.ListPublic(ctx)
	}
	placeholders := strings.Repeat(",?", len(linkedTeacherIDs))[1:]
	args := []any{model.VisibilityPublic, model.VisibilityPrivate}
	for _, id := range linkedTeacherIDs {
		args = append(args, id)
	}
	return r.list(ctx,
		`SELECT `+questionColumns+` FROM questions
		 WHERE visibility = ? OR (visibility = ? AND created_by IN (`+placeholders+`))
		 ORDER BY created_at DESC`, args...)
}

// Update overwrites the editable fields of a question.  Ownership is not
// checked here or in the handler: any teacher may edit any question, and
// the deployed clients rely on that for shared question banks.
func (r *QuestionRepo) Update(ctx context.Context, q model.Question, updatedBy string, now time.Time) error {
	opts, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE questions SET theme = ?, question_text = ?, options_json = ?, correct_option_index = ?,
		   feedback_title = ?, feedback_illustration = ?, feedback_text = ?, visibility = ?,
		   updated_by = ?, updated_at = ?
		 WHERE id = ?`,
		q.Theme, q.Text, string(opts), q.CorrectOptionIndex,
		q.Feedback.Title, q.Feedback.Illustration, q.Feedback.Text, q.Visibility,
		updatedBy, now.UTC(), q.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateVisibility flips only the visibility flag.
func (r *QuestionRepo) UpdateVisibility(ctx context.Context, id, visibility, updatedBy string, now time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE questions SET visibility = ?, updated_by = ?, updated_at = ? WHERE id = ?",
		visibility, updatedBy, now.UTC(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a question.
func (r *QuestionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM questions WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *QuestionRepo) list(ctx context.Context, query string, args ...any) ([]model.Question, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	qs := []model.Question{}
	for rows.Next() {
		var q model.Question
		var opts string
		if err := rows.Scan(&q.ID, &q.Theme, &q.Text, &opts, &q.CorrectOptionIndex,
			&q.Feedback.Title, &q.Feedback.Illustration, &q.Feedback.Text,
			&q.CreatedBy, &q.Visibility, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
			return nil, err
		}
		qs = append(qs, q)
	}
	return qs, rows.Err()
}

// GetByID fetches a single question.
func (r *QuestionRepo) GetByID(ctx context.Context, id string) (model.Question, error) {
	var q model.Question
	var opts string
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+questionColumns+" FROM questions WHERE id = ? LIMIT 1", id).
		Scan(&q.ID, &q.Theme, &q.Text, &opts, &q.CorrectOptionIndex,
			&q.Feedback.Title, &q.Feedback.Illustration, &q.Feedback.Text,
			&q.CreatedBy, &q.Visibility, &q.CreatedAt, &q.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Question{}, ErrNotFound
	}
	if err != nil {
		return model.Question{}, err
	}
	if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
		return model.Question{}, err
	}
	return q, nil
}
