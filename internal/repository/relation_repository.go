package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/model"
)

// RelationRepo provides access to the `teacher_students` table.
type RelationRepo struct{ DB *sql.DB }

func NewRelationRepo(db *sql.DB) *RelationRepo { return &RelationRepo{DB: db} }

const relationColumns = "id, teacher_id, student_id, teacher_name, student_name, joined_at"

// CreateTx inserts a relation inside the redemption transaction.  The
// composite primary key makes duplicate links impossible; a second
// redemption for an already linked pair rolls the whole transaction back,
// which also releases the claimed code.
func (r *RelationRepo) CreateTx(ctx context.Context, tx DBTX, rel model.TeacherStudentRelation) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO teacher_students (id, teacher_id, student_id, teacher_name, student_name, joined_at)
		 VALUES (?,?,?,?,?,?)`,
		rel.Key.String(), rel.Key.TeacherID, rel.Key.StudentID,
		rel.TeacherName, rel.StudentName, rel.JoinedAt.UTC())
	if isDuplicateKey(err) {
		return ErrConflict
	}
	return err
}

// GetByID fetches one relation by its composite id.
func (r *RelationRepo) GetByID(ctx context.Context, id string) (model.TeacherStudentRelation, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+relationColumns+" FROM teacher_students WHERE id = ? LIMIT 1", id)
	return scanRelation(row.Scan)
}

// ListByTeacher returns a teacher's links, most recent first.
func (r *RelationRepo) ListByTeacher(ctx context.Context, teacherID string) ([]model.TeacherStudentRelation, error) {
	return r.list(ctx,
		"SELECT "+relationColumns+" FROM teacher_students WHERE teacher_id = ? ORDER BY joined_at DESC",
		teacherID)
}

// ListByStudent returns a student's links, most recent first.
func (r *RelationRepo) ListByStudent(ctx context.Context, studentID string) ([]model.TeacherStudentRelation, error) {
	return r.list(ctx,
		"SELECT "+relationColumns+" FROM teacher_students WHERE student_id = ? ORDER BY joined_at DESC",
		studentID)
}

// TeacherIDsOf returns the ids of every teacher the student is currently
// linked to; the visibility resolver feeds these into the private-question
// filter.
func (r *RelationRepo) TeacherIDsOf(ctx context.Context, studentID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT teacher_id FROM teacher_students WHERE student_id = ?", studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// StudentIDsOf returns the ids of every student linked to the teacher.
func (r *RelationRepo) StudentIDsOf(ctx context.Context, teacherID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT student_id FROM teacher_students WHERE teacher_id = ?", teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes a relation (explicit unlink by either participant).
func (r *RelationRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM teacher_students WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RelationRepo) list(ctx context.Context, query string, args ...any) ([]model.TeacherStudentRelation, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rels := []model.TeacherStudentRelation{}
	for rows.Next() {
		rel, err := scanRelation(rows.Scan)
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	return rels, rows.Err()
}

func scanRelation(scan func(...any) error) (model.TeacherStudentRelation, error) {
	var rel model.TeacherStudentRelation
	var id string
	var joinedAt time.Time
	err := scan(&id, &rel.Key.TeacherID, &rel.Key.StudentID, &rel.TeacherName, &rel.StudentName, &joinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TeacherStudentRelation{}, ErrNotFound
	}
	if err != nil {
		return model.TeacherStudentRelation{}, err
	}
	rel.JoinedAt = joinedAt
	return rel, nil
}
