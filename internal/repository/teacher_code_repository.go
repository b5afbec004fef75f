package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/model"
)

// TeacherCodeRepo provides access to the `teacher_codes` table.  Issue and
// redeem are multi-step writes, so the mutating methods run inside a caller
// supplied transaction; the linking service owns the transaction boundary.
type TeacherCodeRepo struct{ DB *sql.DB }

func NewTeacherCodeRepo(db *sql.DB) *TeacherCodeRepo { return &TeacherCodeRepo{DB: db} }

// ActiveForTeacher returns the newest non-expired code of a teacher, used or
// not, or ErrNotFound.
func (r *TeacherCodeRepo) ActiveForTeacher(ctx context.Context, teacherID string, now time.Time) (model.TeacherCode, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT code, teacher_id, expires_at, used_by, used_at, created_at
		 FROM teacher_codes
		 WHERE teacher_id = ? AND expires_at > ?
		 ORDER BY created_at DESC LIMIT 1`,
		teacherID, now.UTC())
	return scanCode(row)
}

// SupersedeTx expires every currently active code of the teacher by moving
// its expiry a full day into the past.  Rows are never deleted, only
// time-gated, so a redeemed history stays auditable.
func (r *TeacherCodeRepo) SupersedeTx(ctx context.Context, tx DBTX, teacherID string, now time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE teacher_codes SET expires_at = ? WHERE teacher_id = ? AND expires_at > ?`,
		now.UTC().Add(-24*time.Hour), teacherID, now.UTC())
	return err
}

// UpsertTx inserts the new code row.  When the generated string collides
// with an existing row (codes are short and time-derived, not unique by
// construction) the row is repointed to the issuing teacher and its
// lifecycle reset.  This overwrite is a correctness requirement, not an
// optimization.
func (r *TeacherCodeRepo) UpsertTx(ctx context.Context, tx DBTX, c model.TeacherCode) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE teacher_codes
		 SET teacher_id = ?, expires_at = ?, used_by = NULL, used_at = NULL, created_at = ?
		 WHERE code = ?`,
		c.TeacherID, c.ExpiresAt.UTC(), c.CreatedAt.UTC(), c.Code)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO teacher_codes (code, teacher_id, expires_at, used_by, used_at, created_at)
		 VALUES (?,?,?,NULL,NULL,?)`,
		c.Code, c.TeacherID, c.ExpiresAt.UTC(), c.CreatedAt.UTC())
	if isDuplicateKey(err) {
		// Lost a race with a concurrent issuance of the same string; retry
		// the repoint once inside the same transaction.
		_, err = tx.ExecContext(ctx,
			`UPDATE teacher_codes
			 SET teacher_id = ?, expires_at = ?, used_by = NULL, used_at = NULL, created_at = ?
			 WHERE code = ?`,
			c.TeacherID, c.ExpiresAt.UTC(), c.CreatedAt.UTC(), c.Code)
	}
	return err
}

// ClaimTx atomically transitions a code from ACTIVE to USED for the given
// student and returns the claimed row.  The guarded UPDATE is the whole
// point: two concurrent redemptions of the same code cannot both match
// `used_by IS NULL AND expires_at > now`, so exactly one wins.  Every
// losing case collapses into ErrCodeNotRedeemable.
func (r *TeacherCodeRepo) ClaimTx(ctx context.Context, tx DBTX, code, studentID string, now time.Time) (model.TeacherCode, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE teacher_codes SET used_by = ?, used_at = ?
		 WHERE code = ? AND used_by IS NULL AND expires_at > ?`,
		studentID, now.UTC(), code, now.UTC())
	if err != nil {
		return model.TeacherCode{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.TeacherCode{}, ErrCodeNotRedeemable
	}
	row := tx.QueryRowContext(ctx,
		`SELECT code, teacher_id, expires_at, used_by, used_at, created_at
		 FROM teacher_codes WHERE code = ? LIMIT 1`, code)
	return scanCode(row)
}

func scanCode(row *sql.Row) (model.TeacherCode, error) {
	var c model.TeacherCode
	err := row.Scan(&c.Code, &c.TeacherID, &c.ExpiresAt, &c.UsedBy, &c.UsedAt, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TeacherCode{}, ErrNotFound
	}
	return c, err
}
