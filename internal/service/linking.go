// Package service holds the business rules that span more than one table:
// teacher-student linking, visibility resolution, and chat aggregation.
package service

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/model"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/queue"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/repository"
)

// LinkPublisher forwards a linking event to the message broker.  Publishing
// is best effort: a broker outage must never fail the request that created
// the relation.
type LinkPublisher func(ctx context.Context, ev queue.StudentLinkedEvent) error

// Tx is the slice of *sql.Tx the linking flow touches: the query surface
// the stores run their statements on, plus commit control.
type Tx interface {
	repository.DBTX
	Commit() error
	Rollback() error
}

// CodeStore is the code-table surface Linking consumes.  Satisfied by
// *repository.TeacherCodeRepo.
type CodeStore interface {
	ActiveForTeacher(ctx context.Context, teacherID string, now time.Time) (model.TeacherCode, error)
	SupersedeTx(ctx context.Context, tx repository.DBTX, teacherID string, now time.Time) error
	UpsertTx(ctx context.Context, tx repository.DBTX, c model.TeacherCode) error
	ClaimTx(ctx context.Context, tx repository.DBTX, code, studentID string, now time.Time) (model.TeacherCode, error)
}

// RelationStore is the relation-table surface Linking consumes.  Satisfied
// by *repository.RelationRepo.
type RelationStore interface {
	CreateTx(ctx context.Context, tx repository.DBTX, rel model.TeacherStudentRelation) error
	GetByID(ctx context.Context, id string) (model.TeacherStudentRelation, error)
	Delete(ctx context.Context, id string) error
}

// NameSource resolves a user id to a display name.
type NameSource interface {
	NameOf(ctx context.Context, id string) (string, error)
}

// Linking owns the two transactional units of the code engine: issuing a
// code (supersede old + upsert new) and redeeming one (claim + create
// relation).  Each unit is a single database transaction, so two concurrent
// redemptions of the same code cannot both produce a relation.
type Linking struct {
	Begin     func(ctx context.Context) (Tx, error)
	Codes     CodeStore
	Relations RelationStore
	Users     NameSource
	Publish   LinkPublisher // optional
	Now       func() time.Time
}

func NewLinking(db *sql.DB, codes *repository.TeacherCodeRepo, rels *repository.RelationRepo, users *repository.UserRepo) *Linking {
	return &Linking{
		Begin:     func(ctx context.Context) (Tx, error) { return db.BeginTx(ctx, nil) },
		Codes:     codes,
		Relations: rels,
		Users:     users,
		Now:       time.Now,
	}
}

// IssueCode expires every active code of the teacher and creates a fresh
// one in the same transaction, guaranteeing at most one redeemable code per
// teacher at any instant.
func (s *Linking) IssueCode(ctx context.Context, teacherID string) (model.TeacherCode, error) {
	now := s.Now().UTC()
	code := model.TeacherCode{
		Code:      model.GenerateLinkCode(teacherID, now),
		TeacherID: teacherID,
		ExpiresAt: now.Add(model.CodeTTL),
		CreatedAt: now,
	}
	tx, err := s.Begin(ctx)
	if err != nil {
		return model.TeacherCode{}, err
	}
	defer tx.Rollback()

	if err := s.Codes.SupersedeTx(ctx, tx, teacherID, now); err != nil {
		return model.TeacherCode{}, err
	}
	if err := s.Codes.UpsertTx(ctx, tx, code); err != nil {
		return model.TeacherCode{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.TeacherCode{}, err
	}
	return code, nil
}

// ActiveCode returns the teacher's current code, or the deterministic
// fallback display code when no active row exists.
func (s *Linking) ActiveCode(ctx context.Context, teacherID string) (string, error) {
	c, err := s.Codes.ActiveForTeacher(ctx, teacherID, s.Now().UTC())
	if err == repository.ErrNotFound {
		return model.FallbackLinkCode(teacherID), nil
	}
	if err != nil {
		return "", err
	}
	return c.Code, nil
}

// Redeem claims the code for the student and creates the relation, all in
// one transaction.  Failure modes:
//
//	repository.ErrCodeNotRedeemable - code missing, already used, or expired
//	repository.ErrConflict          - the pair is already linked; the claim
//	                                  is rolled back so the code stays unused
//
// The relation id is the deterministic RelationKey, so a duplicate link can
// only ever surface as the unique-key conflict, never as a second row.
func (s *Linking) Redeem(ctx context.Context, code, studentID, studentName string) (model.TeacherStudentRelation, error) {
	now := s.Now().UTC()
	tx, err := s.Begin(ctx)
	if err != nil {
		return model.TeacherStudentRelation{}, err
	}
	defer tx.Rollback()

	claimed, err := s.Codes.ClaimTx(ctx, tx, code, studentID, now)
	if err != nil {
		return model.TeacherStudentRelation{}, err
	}
	teacherName, err := s.Users.NameOf(ctx, claimed.TeacherID)
	if err != nil {
		return model.TeacherStudentRelation{}, err
	}
	rel := model.TeacherStudentRelation{
		Key:         model.RelationKey{StudentID: studentID, TeacherID: claimed.TeacherID},
		TeacherName: teacherName,
		StudentName: studentName,
		JoinedAt:    now,
	}
	if err := s.Relations.CreateTx(ctx, tx, rel); err != nil {
		return model.TeacherStudentRelation{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.TeacherStudentRelation{}, err
	}

	if s.Publish != nil {
		ev := queue.StudentLinkedEvent{
			RelationID:  rel.Key.String(),
			TeacherID:   rel.Key.TeacherID,
			TeacherName: rel.TeacherName,
			StudentID:   rel.Key.StudentID,
			StudentName: rel.StudentName,
			Code:        claimed.Code,
			LinkedAt:    now.Format(time.RFC3339),
		}
		if err := s.Publish(ctx, ev); err != nil {
			log.Printf("linking: publish event failed: %v", err)
		}
	}
	return rel, nil
}

// Unlink removes a relation after verifying the caller participates in it.
func (s *Linking) Unlink(ctx context.Context, relationID, callerID string) error {
	rel, err := s.Relations.GetByID(ctx, relationID)
	if err != nil {
		return err
	}
	if rel.Key.TeacherID != callerID && rel.Key.StudentID != callerID {
		return ErrNotParticipant
	}
	return s.Relations.Delete(ctx, relationID)
}
