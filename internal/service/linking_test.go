package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/model"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/queue"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/repository"
)

// ----- transactional fakes -----

// fakeTx records undo closures registered by the stores and replays them on
// rollback, mimicking what the database does when a transaction aborts.
type fakeTx struct {
	undo      []func()
	committed bool
}

func (t *fakeTx) Commit() error { t.committed = true; return nil }

func (t *fakeTx) Rollback() error {
	if t.committed {
		return sql.ErrTxDone
	}
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	return nil
}

func (t *fakeTx) ExecContext(context.Context, string, ...any) (sql.Result, error) { return nil, nil }
func (t *fakeTx) QueryContext(context.Context, string, ...any) (*sql.Rows, error) { return nil, nil }
func (t *fakeTx) QueryRowContext(context.Context, string, ...any) *sql.Row        { return nil }

func enlist(tx repository.DBTX, undo func()) {
	ft := tx.(*fakeTx)
	ft.undo = append(ft.undo, undo)
}

type fakeCodeTable struct {
	codes map[string]*model.TeacherCode
}

func newFakeCodeTable() *fakeCodeTable {
	return &fakeCodeTable{codes: map[string]*model.TeacherCode{}}
}

func (f *fakeCodeTable) ActiveForTeacher(_ context.Context, teacherID string, now time.Time) (model.TeacherCode, error) {
	var newest *model.TeacherCode
	for _, c := range f.codes {
		if c.TeacherID != teacherID || c.Expired(now) {
			continue
		}
		if newest == nil || c.CreatedAt.After(newest.CreatedAt) {
			newest = c
		}
	}
	if newest == nil {
		return model.TeacherCode{}, repository.ErrNotFound
	}
	return *newest, nil
}

func (f *fakeCodeTable) SupersedeTx(_ context.Context, tx repository.DBTX, teacherID string, now time.Time) error {
	for _, c := range f.codes {
		if c.TeacherID != teacherID || c.Expired(now) {
			continue
		}
		was := c.ExpiresAt
		c.ExpiresAt = now.Add(-24 * time.Hour)
		enlist(tx, func() { c.ExpiresAt = was })
	}
	return nil
}

func (f *fakeCodeTable) UpsertTx(_ context.Context, tx repository.DBTX, c model.TeacherCode) error {
	if prev, ok := f.codes[c.Code]; ok {
		was := *prev
		*prev = c
		enlist(tx, func() { *prev = was })
		return nil
	}
	row := c
	f.codes[c.Code] = &row
	enlist(tx, func() { delete(f.codes, c.Code) })
	return nil
}

func (f *fakeCodeTable) ClaimTx(_ context.Context, tx repository.DBTX, code, studentID string, now time.Time) (model.TeacherCode, error) {
	c, ok := f.codes[code]
	if !ok || !c.Redeemable(now) {
		return model.TeacherCode{}, repository.ErrCodeNotRedeemable
	}
	usedAt := now
	c.UsedBy, c.UsedAt = &studentID, &usedAt
	enlist(tx, func() { c.UsedBy, c.UsedAt = nil, nil })
	return *c, nil
}

type fakeRelationTable struct {
	rows map[string]model.TeacherStudentRelation
}

func newFakeRelationTable() *fakeRelationTable {
	return &fakeRelationTable{rows: map[string]model.TeacherStudentRelation{}}
}

func (f *fakeRelationTable) CreateTx(_ context.Context, tx repository.DBTX, rel model.TeacherStudentRelation) error {
	id := rel.Key.String()
	if _, ok := f.rows[id]; ok {
		return repository.ErrConflict
	}
	f.rows[id] = rel
	enlist(tx, func() { delete(f.rows, id) })
	return nil
}

func (f *fakeRelationTable) GetByID(_ context.Context, id string) (model.TeacherStudentRelation, error) {
	rel, ok := f.rows[id]
	if !ok {
		return model.TeacherStudentRelation{}, repository.ErrNotFound
	}
	return rel, nil
}

func (f *fakeRelationTable) Delete(_ context.Context, id string) error {
	if _, ok := f.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeNames map[string]string

func (f fakeNames) NameOf(_ context.Context, id string) (string, error) {
	name, ok := f[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	return name, nil
}

func newTestLinking(codes *fakeCodeTable, rels *fakeRelationTable, clock *time.Time) *Linking {
	return &Linking{
		Begin:     func(context.Context) (Tx, error) { return &fakeTx{}, nil },
		Codes:     codes,
		Relations: rels,
		Users:     fakeNames{"t1": "Prof. Maria"},
		Now:       func() time.Time { return *clock },
	}
}

// ----- issuing -----

func TestIssueCodeSupersedesPreviousCode(t *testing.T) {
	codes := newFakeCodeTable()
	rels := newFakeRelationTable()
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestLinking(codes, rels, &clock)

	first, err := s.IssueCode(context.Background(), "t1")
	require.NoError(t, err)

	clock = clock.Add(time.Millisecond)
	second, err := s.IssueCode(context.Background(), "t1")
	require.NoError(t, err)
	require.NotEqual(t, first.Code, second.Code)

	// Only the newest code is advertised and the old one cannot be redeemed.
	active, err := s.ActiveCode(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, second.Code, active)

	_, err = s.Redeem(context.Background(), first.Code, "s1", "Joana")
	assert.ErrorIs(t, err, repository.ErrCodeNotRedeemable)

	rel, err := s.Redeem(context.Background(), second.Code, "s1", "Joana")
	require.NoError(t, err)
	assert.Equal(t, "s1_t1", rel.Key.String())
}

func TestActiveCodeFallsBackWhenNoneIssued(t *testing.T) {
	clock := time.Now().UTC()
	s := newTestLinking(newFakeCodeTable(), newFakeRelationTable(), &clock)

	active, err := s.ActiveCode(context.Background(), "teacher-42")
	require.NoError(t, err)
	assert.Equal(t, model.FallbackLinkCode("teacher-42"), active)
}

// ----- redeeming -----

func TestRedeemSameCodeTwiceCreatesOneRelation(t *testing.T) {
	codes := newFakeCodeTable()
	rels := newFakeRelationTable()
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestLinking(codes, rels, &clock)

	issued, err := s.IssueCode(context.Background(), "t1")
	require.NoError(t, err)

	rel, err := s.Redeem(context.Background(), issued.Code, "s1", "Joana")
	require.NoError(t, err)
	assert.Equal(t, "Prof. Maria", rel.TeacherName)

	_, err = s.Redeem(context.Background(), issued.Code, "s2", "Pedro")
	assert.ErrorIs(t, err, repository.ErrCodeNotRedeemable)
	assert.Len(t, rels.rows, 1)
}

func TestRedeemExpiredCode(t *testing.T) {
	codes := newFakeCodeTable()
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestLinking(codes, newFakeRelationTable(), &clock)

	issued, err := s.IssueCode(context.Background(), "t1")
	require.NoError(t, err)

	clock = clock.Add(model.CodeTTL)
	_, err = s.Redeem(context.Background(), issued.Code, "s1", "Joana")
	assert.ErrorIs(t, err, repository.ErrCodeNotRedeemable)
}

func TestRedeemAlreadyLinkedPairReleasesCode(t *testing.T) {
	codes := newFakeCodeTable()
	rels := newFakeRelationTable()
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestLinking(codes, rels, &clock)

	issued, err := s.IssueCode(context.Background(), "t1")
	require.NoError(t, err)
	_, err = s.Redeem(context.Background(), issued.Code, "s1", "Joana")
	require.NoError(t, err)

	clock = clock.Add(time.Millisecond)
	fresh, err := s.IssueCode(context.Background(), "t1")
	require.NoError(t, err)

	_, err = s.Redeem(context.Background(), fresh.Code, "s1", "Joana")
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Len(t, rels.rows, 1)

	// The aborted claim must not burn the code: another student can still
	// use it.
	stored := codes.codes[fresh.Code]
	require.False(t, stored.Used())

	_, err = s.Redeem(context.Background(), fresh.Code, "s2", "Pedro")
	require.NoError(t, err)
	assert.Len(t, rels.rows, 2)
}

func TestRedeemPublishesLinkEvent(t *testing.T) {
	codes := newFakeCodeTable()
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestLinking(codes, newFakeRelationTable(), &clock)

	var published []queue.StudentLinkedEvent
	s.Publish = func(_ context.Context, ev queue.StudentLinkedEvent) error {
		published = append(published, ev)
		return nil
	}

	issued, err := s.IssueCode(context.Background(), "t1")
	require.NoError(t, err)
	_, err = s.Redeem(context.Background(), issued.Code, "s1", "Joana")
	require.NoError(t, err)

	require.Len(t, published, 1)
	assert.Equal(t, "s1_t1", published[0].RelationID)
	assert.Equal(t, issued.Code, published[0].Code)
	assert.Equal(t, "Prof. Maria", published[0].TeacherName)
	assert.Equal(t, "Joana", published[0].StudentName)
}

// ----- unlinking -----

func TestUnlinkRequiresParticipant(t *testing.T) {
	codes := newFakeCodeTable()
	rels := newFakeRelationTable()
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := newTestLinking(codes, rels, &clock)

	issued, err := s.IssueCode(context.Background(), "t1")
	require.NoError(t, err)
	rel, err := s.Redeem(context.Background(), issued.Code, "s1", "Joana")
	require.NoError(t, err)

	err = s.Unlink(context.Background(), rel.Key.String(), "stranger")
	assert.ErrorIs(t, err, ErrNotParticipant)

	require.NoError(t, s.Unlink(context.Background(), rel.Key.String(), "s1"))
	assert.Empty(t, rels.rows)
}
