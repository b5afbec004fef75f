package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/model"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/repository"
)

// ----- in-memory fakes -----

type fakeRoles map[string]model.Role

func (f fakeRoles) RoleOf(_ context.Context, id string) (model.Role, error) {
	return f[id], nil
}

type fakeQuestions struct {
	all []model.Question
}

func (f *fakeQuestions) GetByID(_ context.Context, id string) (model.Question, error) {
	for _, q := range f.all {
		if q.ID == id {
			return q, nil
		}
	}
	return model.Question{}, repository.ErrNotFound
}

func (f *fakeQuestions) ListAll(_ context.Context) ([]model.Question, error) {
	return f.all, nil
}

func (f *fakeQuestions) ListPublic(_ context.Context) ([]model.Question, error) {
	out := []model.Question{}
	for _, q := range f.all {
		if q.Visibility == model.VisibilityPublic {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestions) ListVisibleToStudent(_ context.Context, teacherIDs []string) ([]model.Question, error) {
	linked := map[string]bool{}
	for _, id := range teacherIDs {
		linked[id] = true
	}
	out := []model.Question{}
	for _, q := range f.all {
		if q.Visibility == model.VisibilityPublic || linked[q.CreatedBy] {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeRelations struct {
	teachersOf map[string][]string
	studentsOf map[string][]string
	err        error
}

func (f *fakeRelations) TeacherIDsOf(_ context.Context, studentID string) ([]string, error) {
	return f.teachersOf[studentID], f.err
}

func (f *fakeRelations) StudentIDsOf(_ context.Context, teacherID string) ([]string, error) {
	return f.studentsOf[teacherID], f.err
}

type fakeComments struct {
	byAuthor    map[string][]model.Comment
	onPublicBy  map[string][]model.Comment
	responses   map[string][]model.CommentResponse
	responseErr error
}

func (f *fakeComments) ListByAuthors(_ context.Context, authorIDs []string) ([]model.Comment, error) {
	out := []model.Comment{}
	for _, id := range authorIDs {
		out = append(out, f.byAuthor[id]...)
	}
	return out, nil
}

func (f *fakeComments) ListOnPublicQuestionsBy(_ context.Context, teacherID string) ([]model.Comment, error) {
	return f.onPublicBy[teacherID], nil
}

func (f *fakeComments) ListByAuthorAsc(_ context.Context, userID string) ([]model.Comment, error) {
	return f.byAuthor[userID], nil
}

func (f *fakeComments) ResponsesFor(_ context.Context, commentID string) ([]model.CommentResponse, error) {
	if f.responseErr != nil {
		return nil, f.responseErr
	}
	return f.responses[commentID], nil
}

func question(id, createdBy, visibility string) model.Question {
	return model.Question{ID: id, CreatedBy: createdBy, Visibility: visibility}
}

func comment(id, author string, createdAt time.Time) model.Comment {
	return model.Comment{ID: id, UserID: author, CreatedAt: createdAt}
}

func questionIDs(qs []model.Question) []string {
	ids := make([]string, 0, len(qs))
	for _, q := range qs {
		ids = append(ids, q.ID)
	}
	return ids
}

// ----- question visibility -----

func newQuestionFixture() *fakeQuestions {
	return &fakeQuestions{all: []model.Question{
		question("q1", "t1", model.VisibilityPublic),
		question("q2", "t1", model.VisibilityPrivate),
		question("q3", "t2", model.VisibilityPrivate),
		question("q4", "t2", model.VisibilityPublic),
	}}
}

func TestQuestionsForTeacherSeesEverything(t *testing.T) {
	v := NewVisibility(
		fakeRoles{"t1": model.RoleTeacher},
		newQuestionFixture(),
		&fakeRelations{},
		&fakeComments{},
	)
	qs, err := v.QuestionsFor(context.Background(), "t1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"q1", "q2", "q3", "q4"}, questionIDs(qs))
}

func TestQuestionsForStudentSeesPublicPlusLinkedPrivate(t *testing.T) {
	v := NewVisibility(
		fakeRoles{"s1": model.RoleStudent},
		newQuestionFixture(),
		&fakeRelations{teachersOf: map[string][]string{"s1": {"t1"}}},
		&fakeComments{},
	)
	qs, err := v.QuestionsFor(context.Background(), "s1")
	require.NoError(t, err)
	// q2 is linked-teacher private, q3 is unlinked-teacher private.
	assert.ElementsMatch(t, []string{"q1", "q2", "q4"}, questionIDs(qs))
}

func TestQuestionsForUnlinkedStudentSeesPublicOnly(t *testing.T) {
	v := NewVisibility(
		fakeRoles{"s2": model.RoleStudent},
		newQuestionFixture(),
		&fakeRelations{},
		&fakeComments{},
	)
	qs, err := v.QuestionsFor(context.Background(), "s2")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"q1", "q4"}, questionIDs(qs))
}

func TestQuestionsForUnknownRoleSeesPublicOnly(t *testing.T) {
	v := NewVisibility(
		fakeRoles{},
		newQuestionFixture(),
		&fakeRelations{},
		&fakeComments{},
	)
	qs, err := v.QuestionsFor(context.Background(), "nobody")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"q1", "q4"}, questionIDs(qs))
}

func TestQuestionsForStudentDegradesWhenRelationsFail(t *testing.T) {
	v := NewVisibility(
		fakeRoles{"s1": model.RoleStudent},
		newQuestionFixture(),
		&fakeRelations{err: errors.New("db down")},
		&fakeComments{},
	)
	qs, err := v.QuestionsFor(context.Background(), "s1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"q1", "q4"}, questionIDs(qs))
}

func TestQuestionForAppliesBranchPolicy(t *testing.T) {
	cases := []struct {
		name       string
		actor      string
		questionID string
		visible    bool
	}{
		{"teacher sees any private", "t1", "q3", true},
		{"student sees linked private", "s1", "q2", true},
		{"student blocked from unlinked private", "s1", "q3", false},
		{"unknown role sees public", "nobody", "q1", true},
		{"unknown role blocked from private", "nobody", "q2", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := NewVisibility(
				fakeRoles{"t1": model.RoleTeacher, "s1": model.RoleStudent},
				newQuestionFixture(),
				&fakeRelations{teachersOf: map[string][]string{"s1": {"t1"}}},
				&fakeComments{},
			)
			q, err := v.QuestionFor(context.Background(), tc.actor, tc.questionID)
			if tc.visible {
				require.NoError(t, err)
				assert.Equal(t, tc.questionID, q.ID)
			} else {
				assert.ErrorIs(t, err, repository.ErrNotFound)
			}
		})
	}
}

func TestQuestionForMissingQuestion(t *testing.T) {
	v := NewVisibility(fakeRoles{}, newQuestionFixture(), &fakeRelations{}, &fakeComments{})
	_, err := v.QuestionFor(context.Background(), "t1", "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// ----- teacher comment aggregation -----

func TestTeacherCommentsMergesAndDeduplicates(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// c1 comes from a linked student AND sits on the teacher's public
	// question, so it satisfies both sources.
	c1 := comment("c1", "s1", base.Add(1*time.Minute))
	c2 := comment("c2", "s1", base.Add(3*time.Minute))
	c3 := comment("c3", "stranger", base.Add(2*time.Minute))

	v := NewVisibility(
		fakeRoles{"t1": model.RoleTeacher},
		&fakeQuestions{},
		&fakeRelations{studentsOf: map[string][]string{"t1": {"s1"}}},
		&fakeComments{
			byAuthor:   map[string][]model.Comment{"s1": {c1, c2}},
			onPublicBy: map[string][]model.Comment{"t1": {c1, c3}},
		},
	)

	merged, err := v.TeacherComments(context.Background(), "t1")
	require.NoError(t, err)

	ids := make([]string, 0, len(merged))
	for _, c := range merged {
		ids = append(ids, c.ID)
	}
	// Deduplicated by id and ordered newest first.
	assert.Equal(t, []string{"c2", "c3", "c1"}, ids)
}

func TestTeacherCommentsAttachOrderedResponses(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c1 := comment("c1", "s1", base)
	r1 := model.CommentResponse{ID: "r1", CommentID: "c1", CreatedAt: base.Add(time.Minute)}
	r2 := model.CommentResponse{ID: "r2", CommentID: "c1", CreatedAt: base.Add(2 * time.Minute)}

	v := NewVisibility(
		fakeRoles{},
		&fakeQuestions{},
		&fakeRelations{studentsOf: map[string][]string{"t1": {"s1"}}},
		&fakeComments{
			byAuthor:  map[string][]model.Comment{"s1": {c1}},
			responses: map[string][]model.CommentResponse{"c1": {r1, r2}},
		},
	)

	merged, err := v.TeacherComments(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, merged, 1)
	require.Len(t, merged[0].Responses, 2)
	assert.Equal(t, "r1", merged[0].Responses[0].ID)
	assert.Equal(t, "r2", merged[0].Responses[1].ID)
}

func TestTeacherCommentsSkipFailedResponseLookup(t *testing.T) {
	c1 := comment("c1", "s1", time.Now().UTC())

	v := NewVisibility(
		fakeRoles{},
		&fakeQuestions{},
		&fakeRelations{studentsOf: map[string][]string{"t1": {"s1"}}},
		&fakeComments{
			byAuthor:    map[string][]model.Comment{"s1": {c1}},
			responseErr: errors.New("db down"),
		},
	)

	merged, err := v.TeacherComments(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Empty(t, merged[0].Responses)
}

// ----- student comment thread -----

func TestStudentCommentsKeepAscendingOrder(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c1 := comment("c1", "s1", base)
	c2 := comment("c2", "s1", base.Add(time.Minute))

	v := NewVisibility(
		fakeRoles{},
		&fakeQuestions{},
		&fakeRelations{},
		&fakeComments{
			byAuthor:  map[string][]model.Comment{"s1": {c1, c2}},
			responses: map[string][]model.CommentResponse{"c2": {{ID: "r1", CommentID: "c2"}}},
		},
	)

	comments, err := v.StudentComments(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "c1", comments[0].ID)
	assert.Equal(t, "c2", comments[1].ID)
	assert.Empty(t, comments[0].Responses)
	assert.Len(t, comments[1].Responses, 1)
}
