package service

import (
	"context"
	"errors"
	"log"
	"sort"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/model"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/repository"
)

// ErrNotParticipant is returned when a caller tries to act on a relation or
// resolver subject that is not theirs.  Handlers translate it into 403.
var ErrNotParticipant = errors.New("caller is not a participant")

// RoleSource resolves the role of a user id.
type RoleSource interface {
	RoleOf(ctx context.Context, id string) (model.Role, error)
}

// QuestionSource runs the per-branch question queries.
type QuestionSource interface {
	GetByID(ctx context.Context, id string) (model.Question, error)
	ListAll(ctx context.Context) ([]model.Question, error)
	ListPublic(ctx context.Context) ([]model.Question, error)
	ListVisibleToStudent(ctx context.Context, linkedTeacherIDs []string) ([]model.Question, error)
}

// RelationSource exposes the current link graph.
type RelationSource interface {
	TeacherIDsOf(ctx context.Context, studentID string) ([]string, error)
	StudentIDsOf(ctx context.Context, teacherID string) ([]string, error)
}

// CommentSource runs the per-source comment queries.
type CommentSource interface {
	ListByAuthors(ctx context.Context, authorIDs []string) ([]model.Comment, error)
	ListOnPublicQuestionsBy(ctx context.Context, teacherID string) ([]model.Comment, error)
	ListByAuthorAsc(ctx context.Context, userID string) ([]model.Comment, error)
	ResponsesFor(ctx context.Context, commentID string) ([]model.CommentResponse, error)
}

// Visibility computes what an actor may see.  It is deliberately defined
// over small store interfaces so the branch logic can be exercised against
// in-memory fakes.
type Visibility struct {
	Roles     RoleSource
	Questions QuestionSource
	Relations RelationSource
	Comments  CommentSource
}

func NewVisibility(roles RoleSource, questions QuestionSource, relations RelationSource, comments CommentSource) *Visibility {
	return &Visibility{Roles: roles, Questions: questions, Relations: relations, Comments: comments}
}

// QuestionsFor implements the three-branch visibility policy:
//
//	teacher - every question, public or private, owned or not
//	student - public questions plus private questions of linked teachers
//	unknown - public questions only
func (v *Visibility) QuestionsFor(ctx context.Context, actorID string) ([]model.Question, error) {
	role, err := v.Roles.RoleOf(ctx, actorID)
	if err != nil {
		return nil, err
	}
	switch role {
	case model.RoleTeacher:
		return v.Questions.ListAll(ctx)
	case model.RoleStudent:
		teacherIDs, err := v.Relations.TeacherIDsOf(ctx, actorID)
		if err != nil {
			// A broken relation lookup degrades the student to the public
			// set instead of failing the whole listing.
			log.Printf("visibility: relations of student %s unavailable: %v", actorID, err)
			teacherIDs = nil
		}
		return v.Questions.ListVisibleToStudent(ctx, teacherIDs)
	case model.RoleUnknown:
		return v.Questions.ListPublic(ctx)
	}
	return v.Questions.ListPublic(ctx)
}

// QuestionFor fetches a single question under the same policy as
// QuestionsFor.  A private question the actor may not see reads as
// repository.ErrNotFound so its existence is never disclosed.
func (v *Visibility) QuestionFor(ctx context.Context, actorID, questionID string) (model.Question, error) {
	q, err := v.Questions.GetByID(ctx, questionID)
	if err != nil {
		return model.Question{}, err
	}
	if q.Visibility == model.VisibilityPublic {
		return q, nil
	}
	role, err := v.Roles.RoleOf(ctx, actorID)
	if err != nil {
		return model.Question{}, err
	}
	switch role {
	case model.RoleTeacher:
		return q, nil
	case model.RoleStudent:
		teacherIDs, err := v.Relations.TeacherIDsOf(ctx, actorID)
		if err != nil {
			log.Printf("visibility: relations of student %s unavailable: %v", actorID, err)
			teacherIDs = nil
		}
		for _, id := range teacherIDs {
			if id == q.CreatedBy {
				return q, nil
			}
		}
	}
	return model.Question{}, repository.ErrNotFound
}

// TeacherComments merges two sources: comments authored by the teacher's
// linked students, and comments by anyone on the teacher's public
// questions.  A comment satisfying both conditions appears once.  The
// merged set is ordered by creation time descending and each comment
// carries its replies, oldest first.
func (v *Visibility) TeacherComments(ctx context.Context, teacherID string) ([]model.Comment, error) {
	studentIDs, err := v.Relations.StudentIDsOf(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	fromStudents, err := v.Comments.ListByAuthors(ctx, studentIDs)
	if err != nil {
		return nil, err
	}
	onPublic, err := v.Comments.ListOnPublicQuestionsBy(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(fromStudents)+len(onPublic))
	merged := make([]model.Comment, 0, len(fromStudents)+len(onPublic))
	for _, c := range append(fromStudents, onPublic...) {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		v.attachResponses(ctx, &c)
		merged = append(merged, c)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged, nil
}

// StudentComments returns the student's own comment thread: comments oldest
// first, each with its replies oldest first.
func (v *Visibility) StudentComments(ctx context.Context, studentID string) ([]model.Comment, error) {
	comments, err := v.Comments.ListByAuthorAsc(ctx, studentID)
	if err != nil {
		return nil, err
	}
	for i := range comments {
		v.attachResponses(ctx, &comments[i])
	}
	return comments, nil
}

// attachResponses loads the replies of one comment.  A failed lookup leaves
// the comment with an empty reply list rather than aborting the collection
// (skip and continue).
func (v *Visibility) attachResponses(ctx context.Context, c *model.Comment) {
	resps, err := v.Comments.ResponsesFor(ctx, c.ID)
	if err != nil {
		log.Printf("visibility: responses for comment %s unavailable: %v", c.ID, err)
		resps = []model.CommentResponse{}
	}
	c.Responses = resps
}
