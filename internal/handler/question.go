package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/model"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/repository"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/service"
)

// QuestionHandler bundles dependencies for question endpoints.  Mutation is
// gated on the teacher role alone, not on authorship: any teacher may edit
// or delete any question.  That matches the deployed behavior and is relied
// on by shared question banks.
type QuestionHandler struct {
	Questions  *repository.QuestionRepo
	Visibility *service.Visibility
}

func NewQuestionHandler(q *repository.QuestionRepo, v *service.Visibility) *QuestionHandler {
	return &QuestionHandler{Questions: q, Visibility: v}
}

// ----- DTOs -----

type questionReq struct {
	Theme              string         `json:"theme"`
	Text               string         `json:"questionText"`
	Options            []string       `json:"options"`
	CorrectOptionIndex int            `json:"correctOptionIndex"`
	Feedback           model.Feedback `json:"feedback"`
	Visibility         string         `json:"visibility"`
}

type visibilityReq struct {
	Visibility string `json:"visibility"`
}

type questionResp struct {
	ID                 string         `json:"id"`
	Theme              string         `json:"theme"`
	Text               string         `json:"questionText"`
	Options            []string       `json:"options"`
	CorrectOptionIndex int            `json:"correctOptionIndex"`
	Feedback           model.Feedback `json:"feedback"`
	CreatedBy          string         `json:"createdBy"`
	Visibility         string         `json:"visibility"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          *time.Time     `json:"updatedAt,omitempty"`
}

func toQuestionResp(q model.Question) questionResp {
	return questionResp{
		ID:                 q.ID,
		Theme:              q.Theme,
		Text:               q.Text,
		Options:            q.Options,
		CorrectOptionIndex: q.CorrectOptionIndex,
		Feedback:           q.Feedback,
		CreatedBy:          q.CreatedBy,
		Visibility:         q.Visibility,
		CreatedAt:          q.CreatedAt,
		UpdatedAt:          q.UpdatedAt,
	}
}

func (req *questionReq) validate() string {
	req.Theme = strings.TrimSpace(req.Theme)
	req.Text = strings.TrimSpace(req.Text)
	if req.Theme == "" || req.Text == "" {
		return "theme and questionText are required"
	}
	if len(req.Options) < 2 {
		return "at least two options are required"
	}
	if req.CorrectOptionIndex < 0 || req.CorrectOptionIndex >= len(req.Options) {
		return "correctOptionIndex out of range"
	}
	if req.Visibility == "" {
		req.Visibility = model.VisibilityPublic
	}
	if req.Visibility != model.VisibilityPublic && req.Visibility != model.VisibilityPrivate {
		return "visibility must be public or private"
	}
	return ""
}

// Create inserts a new question owned by the calling teacher.
func (h *QuestionHandler) Create(c echo.Context) error {
	if callerRole(c) != model.RoleTeacher {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only teachers can create questions"})
	}
	var req questionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	q := model.Question{
		ID:                 uuid.NewString(),
		Theme:              req.Theme,
		Text:               req.Text,
		Options:            req.Options,
		CorrectOptionIndex: req.CorrectOptionIndex,
		Feedback:           req.Feedback,
		CreatedBy:          callerID(c),
		Visibility:         req.Visibility,
		CreatedAt:          time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Questions.Create(ctx, q); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create question failed"})
	}
	return c.JSON(http.StatusCreated, toQuestionResp(q))
}

// List returns the caller's visible question set: teachers see everything,
// students see public plus their linked teachers' private questions, and a
// caller with no resolvable role only sees public ones.
func (h *QuestionHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	qs, err := h.Visibility.QuestionsFor(ctx, callerID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list questions failed"})
	}
	out := make([]questionResp, 0, len(qs))
	for _, q := range qs {
		out = append(out, toQuestionResp(q))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one question when the caller's visibility branch allows it.
// A private question outside the caller's reach answers 404, never 403, so
// the route does not leak which ids exist.
func (h *QuestionHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	q, err := h.Visibility.QuestionFor(ctx, callerID(c), c.Param("questionId"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "question not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "get question failed"})
	}
	return c.JSON(http.StatusOK, toQuestionResp(q))
}

// Update overwrites the editable fields of a question.
func (h *QuestionHandler) Update(c echo.Context) error {
	if callerRole(c) != model.RoleTeacher {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only teachers can edit questions"})
	}
	var req questionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	q := model.Question{
		ID:                 c.Param("questionId"),
		Theme:              req.Theme,
		Text:               req.Text,
		Options:            req.Options,
		CorrectOptionIndex: req.CorrectOptionIndex,
		Feedback:           req.Feedback,
		Visibility:         req.Visibility,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Questions.Update(ctx, q, callerID(c), time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "question not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update question failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "question updated"})
}

// UpdateVisibility flips the public/private flag of one question.
func (h *QuestionHandler) UpdateVisibility(c echo.Context) error {
	if callerRole(c) != model.RoleTeacher {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only teachers can edit questions"})
	}
	var req visibilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Visibility != model.VisibilityPublic && req.Visibility != model.VisibilityPrivate {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "visibility must be public or private"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Questions.UpdateVisibility(ctx, c.Param("questionId"), req.Visibility, callerID(c), time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "question not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update visibility failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "visibility updated"})
}

// Delete removes a question.
func (h *QuestionHandler) Delete(c echo.Context) error {
	if callerRole(c) != model.RoleTeacher {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only teachers can delete questions"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Questions.Delete(ctx, c.Param("questionId")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "question not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete question failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "question deleted"})
}
