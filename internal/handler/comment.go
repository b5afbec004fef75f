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

// CommentHandler bundles dependencies for comment and response endpoints.
type CommentHandler struct {
	Comments   *repository.CommentRepo
	Users      *repository.UserRepo
	Visibility *service.Visibility
}

func NewCommentHandler(c *repository.CommentRepo, u *repository.UserRepo, v *service.Visibility) *CommentHandler {
	return &CommentHandler{Comments: c, Users: u, Visibility: v}
}

// ----- DTOs -----

type commentReq struct {
	QuestionID    string `json:"questionId"`
	QuestionTheme string `json:"questionTheme"`
	QuestionText  string `json:"questionText"`
	Message       string `json:"message"`
}

type commentResponseReq struct {
	CommentID string `json:"commentId"`
	Message   string `json:"message"`
}

type responseResp struct {
	ID        string    `json:"id"`
	CommentID string    `json:"commentId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	UserType  string    `json:"userType"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type commentResp struct {
	ID            string         `json:"id"`
	QuestionID    string         `json:"questionId"`
	QuestionTheme string         `json:"questionTheme"`
	QuestionText  string         `json:"questionText"`
	UserID        string         `json:"userId"`
	UserName      string         `json:"userName"`
	UserType      string         `json:"userType"`
	Message       string         `json:"message"`
	CreatedAt     time.Time      `json:"createdAt"`
	Responses     []responseResp `json:"responses"`
}

func toCommentResp(cm model.Comment) commentResp {
	resps := make([]responseResp, 0, len(cm.Responses))
	for _, r := range cm.Responses {
		resps = append(resps, responseResp{
			ID:        r.ID,
			CommentID: r.CommentID,
			UserID:    r.UserID,
			UserName:  r.UserName,
			UserType:  string(r.UserType),
			Message:   r.Message,
			CreatedAt: r.CreatedAt,
		})
	}
	return commentResp{
		ID:            cm.ID,
		QuestionID:    cm.QuestionID,
		QuestionTheme: cm.QuestionTheme,
		QuestionText:  cm.QuestionText,
		UserID:        cm.UserID,
		UserName:      cm.UserName,
		UserType:      string(cm.UserType),
		Message:       cm.Message,
		CreatedAt:     cm.CreatedAt,
		Responses:     resps,
	}
}

// Add creates a comment on a question.  The question theme and text arrive
// from the client and are stored as a snapshot; the author identity and role
// come from the users table, never from the body.
func (h *CommentHandler) Add(c echo.Context) error {
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.QuestionID == "" || req.QuestionTheme == "" || req.QuestionText == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "questionId, questionTheme, questionText and message are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	author, err := h.Users.GetByID(ctx, callerID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load author failed"})
	}
	if !author.UserType.Valid() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only teachers and students can comment"})
	}

	cm := model.Comment{
		ID:            uuid.NewString(),
		QuestionID:    req.QuestionID,
		QuestionTheme: req.QuestionTheme,
		QuestionText:  req.QuestionText,
		UserID:        author.ID,
		UserName:      author.FullName,
		UserType:      author.UserType,
		Message:       req.Message,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.Comments.Create(ctx, cm); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create comment failed"})
	}
	return c.JSON(http.StatusCreated, toCommentResp(cm))
}

// TeacherComments returns the teacher's merged comment feed: everything
// written by their linked students plus everything written on their public
// questions, deduplicated and newest first.  Only the teacher themselves
// may read it.
func (h *CommentHandler) TeacherComments(c echo.Context) error {
	teacherID := c.Param("teacherId")
	if callerID(c) != teacherID || callerRole(c) != model.RoleTeacher {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	comments, err := h.Visibility.TeacherComments(ctx, teacherID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list comments failed"})
	}
	out := make([]commentResp, 0, len(comments))
	for _, cm := range comments {
		out = append(out, toCommentResp(cm))
	}
	return c.JSON(http.StatusOK, out)
}

// StudentComments returns the student's own comment thread, oldest first.
// Only the student themselves may read it.
func (h *CommentHandler) StudentComments(c echo.Context) error {
	studentID := c.Param("studentId")
	if callerID(c) != studentID || callerRole(c) != model.RoleStudent {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	comments, err := h.Visibility.StudentComments(ctx, studentID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list comments failed"})
	}
	out := make([]commentResp, 0, len(comments))
	for _, cm := range comments {
		out = append(out, toCommentResp(cm))
	}
	return c.JSON(http.StatusOK, out)
}

// AddResponse creates a reply on an existing comment.  The reply carries its
// own author snapshot, independent of the parent comment's author.
func (h *CommentHandler) AddResponse(c echo.Context) error {
	var req commentResponseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.CommentID == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "commentId and message are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ok, err := h.Comments.Exists(ctx, req.CommentID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load comment failed"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
	}

	author, err := h.Users.GetByID(ctx, callerID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only teachers and students can reply"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load author failed"})
	}
	if !author.UserType.Valid() {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only teachers and students can reply"})
	}

	resp := model.CommentResponse{
		ID:        uuid.NewString(),
		CommentID: req.CommentID,
		UserID:    author.ID,
		UserName:  author.FullName,
		UserType:  author.UserType,
		Message:   req.Message,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Comments.CreateResponse(ctx, resp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create response failed"})
	}
	return c.JSON(http.StatusCreated, responseResp{
		ID:        resp.ID,
		CommentID: resp.CommentID,
		UserID:    resp.UserID,
		UserName:  resp.UserName,
		UserType:  string(resp.UserType),
		Message:   resp.Message,
		CreatedAt: resp.CreatedAt,
	})
}
