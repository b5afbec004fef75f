package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/model"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/repository"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/service"
)

// RelationshipHandler bundles dependencies for linking-code and relation
// endpoints.
type RelationshipHandler struct {
	Linking   *service.Linking
	Relations *repository.RelationRepo
	Users     *repository.UserRepo
}

func NewRelationshipHandler(l *service.Linking, r *repository.RelationRepo, u *repository.UserRepo) *RelationshipHandler {
	return &RelationshipHandler{Linking: l, Relations: r, Users: u}
}

// ----- DTOs -----

type linkStudentReq struct {
	TeacherCode string `json:"teacherCode"`
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
}

type relationResp struct {
	ID          string    `json:"id"`
	TeacherID   string    `json:"teacherId"`
	StudentID   string    `json:"studentId"`
	TeacherName string    `json:"teacherName"`
	StudentName string    `json:"studentName"`
	JoinedAt    time.Time `json:"joinedAt"`
}

func toRelationResp(rel model.TeacherStudentRelation) relationResp {
	return relationResp{
		ID:          rel.Key.String(),
		TeacherID:   rel.Key.TeacherID,
		StudentID:   rel.Key.StudentID,
		TeacherName: rel.TeacherName,
		StudentName: rel.StudentName,
		JoinedAt:    rel.JoinedAt,
	}
}

// GenerateCode issues a fresh linking code for the calling teacher.  Any
// previously active code is expired in the same transaction, so exactly one
// code per teacher is ever redeemable.
func (h *RelationshipHandler) GenerateCode(c echo.Context) error {
	if callerRole(c) != model.RoleTeacher {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only teachers can generate codes"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	code, err := h.Linking.IssueCode(ctx, callerID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "generate code failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"teacherCode": code.Code,
		"expiresAt":   code.ExpiresAt,
	})
}

// GetCode returns the teacher's current code.  Only the teacher may read
// their own code: subject and role are both checked so neither one alone is
// enough.
func (h *RelationshipHandler) GetCode(c echo.Context) error {
	teacherID := c.Param("teacherId")
	if callerID(c) != teacherID || callerRole(c) != model.RoleTeacher {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	code, err := h.Linking.ActiveCode(ctx, teacherID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load code failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"teacherCode": code})
}

// LinkStudent redeems a code on behalf of the calling student, creating the
// relation.  A student can only link themselves.
func (h *RelationshipHandler) LinkStudent(c echo.Context) error {
	if callerRole(c) != model.RoleStudent {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only students can redeem codes"})
	}
	var req linkStudentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.TeacherCode = strings.TrimSpace(req.TeacherCode)
	if req.TeacherCode == "" || req.StudentID == "" || req.StudentName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "teacherCode, studentId and studentName are required"})
	}
	if req.StudentID != callerID(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "students can only link themselves"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rel, err := h.Linking.Redeem(ctx, req.TeacherCode, req.StudentID, req.StudentName)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCodeNotRedeemable):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "invalid or expired code"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "student already linked to this teacher"})
		case errors.Is(err, repository.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "teacher not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "link student failed"})
	}
	return c.JSON(http.StatusCreated, toRelationResp(rel))
}

// TeacherStudents lists the calling teacher's linked students.
func (h *RelationshipHandler) TeacherStudents(c echo.Context) error {
	teacherID := c.Param("teacherId")
	if callerID(c) != teacherID || callerRole(c) != model.RoleTeacher {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rels, err := h.Relations.ListByTeacher(ctx, teacherID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list students failed"})
	}
	out := make([]relationResp, 0, len(rels))
	for _, rel := range rels {
		out = append(out, toRelationResp(rel))
	}
	return c.JSON(http.StatusOK, out)
}

// StudentRelations lists the calling student's linked teachers.
func (h *RelationshipHandler) StudentRelations(c echo.Context) error {
	studentID := c.Param("studentId")
	if callerID(c) != studentID || callerRole(c) != model.RoleStudent {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rels, err := h.Relations.ListByStudent(ctx, studentID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list relations failed"})
	}
	out := make([]relationResp, 0, len(rels))
	for _, rel := range rels {
		out = append(out, toRelationResp(rel))
	}
	return c.JSON(http.StatusOK, out)
}

// Unlink removes a relation.  Either participant may unlink.
func (h *RelationshipHandler) Unlink(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Linking.Unlink(ctx, c.Param("relationId"), callerID(c))
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "relation removed"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "relation not found"})
	case errors.Is(err, service.ErrNotParticipant):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unlink failed"})
}

// StudentsData returns the calling teacher's roster with per-student account
// detail.  Students whose user row cannot be loaded are skipped so one bad
// row never hides the rest of the roster.
func (h *RelationshipHandler) StudentsData(c echo.Context) error {
	if callerRole(c) != model.RoleTeacher {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only teachers can list student data"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rels, err := h.Relations.ListByTeacher(ctx, callerID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list students failed"})
	}

	type studentData struct {
		ID        string     `json:"id"`
		Name      string     `json:"nomeCompleto"`
		BirthDate string     `json:"dataNascimento"`
		LastLogin *time.Time `json:"lastLogin"`
		JoinedAt  time.Time  `json:"joinedAt"`
	}
	out := make([]studentData, 0, len(rels))
	for _, rel := range rels {
		u, err := h.Users.GetByID(ctx, rel.Key.StudentID)
		if err != nil {
			log.Printf("relationship: student %s lookup failed, skipping: %v", rel.Key.StudentID, err)
			continue
		}
		out = append(out, studentData{
			ID:        u.ID,
			Name:      u.FullName,
			BirthDate: u.BirthDate,
			LastLogin: u.LastLogin,
			JoinedAt:  rel.JoinedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}
