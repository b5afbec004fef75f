package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/config"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/model"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/repository"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/utils"
)

// emailDomain is the placeholder domain for synthesized account emails.
const emailDomain = "saberemmovimento.com"

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type registerReq struct {
	FullName  string `json:"nomeCompleto"`
	CPF       string `json:"cpf"`
	UserType  string `json:"userType"` // professor | aluno
	BirthDate string `json:"dataNascimento"`
	Password  string `json:"password"` // optional, defaults to the CPF
}

type loginReq struct {
	CPF      string `json:"cpf"`
	UserType string `json:"userType"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyResetReq struct {
	Email     string `json:"email"`
	BirthDate string `json:"dataNascimento"`
	CPF       string `json:"cpf"`
	UserType  string `json:"userType"`
}

type resetPasswordReq struct {
	UserID      string `json:"userId"`
	NewPassword string `json:"newPassword"`
}

// usingDefaultPassword reports whether a login still carries the
// registration default, the raw CPF.
func usingDefaultPassword(password, cpf string) bool {
	return cpf != "" && password == cpf
}

// cpfValid requires exactly 11 digits.
func cpfValid(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}
	for i := 0; i < len(cpf); i++ {
		if cpf[i] < '0' || cpf[i] > '9' {
			return false
		}
	}
	return true
}

// Register creates an account.  When no password is supplied the CPF itself
// becomes the password and the response flags it, so the client can prompt
// for a change.  This default is kept for compatibility with the deployed
// clients; it is documented as a known weakness, not a recommendation.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.FullName = strings.TrimSpace(req.FullName)
	req.CPF = strings.TrimSpace(req.CPF)
	req.BirthDate = strings.TrimSpace(req.BirthDate)
	role := model.ParseRole(strings.TrimSpace(req.UserType))

	if req.FullName == "" || req.CPF == "" || req.BirthDate == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nomeCompleto, cpf and dataNascimento are required"})
	}
	if !role.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userType must be professor or aluno"})
	}
	if !cpfValid(req.CPF) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cpf must be exactly 11 digits"})
	}

	password := req.Password
	usedDefault := false
	if password == "" {
		password = req.CPF
		usedDefault = true
	}
	hash, err := utils.HashPassword(password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}

	now := time.Now().UTC()
	u := model.User{
		ID:           uuid.NewString(),
		Email:        fmt.Sprintf("%s_%s_%s@%s", req.CPF, role, utils.HashKey(hash, 16), emailDomain),
		PasswordHash: hash,
		UserType:     role,
		FullName:     req.FullName,
		CPF:          req.CPF,
		BirthDate:    req.BirthDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "user already registered for this userType"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"userId":              u.ID,
		"email":               u.Email,
		"usedDefaultPassword": usedDefault,
	})
}

// Login accepts either (cpf, userType, password) or (email, password).  On
// success the issued token is persisted as currentToken together with
// lastLogin; that is last-seen bookkeeping only, tokens stay valid until
// expiry regardless.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		u   model.User
		err error
	)
	switch {
	case req.Email != "":
		u, err = h.Users.GetByEmail(ctx, req.Email)
	case req.CPF != "":
		role := model.ParseRole(strings.ToLower(strings.TrimSpace(req.UserType)))
		if !role.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "userType must be professor or aluno"})
		}
		u, err = h.Users.GetByCPFAndType(ctx, strings.TrimSpace(req.CPF), role)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cpf or email is required"})
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	// The legacy clients logged whether the password still equals the raw
	// CPF (the registration default).  The observation is kept for support
	// diagnostics but never grants access; only the stored hash decides.
	if usingDefaultPassword(req.Password, u.CPF) {
		log.Printf("auth: user %s logged in with the default CPF password", u.ID)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect credentials"})
	}

	token, _, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, u.UserType, h.Cfg.TokenTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue token failed"})
	}
	if err := h.Users.SaveSession(ctx, u.ID, token, time.Now().UTC()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save session failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"userId":       u.ID,
		"token":        token,
		"userType":     u.UserType,
		"nomeCompleto": u.FullName,
		"email":        u.Email,
	})
}

// VerifyForPasswordReset confirms an identity over one of two lookup paths:
// (email, dataNascimento) or (cpf, userType).  Only id and email come back,
// never password material.
func (h *AuthHandler) VerifyForPasswordReset(c echo.Context) error {
	var req verifyResetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var (
		u   model.User
		err error
	)
	switch {
	case req.Email != "" && req.BirthDate != "":
		u, err = h.Users.GetByEmailAndBirthDate(ctx, req.Email, req.BirthDate)
	case req.CPF != "" && req.UserType != "":
		role := model.ParseRole(req.UserType)
		if !role.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "userType must be professor or aluno"})
		}
		u, err = h.Users.GetByCPFAndType(ctx, req.CPF, role)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide email+dataNascimento or cpf+userType"})
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{"userId": u.ID, "email": u.Email})
}

// ResetPassword rehashes and overwrites the stored password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.UserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId is required"})
	}
	if len(req.NewPassword) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "newPassword must have at least 6 characters"})
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdatePassword(ctx, req.UserID, hash, time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update password failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}
