// Package router wires every HTTP route onto the Echo instance.  All
// application endpoints live under /api; only registration, login, the
// password-reset pair and the health check are reachable without a token.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/config"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/handler"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/middleware"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/model"
)

// Handlers collects every handler the router needs.
type Handlers struct {
	Auth          *handler.AuthHandler
	Questions     *handler.QuestionHandler
	Relationships *handler.RelationshipHandler
	Comments      *handler.CommentHandler
	Chat          *handler.ChatHandler
}

// Register mounts all routes.  rdb may be nil, in which case rate limiting
// and response caching pass every request through untouched.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client) {
	// Probes hit /health directly; the same handler also answers under /api.
	e.GET("/health", handler.Health)

	api := e.Group("/api")
	api.Use(middleware.NewRateLimit(config.LoadRateLimitConfig(), rdb))

	// Public routes: account lifecycle and health.
	api.GET("/health", handler.Health)
	api.POST("/register", h.Auth.Register)
	api.POST("/login", h.Auth.Login)
	api.POST("/verify_user_for_password_reset", h.Auth.VerifyForPasswordReset)
	api.POST("/reset_password", h.Auth.ResetPassword)

	// Everything below requires a bearer token.  The role middleware only
	// rejects tokens with no recognizable role; per-route role requirements
	// are re-checked inside each handler.
	auth := api.Group("")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(string(model.RoleTeacher), string(model.RoleStudent)))
	auth.Use(middleware.NewResponseCache(config.LoadCacheConfig(), rdb))

	// Questions.
	auth.POST("/question", h.Questions.Create)
	auth.GET("/questions", h.Questions.List)
	auth.GET("/questions/:questionId", h.Questions.Get)
	auth.PUT("/questions/:questionId", h.Questions.Update)
	auth.PATCH("/questions/:questionId/visibility", h.Questions.UpdateVisibility)
	auth.DELETE("/questions/:questionId", h.Questions.Delete)

	// Linking codes and relations.
	auth.POST("/teacher-code", h.Relationships.GenerateCode)
	auth.GET("/teacher-code/:teacherId", h.Relationships.GetCode)
	auth.POST("/link-student", h.Relationships.LinkStudent)
	auth.GET("/teacher-students/:teacherId", h.Relationships.TeacherStudents)
	auth.GET("/teacher-relations/:studentId", h.Relationships.StudentRelations)
	auth.DELETE("/unlink-student/:relationId", h.Relationships.Unlink)
	auth.GET("/students_data", h.Relationships.StudentsData)

	// Comments.
	auth.POST("/comments/add", h.Comments.Add)
	auth.GET("/teacher-comments/:teacherId", h.Comments.TeacherComments)
	auth.GET("/student-comments/:studentId", h.Comments.StudentComments)
	auth.POST("/comments-response", h.Comments.AddResponse)

	// Chat.
	auth.POST("/chat", h.Chat.Send)
	auth.GET("/chat", h.Chat.Messages)
	auth.GET("/chat/conversations", h.Chat.Conversations)
}
