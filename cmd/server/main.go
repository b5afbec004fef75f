package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/config"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/database"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/handler"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/queue"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/repository"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/router"
	"github.com/ZePequeno25/Projeto-Aprender-Em-Movimento-MYSQL/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when redis is unavailable

	users := repository.NewUserRepo(db)
	codes := repository.NewTeacherCodeRepo(db)
	relations := repository.NewRelationRepo(db)
	questions := repository.NewQuestionRepo(db)
	comments := repository.NewCommentRepo(db)
	chats := repository.NewChatRepo(db)

	linking := service.NewLinking(db, codes, relations, users)
	linking.Publish = queue.PublishStudentLinked
	visibility := service.NewVisibility(users, questions, relations, comments)
	chat := service.NewChat(chats, users)

	// Audit consumer writes linking events to logs/linking.log.  It keeps
	// reconnecting on its own; the server runs fine without a broker.
	go func() {
		if err := queue.StartLinkConsumer(); err != nil {
			log.Printf("link consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, users),
		Questions:     handler.NewQuestionHandler(questions, visibility),
		Relationships: handler.NewRelationshipHandler(linking, relations, users),
		Comments:      handler.NewCommentHandler(comments, users, visibility),
		Chat:          handler.NewChatHandler(chat),
	}, cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
