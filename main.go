package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/task-tracker/backend/internal/client"
	"github.com/task-tracker/backend/internal/config"
	"github.com/task-tracker/backend/internal/db"
	"github.com/task-tracker/backend/internal/handler"
	"github.com/task-tracker/backend/internal/service"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	postgres, err := db.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer postgres.Close()

	if err := postgres.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	tokens, err := service.NewTokenManager(cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to init token manager: %v", err)
	}

	mailer := client.NewEmailClient(cfg.SMTP, cfg.Server.AppBaseURL, tokens.VerificationTTL())
	authService := service.NewAuthService(tokens, postgres, postgres, postgres, mailer)
	userService := service.NewUserService(postgres, authService)
	taskService := service.NewTaskService(postgres)

	reaperInterval, err := time.ParseDuration(cfg.Auth.ReaperInterval)
	if err != nil {
		log.Fatalf("Invalid TOKEN_REAPER_INTERVAL: %v", err)
	}
	go service.NewReaper(postgres, reaperInterval).Run(ctx)

	// Verified users get bounced back to the front end's login screen.
	redirectURL := "/"
	if len(cfg.Server.AllowedOrigins) > 0 {
		redirectURL = cfg.Server.AllowedOrigins[0] + "/?verified=true"
	}

	authHandler := handler.NewAuthHandler(authService, userService, redirectURL)
	userHandler := handler.NewUserHandler(userService)
	taskHandler := handler.NewTaskHandler(taskService)

	router := gin.Default()
	router.Use(handler.CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/ping", handler.Ping)

	users := router.Group("/users")
	{
		users.POST("/register", userHandler.Register)
	}

	auth := router.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/verify-email", authHandler.VerifyEmail)
		auth.POST("/resend-verification", authHandler.ResendVerification)
		auth.GET("/status", authHandler.VerificationStatus)
	}

	tasks := router.Group("/tasks")
	tasks.Use(handler.AuthMiddleware(tokens))
	{
		tasks.GET("", taskHandler.ListTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.PUT("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
	}

	log.Printf("Server starting on %s", cfg.Server.Addr)
	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
