package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/chepyr/go-task-manager/internal/config"
	"github.com/chepyr/go-task-manager/internal/db"
	"github.com/chepyr/go-task-manager/internal/handlers"
	"github.com/chepyr/go-task-manager/internal/logging"
	"github.com/chepyr/go-task-manager/internal/services"
)

func main() {
	// A missing .env file is fine, the environment may already be set.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Init(cfg.Environment)

	gdb, err := db.Connect(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gdb); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	handler := initHandlers(gdb, cfg)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	startServer(server)
}

func initHandlers(gdb *gorm.DB, cfg *config.Config) *handlers.Handler {
	users := db.NewUserRepository(gdb)
	projects := db.NewProjectRepository(gdb)
	tasks := db.NewTaskRepository(gdb)
	tags := db.NewTagRepository(gdb)
	comments := db.NewCommentRepository(gdb)
	progress := db.NewProgressRepository(gdb)
	memberships := db.NewMembershipRepository(gdb)

	authz := services.NewAuthorizer(memberships)

	return &handlers.Handler{
		Users:    services.NewUserService(users, cfg.JWTSecret, cfg.TokenTTL),
		Projects: services.NewProjectService(projects),
		Tasks:    services.NewTaskService(gdb, tasks, users, tags),
		Tags:     services.NewTagService(tags),
		Comments: services.NewCommentService(comments, tasks, authz),
		Progress: services.NewProgressService(gdb, progress, tasks, authz),
		Members:  services.NewMembershipService(memberships, projects, users, authz),
		Limiter:  handlers.NewIPRateLimiter(rate.Limit(cfg.AuthRateLimit), cfg.AuthRateBurst, time.Minute),
		Hub:      handlers.NewWSHub(),
	}
}

func startServer(server *http.Server) {
	slog.Info("starting server", "addr", server.Addr)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
