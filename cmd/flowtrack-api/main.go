package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lukab/flowtrack-api/internal/ai"
	"github.com/lukab/flowtrack-api/internal/cache"
	"github.com/lukab/flowtrack-api/internal/config"
	"github.com/lukab/flowtrack-api/internal/database"
	"github.com/lukab/flowtrack-api/internal/handlers"
	authmw "github.com/lukab/flowtrack-api/internal/middleware"
	"github.com/lukab/flowtrack-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	flagCache := cache.New()
	aiClient := ai.NewClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout)

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	directoryService := services.NewDirectoryService(db)
	accessService := services.NewAccessService(db, directoryService)
	workspaceService := services.NewWorkspaceService(db)
	projectService := services.NewProjectService(db)
	taskService := services.NewTaskService(db)
	noteService := services.NewNoteService(db)
	timerService := services.NewTimerService(db)
	recurrenceService := services.NewRecurrenceService(db)
	quotaService := services.NewQuotaService(db)
	extractionService := services.NewExtractionService(quotaService, aiClient)
	reportService := services.NewReportService(db)
	flagService := services.NewFlagService(db, flagCache)
	auditService := services.NewAuditService(db)

	authHandler := handlers.NewAuthHandler(cfg, userService, tokenService, jwtService)
	userHandler := handlers.NewUserHandler(userService, quotaService)
	workspaceHandler := handlers.NewWorkspaceHandler(workspaceService, directoryService, accessService, auditService, flagService)
	projectHandler := handlers.NewProjectHandler(projectService, accessService, auditService)
	taskHandler := handlers.NewTaskHandler(taskService, recurrenceService, accessService)
	noteHandler := handlers.NewNoteHandler(noteService, accessService)
	timerHandler := handlers.NewTimerHandler(timerService, accessService)
	aiHandler := handlers.NewAIHandler(extractionService)
	reportHandler := handlers.NewReportHandler(reportService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Get("/:provider/consent", authHandler.GetConsentURL)
	auth.Get("/:provider/callback", authHandler.Callback)
	auth.Post("/exchange", authHandler.ExchangeCode)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)

	protected.Get("/users/me", userHandler.Me)
	protected.Patch("/users/me", userHandler.UpdateProfile)
	protected.Patch("/users/me/plan", userHandler.UpdatePlan)
	protected.Get("/users/me/quota", userHandler.Quota)
	protected.Get("/users/me/reports", reportHandler.List)

	protected.Get("/workspaces", workspaceHandler.List)
	protected.Post("/workspaces", workspaceHandler.Create)
	protected.Get("/workspaces/:id", workspaceHandler.Get)
	protected.Patch("/workspaces/:id", workspaceHandler.Update)
	protected.Get("/workspaces/:id/members", workspaceHandler.Members)
	protected.Post("/workspaces/:id/members", workspaceHandler.AddMember)
	protected.Patch("/workspaces/:id/members/:userId", workspaceHandler.UpdateMemberRole)
	protected.Delete("/workspaces/:id/members/:userId", workspaceHandler.RemoveMember)
	protected.Get("/workspaces/:id/flags", workspaceHandler.Flags)
	protected.Post("/workspaces/:id/flags", workspaceHandler.SetFlag)
	protected.Get("/workspaces/:id/audit", workspaceHandler.AuditLog)
	protected.Get("/workspaces/:id/projects", projectHandler.ListForWorkspace)
	protected.Get("/workspaces/:id/notes", noteHandler.ListForWorkspace)

	protected.Post("/projects", projectHandler.Create)
	protected.Get("/projects/:id", projectHandler.Get)
	protected.Patch("/projects/:id", projectHandler.Update)
	protected.Delete("/projects/:id", projectHandler.Delete)
	protected.Get("/projects/:id/tasks", taskHandler.ListForProject)

	protected.Post("/tasks", taskHandler.Create)
	protected.Get("/tasks/:id", taskHandler.Get)
	protected.Patch("/tasks/:id", taskHandler.Update)
	protected.Delete("/tasks/:id", taskHandler.Delete)
	protected.Post("/tasks/:id/timer/start", timerHandler.Start)
	protected.Post("/tasks/:id/timer/stop", timerHandler.Stop)
	protected.Get("/tasks/:id/entries", timerHandler.Entries)
	protected.Post("/tasks/:id/entries", timerHandler.RecordManualEntry)

	protected.Get("/timers/active", timerHandler.Active)

	protected.Post("/series", taskHandler.CreateSeries)
	protected.Get("/series/:id", taskHandler.GetSeries)
	protected.Delete("/series/:id", taskHandler.CancelSeries)

	protected.Post("/notes", noteHandler.Create)
	protected.Get("/notes/:id", noteHandler.Get)
	protected.Patch("/notes/:id", noteHandler.Update)
	protected.Delete("/notes/:id", noteHandler.Delete)

	protected.Post("/ai/extract-tasks", aiHandler.ExtractTasks)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			if _, err := tokenService.CleanupExpired(context.Background()); err != nil {
				log.Printf("token cleanup: %v", err)
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		for range ticker.C {
			if n, err := quotaService.ResetStale(context.Background()); err != nil {
				log.Printf("quota reset: %v", err)
			} else if n > 0 {
				log.Printf("quota reset: %d users", n)
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			if n, err := recurrenceService.SweepDueSeries(context.Background()); err != nil {
				log.Printf("recurrence sweep: %v", err)
			} else if n > 0 {
				log.Printf("recurrence sweep: generated %d tasks", n)
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(7 * 24 * time.Hour)
		for range ticker.C {
			if n, err := reportService.GenerateWeeklyReports(context.Background()); err != nil {
				log.Printf("weekly reports: %v", err)
			} else {
				log.Printf("weekly reports: generated %d", n)
			}
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
