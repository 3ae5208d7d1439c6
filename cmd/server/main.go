package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"readalong/internal/audio"
	"readalong/internal/config"
	"readalong/internal/database"
	"readalong/internal/handlers"
	"readalong/internal/models"
	"readalong/internal/repository"
	"readalong/internal/security"
	"readalong/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	lessonRepo := repository.NewLessonRepository(db)

	// Initialize services
	studentService := service.NewStudentService(studentRepo)
	classService := service.NewClassService(classRepo)
	lessonService := service.NewLessonService(lessonRepo)
	backupService := service.NewBackupService(studentRepo, classRepo, lessonRepo)

	digestService, err := service.NewDigestService(cfg.SESRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.DigestRecipient, studentService)
	if err != nil {
		log.Fatalf("Failed to initialize digest service: %v", err)
	}

	// Seed baseline data
	if err := classService.EnsureDefaultClass(); err != nil {
		log.Printf("Warning: Failed to ensure default class: %v", err)
	}
	if err := lessonService.SeedDefaultLessons(); err != nil {
		log.Printf("Warning: Failed to seed default lessons: %v", err)
	}

	// Audio upload store
	audioStore, err := audio.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize upload store: %v", err)
	}

	// Initialize handlers
	studentHandler := handlers.NewStudentHandler(studentService)
	classHandler := handlers.NewClassHandler(classService)
	lessonHandler := handlers.NewLessonHandler(lessonService, audioStore, cfg.UploadMaxSize)
	uploadHandler := handlers.NewUploadHandler(audioStore, cfg.UploadMaxSize)
	backupHandler := handlers.NewBackupHandler(backupService)

	uploadLimiter := security.NewRateLimiter(30, time.Minute)

	// Setup routes
	mux := http.NewServeMux()

	// Uploaded recordings
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(audioStore.Dir()))))

	// Student routes
	mux.HandleFunc("GET /api/students", studentHandler.List)
	mux.HandleFunc("POST /api/students", studentHandler.Save)
	mux.HandleFunc("GET /api/students/{id}", studentHandler.Get)
	mux.HandleFunc("POST /api/students/{id}/progress", studentHandler.RecordProgress)
	mux.HandleFunc("DELETE /api/students/{id}", studentHandler.Delete)

	// Class routes
	mux.HandleFunc("GET /api/classes", classHandler.List)
	mux.HandleFunc("POST /api/classes", classHandler.Create)
	mux.HandleFunc("DELETE /api/classes/{id}", classHandler.Delete)

	// Lesson routes
	mux.HandleFunc("GET /api/lessons", lessonHandler.List)
	mux.HandleFunc("POST /api/lessons", lessonHandler.Save)
	mux.HandleFunc("GET /api/lessons/{id}", lessonHandler.Get)
	mux.HandleFunc("DELETE /api/lessons/{id}", lessonHandler.Delete)
	mux.HandleFunc("GET /api/lessons/{id}/custom-audio", lessonHandler.CustomAudio)

	// Audio uploads, rate limited
	mux.Handle("POST /api/upload-student-audio", uploadLimiter.Middleware(http.HandlerFunc(uploadHandler.Upload)))
	mux.Handle("POST /api/lessons/{id}/custom-audio", uploadLimiter.Middleware(http.HandlerFunc(lessonHandler.UploadCustomAudio)))

	// Backup
	mux.HandleFunc("GET /api/backup", backupHandler.Export)
	mux.HandleFunc("POST /api/backup", backupHandler.Import)

	// Health check
	mux.HandleFunc("GET /api/health", handlers.Health)

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Periodic class digest emails
	if digestService.IsEnabled() {
		go digestService.Run(ctx, models.DefaultClassID, cfg.DigestInterval)
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
