package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"gopress/internal/config"
	"gopress/internal/handlers"
	"gopress/internal/middleware"
	"gopress/internal/models"
	"gopress/internal/repositories"
	"gopress/internal/services"
	"gopress/pkg/mail"
	"gopress/pkg/mailqueue"
	"gopress/pkg/sessions"
	"gopress/pkg/storage"
)

func main() {
	ctx := context.Background()

	// --- Configuration ---
	// Built once here and passed by reference; nothing else reads the env.
	cfg := config.Load()

	// --- Database ---
	// TranslateError makes the unique indexes on users.email and posts.slug
	// surface as gorm.ErrDuplicatedKey, which the repositories translate
	// into the domain duplicate errors.
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.ContactMessage{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- Session store ---
	var store sessions.Store
	if cfg.RedisAddr != "" {
		redisStore, err := sessions.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to initialize Redis session store: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
	} else {
		log.Println("REDIS_ADDR not set; using in-memory session store")
		store = sessions.NewMemoryStore()
	}

	// --- Image storage ---
	var files storage.FileStore
	switch cfg.StorageBackend {
	case "minio":
		files, err = storage.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("Failed to initialize MinIO storage: %v", err)
		}
	default:
		files, err = storage.NewLocalStore(cfg.UploadDir)
		if err != nil {
			log.Fatalf("Failed to initialize upload directory: %v", err)
		}
	}

	// --- Mail dispatch ---
	// Contact notifications go through RabbitMQ; the consumer below drains
	// the queue and delivers via SMTP. Without a broker configured the
	// contact form still works, it just skips the notification.
	var publisher services.MailPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := mailqueue.NewClient(mailqueue.Config{URL: cfg.RabbitMQURL, Queue: cfg.MailQueue})
		if err != nil {
			log.Fatalf("Failed to initialize mail queue client: %v", err)
		}
		defer mqClient.Close() // Ensure the connection is closed on exit

		mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
		if err := mqClient.ConsumeMail(mailer); err != nil {
			log.Printf("Failed to start mail consumer: %v", err)
		}
		publisher = mqClient
	} else {
		log.Println("RABBITMQ_URL not set; contact notifications disabled")
	}

	app := newApp(cfg, db, store, files, publisher)

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

// newApp wires repositories, services, handlers and routes into a Fiber
// app. Pulled out of main so tests can assemble the same app on top of
// test doubles.
func newApp(cfg *config.Config, db *gorm.DB, store sessions.Store, files storage.FileStore, publisher services.MailPublisher) *fiber.App {
	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	postRepo := repositories.NewGORMPostRepository(db)
	contactRepo := repositories.NewGORMContactRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo, store, cfg.JWTSecret, cfg.SessionTTL)
	postService := services.NewPostService(postRepo)
	contactService := services.NewContactService(contactRepo, publisher, cfg.AdminEmail)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	postHandler := handlers.NewPostHandler(postService, files, cfg)
	contactHandler := handlers.NewContactHandler(contactService)

	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New()) // Request logger

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")

	// Public routes
	authHandler.RegisterRoutes(apiV1)
	postHandler.RegisterPublicRoutes(apiV1)
	contactHandler.RegisterRoutes(apiV1)

	// Routes requiring an authenticated session
	protected := apiV1.Group("", middleware.SessionRequired(authService))
	postHandler.RegisterProtectedRoutes(protected)

	return app
}
