package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lazos-app/lazos-api/app/controllers"
	"github.com/lazos-app/lazos-api/app/repository"
	"github.com/lazos-app/lazos-api/internal/pkg/cache"
	"github.com/lazos-app/lazos-api/internal/pkg/database"
	"github.com/lazos-app/lazos-api/internal/pkg/env"
	"github.com/lazos-app/lazos-api/internal/pkg/imageprocessor"
	"github.com/lazos-app/lazos-api/internal/pkg/jobqueue"
	"github.com/lazos-app/lazos-api/internal/pkg/lifecycle"
	"github.com/lazos-app/lazos-api/internal/pkg/mail"
	"github.com/lazos-app/lazos-api/internal/pkg/moderation"
	"github.com/lazos-app/lazos-api/internal/pkg/router"
	"github.com/lazos-app/lazos-api/internal/pkg/storage"
)

func main() {
	app := NewApplication()

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("[App] Shutting down...")
		jobqueue.GetManager().Stop()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
	if err := app.Listen(addr); err != nil {
		log.Fatalf("[App] Server stopped: %v", err)
	}
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	// Moderation pipeline
	classifier := moderation.NewClassifier(moderation.NewSkinToneModel(), moderation.NewRemoteValidatorFromEnv())
	engine := moderation.NewEngine(classifier)
	control := lifecycle.NewController(repository.GetGlobalRepositories())

	// Object storage (optional in dev, required for photo uploads)
	storeCfg, err := storage.LoadConfig()
	if err != nil {
		log.Fatalf("[App] Invalid storage configuration: %v", err)
	}
	var store *storage.Client
	if storeCfg.IsEnabled() {
		store, err = storage.NewClient(storeCfg)
		if err != nil {
			log.Fatalf("[App] Failed to initialize object storage: %v", err)
		}
	} else {
		log.Warn("[App] Object storage disabled, photo uploads will be rejected")
	}

	// Background jobs
	manager := jobqueue.GetManager()
	queue := manager.GetQueue()
	if mailer := mail.NewReportMailerFromEnv(); mailer != nil {
		queue.SetMailer(mailer)
	} else {
		log.Warn("[App] MODERATOR_EMAIL not set, report notifications disabled")
	}
	if store != nil {
		queue.SetDeleter(store)
	}
	manager.Start()

	controllers.Initialize(controllers.Deps{
		Engine:    engine,
		Control:   control,
		Processor: imageprocessor.NewProcessor(),
		Store:     store,
		StoreCfg:  storeCfg,
		Queue:     queue,
	})

	app := fiber.New(fiber.Config{
		BodyLimit: 33554432, // 32 MiB, three photos at 10 MB plus form overhead
	})
	app.Use(recover.New(), logger.New())

	// SWAGGER / OPENAPI
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "./public/docs/v1/openapi.yml",
		Path:     "v1",
	}))

	// ROUTER
	router.InstallRouter(app)

	return app
}
