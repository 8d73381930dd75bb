package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/zhandosm/baraholka/app/repository"
	"github.com/zhandosm/baraholka/internal/pkg/cache"
	"github.com/zhandosm/baraholka/internal/pkg/database"
	"github.com/zhandosm/baraholka/internal/pkg/env"
	"github.com/zhandosm/baraholka/internal/pkg/imageprocessor"
	"github.com/zhandosm/baraholka/internal/pkg/jobqueue"
	"github.com/zhandosm/baraholka/internal/pkg/router"
)

func main() {
	app := NewApplication()

	manager := jobqueue.GetManager()
	manager.Start()
	imageprocessor.GetProcessor().Start()

	// graceful shutdown on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		manager.Stop()
		imageprocessor.GetProcessor().Stop()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "0.0.0.0"), env.GetEnv("APP_PORT", "3000"))
	if err := app.Listen(addr); err != nil {
		log.Fatal(err)
	}
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	repository.InitializeFactory(database.GetDB())
	cache.SetupCache()

	app := fiber.New(fiber.Config{
		AppName:   "baraholka",
		BodyLimit: 12 << 20, // uploads top out at 10 MiB plus form overhead
	})
	app.Use(recover.New(), logger.New())

	app.Static("/uploads", "./uploads", fiber.Static{
		CacheDuration: 10 * time.Second,
		MaxAge:        604800, // 7 days
	})

	router.InstallRoutes(app)

	return app
}
