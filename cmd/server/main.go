package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/jhk7784/pungro-payment-server/internal/config"
	"github.com/jhk7784/pungro-payment-server/internal/database"
	"github.com/jhk7784/pungro-payment-server/internal/discord"
	"github.com/jhk7784/pungro-payment-server/internal/handler"
	"github.com/jhk7784/pungro-payment-server/internal/middleware"
	"github.com/jhk7784/pungro-payment-server/internal/repository"
	"github.com/jhk7784/pungro-payment-server/internal/service"
)

const version = "0.3.1"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg := logrus.New()
	if cfg.IsProduction() {
		logg.SetFormatter(&logrus.JSONFormatter{})
	}

	// Database
	db, err := database.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(context.Background(), db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations applied successfully")

	// Repositories
	storeRepo := repository.NewStoreRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	requestRepo := repository.NewPaymentRequestRepository(db)

	// Services
	directory := service.NewStoreDirectory(storeRepo, logg)
	if err := directory.Refresh(context.Background()); err != nil {
		log.Fatalf("Failed to load store directory: %v", err)
	}
	resolver := service.NewVendorResolver(vendorRepo, logg)
	requests := service.NewRequestService(requestRepo, resolver, cfg.MinAmount, logg)
	composer := service.NewComposer(cfg.MinAmount)
	alerts := service.NewAlertService(cfg.OpsWebhookURL, logg)

	// Discord bot
	session, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}
	chat := discord.NewChatClient(session)
	dispatcher := discord.NewDispatcher(chat, requests, directory, vendorRepo, composer, alerts, cfg.ApprovalChannelID, logg)
	bot := discord.NewBot(session, cfg.DiscordGuildID, dispatcher, chat, logg)
	if err := bot.Start(); err != nil {
		log.Fatalf("Failed to start Discord bot: %v", err)
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
		BodyLimit:    256 * 1024,
	})

	app.Use(recover.New())
	app.Use(middleware.Logger())

	// Health + info
	healthH := handler.NewHealthHandler(db, cfg.Env, version)
	app.Get("/", healthH.Root)
	app.Get("/health", healthH.Health)
	app.Get("/ready", healthH.Ready)

	// Admin
	adminH := handler.NewAdminHandler(directory)
	app.Post("/admin/refresh-stores", middleware.AdminKey(cfg.AdminKey), adminH.RefreshStores)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Printf("pungro payment server running on :%s (%s)", cfg.Port, cfg.Env)

	<-quit
	log.Println("Shutting down...")
	bot.Stop()
	_ = app.ShutdownWithTimeout(5 * time.Second)
	log.Println("Server stopped")
}
