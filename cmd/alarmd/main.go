package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"door-alarm-backend/config"
	"door-alarm-backend/internal/api"
	"door-alarm-backend/internal/db"
	"door-alarm-backend/internal/gpio"
	"door-alarm-backend/internal/monitor"
	"door-alarm-backend/internal/notification"
	"door-alarm-backend/internal/pipeline"
	"door-alarm-backend/internal/store"
	"door-alarm-backend/internal/ws"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "alarmd ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatalf("invalid timezone %q: %v", cfg.Timezone, err)
	}

	// Web push is optional; without VAPID keys alarms still go out by mail.
	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		logger.Println("VAPID keys not configured; web push delivery disabled")
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	if err := db.Seed(gormDB); err != nil {
		logger.Fatalf("failed to seed database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Live event feed
	hub := ws.NewHub()
	go hub.Run(ctx)

	// Notification worker pool
	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, cfg.Mail, webpushOptions)
	pool.Start(ctx)

	// Event pipeline and door monitor
	state := monitor.NewDoorState()
	events := pipeline.New(appStore, state, hub, loc)

	if cfg.Monitor.Enabled {
		io, err := gpio.NewRealIO(cfg.Monitor.Chip, gpio.Pins{
			Sensor:  cfg.Monitor.SensorPin,
			Ready:   cfg.Monitor.ReadyPin,
			Warning: cfg.Monitor.WarningPin,
			Alarm:   cfg.Monitor.AlarmPin,
		})
		if err != nil {
			logger.Fatalf("failed to open GPIO lines: %v", err)
		}
		defer io.Close()

		mon := monitor.New(state, io, io, events, appStore, pool,
			cfg.Monitor.PollInterval, cfg.Monitor.BlinkInterval)
		go mon.Run(ctx)
	} else {
		logger.Println("door monitor disabled; running API only")
	}

	// Initialize router
	router := api.NewRouter(cfg, appStore, events, hub, webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Stop the monitor and workers first so no event lands mid-shutdown.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
