package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"adeelasgher847/attendance-agent/internal/client"
	"adeelasgher847/attendance-agent/internal/clock"
	"adeelasgher847/attendance-agent/internal/config"
	"adeelasgher847/attendance-agent/internal/database"
	"adeelasgher847/attendance-agent/internal/device"
	"adeelasgher847/attendance-agent/internal/events"
	"adeelasgher847/attendance-agent/internal/journal"
	"adeelasgher847/attendance-agent/internal/location"
	"adeelasgher847/attendance-agent/internal/logger"
	"adeelasgher847/attendance-agent/internal/platform"
	"adeelasgher847/attendance-agent/internal/server"
	"adeelasgher847/attendance-agent/internal/service"
	"adeelasgher847/attendance-agent/internal/status"
	"adeelasgher847/attendance-agent/internal/tray"

	"go.uber.org/zap"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config/local.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting attendance agent",
		zap.String("env", cfg.Env),
		zap.String("config_path", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := database.New(cfg.StoragePath, log.Logger)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()

	activityJournal := journal.NewJournal(db.DB, log.Logger)
	if _, err := activityJournal.Prune(ctx, cfg.Journal.Retention); err != nil {
		log.Warn("Failed to prune journal", zap.Error(err))
	}

	// Initialize platform
	platformInstance, err := platform.NewPlatform()
	if err != nil {
		log.Fatal("Failed to initialize platform", zap.Error(err))
	}
	clk := clock.System(platformInstance)

	// Resolve device ID
	deviceManager := device.NewDeviceManager(db.DB, log.Logger)
	deviceID, err := deviceManager.Resolve(ctx, cfg.Device.ID, cfg.Device.Name)
	if err != nil {
		log.Fatal("Failed to resolve device ID", zap.Error(err))
	}

	// Initialize API client
	apiClient := client.NewAPIClient(
		cfg.Backend.BaseURL,
		cfg.Backend.Token,
		time.Duration(cfg.Backend.Timeout)*time.Second,
		log.Logger,
	)
	apiClient.SetDeviceID(deviceID)

	if err := apiClient.HealthCheck(ctx); err != nil {
		log.Warn("Backend health check failed, continuing", zap.Error(err))
	}

	hub := events.NewHub()

	statusCache := status.NewCache(apiClient, cfg.User.ID, status.FixedPolicy{
		TTL:           cfg.Status.TTL,
		VisibilityAge: cfg.Status.VisibilityMaxAge,
	}, clk, log.Logger)
	visibility := status.NewVisibility(statusCache)

	// Location provider, nil submits events without coordinates
	var locator service.Locator
	switch cfg.Location.Mode {
	case "static":
		locator = location.NewAcquirer(location.StaticProvider{
			Latitude:  cfg.Location.Latitude,
			Longitude: cfg.Location.Longitude,
		}, log.Logger)
	case "http":
		locator = location.NewAcquirer(location.NewHTTPProvider(cfg.Location.ServiceURL, log.Logger), log.Logger)
	}

	workSessions := service.NewWorkSessionService(
		apiClient,
		statusCache,
		clk,
		cfg.Session.MaxInitialElapsed,
		cfg.User.ID,
		activityJournal,
		hub,
		log.Logger,
	)
	checkInOut := service.NewCheckInOutService(
		apiClient,
		locator,
		statusCache,
		cfg.User.ID,
		time.Local,
		activityJournal,
		hub,
		log.Logger,
	)
	approvals := service.NewApprovalService(apiClient, activityJournal, hub, log.Logger)

	go workSessions.Watch(ctx, hub)

	// Recovers an active session on startup, then keeps it reconciled
	poller := service.NewStatusPoller(workSessions, cfg.Status.PollInterval, log.Logger)
	poller.Start(ctx)

	var apiServer *server.Server
	if cfg.Server.Enabled {
		apiServer = server.New(cfg.Server.Port, cfg.Server.AllowedOrigins, server.Deps{
			Attendance: checkInOut,
			Sessions:   workSessions,
			Approvals:  approvals,
			Status:     statusCache,
			Visibility: visibility,
			Journal:    activityJournal,
			Hub:        hub,
			Location:   time.Local,
		}, log.Logger)
		if err := apiServer.Start(); err != nil {
			log.Fatal("Failed to start local API server", zap.Error(err))
		}
	} else {
		log.Info("Local API server disabled in configuration")
	}

	log.Info("Attendance agent started successfully",
		zap.String("device_id", deviceID),
		zap.String("backend_url", cfg.Backend.BaseURL),
		zap.String("location_mode", cfg.Location.Mode),
	)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if cfg.Tray.Enabled {
		trayIcon := tray.New(checkInOut, workSessions, statusCache, hub, platformInstance, cfg.Tray.DashboardURL, log.Logger)
		go func() {
			sig := <-quit
			log.Info("Received shutdown signal", zap.String("signal", sig.String()))
			trayIcon.Quit()
		}()
		// systray needs the main goroutine
		trayIcon.Run(nil)
	} else {
		sig := <-quit
		log.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	log.Info("Shutting down attendance agent...")

	if apiServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("Local API server shutdown error", zap.Error(err))
		}
		shutdownCancel()
	}

	cancel()
	poller.Stop()

	log.Info("Attendance agent stopped")
}
