// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/AtRiskMedia/sunset-go/internal/application/container"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/site"
	"github.com/AtRiskMedia/sunset-go/internal/presentation/http/server"
	"github.com/AtRiskMedia/sunset-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// Initialize performs the complete multi-site startup sequence
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[33m" + `

  ▄▄▄▄ ▄  ▄ ▄▄ ▄ ▄▄▄▄ ▄▄▄▄ ▄▄▄▄▄
  ▀▄▄  █  █ █ ▀█ ▀▄▄  █▄▄■   █
  ▄▄▄▀ █▄▄█ █  █ ▄▄▄▀ █▄▄▄   █
` + "\033[97m" + `
  made by At Risk Media
` + "\033[0m")

	// Step 1: Create the channeled logger
	loggerConfig := logging.DefaultLoggerConfig()
	loggerConfig.LogDirectory = filepath.Join(config.HomeDir, "logs")
	logger, err := logging.NewChanneledLogger(loggerConfig)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	// Step 2: Initialize the site system
	log.Println("Initializing...")
	siteManager := site.NewManager(logger)

	// Step 3: Load the site registry to discover all sites
	log.Println("Loading site registry...")
	registry, err := site.LoadSiteRegistry()
	if err != nil {
		return fmt.Errorf("failed to load site registry: %w", err)
	}

	if len(registry.Sites) == 0 {
		log.Println("No sites found in registry - creating default site")
		if err := site.RegisterSite("default"); err != nil {
			return fmt.Errorf("failed to register default site: %w", err)
		}
		if err := siteManager.GetDetector().RefreshRegistry(); err != nil {
			return fmt.Errorf("failed to reload registry: %w", err)
		}
		registry = siteManager.GetDetector().GetRegistry()
	}

	log.Printf("Found %d sites in registry", len(registry.Sites))

	// Step 4: Pre-activate all sites (schema, seed content, connections)
	log.Println("Starting site pre-activation...")
	if err := siteManager.PreActivateAllSites(); err != nil {
		return fmt.Errorf("site pre-activation failed: %w", err)
	}

	activeSiteIDs := siteManager.GetActiveSiteIDs()
	log.Printf("✓ %d active site connections verified", len(activeSiteIDs))

	// Step 5: Initialize the cache system
	log.Println("Initializing cache system...")
	cacheManager := siteManager.GetCacheManager()
	for _, siteID := range activeSiteIDs {
		log.Printf("✓ Initializing cache for site: %s", siteID)
		cacheManager.InitializeSite(siteID)
	}

	// Step 6: Create the dependency injection container
	log.Println("Initializing dependency injection container...")
	appContainer, err := container.NewContainer(siteManager, cacheManager, logger)
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}
	logger.Startup().Info("Container initialization complete - switching to channeled logging")

	// Step 7: Start the operator activity feed
	go appContainer.ActivityBroadcaster.Run()
	logger.Startup().Info("Activity broadcaster started")

	// Step 8: Start the background session sweep worker
	go runSessionSweep(ctx, siteManager, logger)
	logger.Startup().Info("Background session sweep worker started", "interval", config.SessionCleanupEvery)

	// Step 9: Start the HTTP server
	logger.Startup().Info("Starting HTTP server...")
	port := config.Port
	httpServer := server.New(port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	totalStartupTime := time.Since(start)
	logger.Startup().Info("Application startup complete",
		"totalDuration", totalStartupTime,
		"activeSites", len(activeSiteIDs),
		"address", httpServer.Addr())

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Closing site manager...")
	if err := siteManager.Close(); err != nil {
		logger.Shutdown().Error("Error closing site manager", "error", err.Error())
	} else {
		logger.Shutdown().Info("Site manager closed successfully")
	}

	elapsed := time.Since(start)
	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", elapsed,
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// runSessionSweep evicts expired sessions from every active site cache
// on a fixed interval until the context is cancelled.
func runSessionSweep(ctx context.Context, siteManager *site.Manager, logger *logging.ChanneledLogger) {
	ticker := time.NewTicker(config.SessionCleanupEvery)
	defer ticker.Stop()

	cacheManager := siteManager.GetCacheManager()

	for {
		select {
		case <-ctx.Done():
			logger.Cache().Info("Session sweep worker stopped")
			return
		case <-ticker.C:
			for _, siteID := range siteManager.GetActiveSiteIDs() {
				if swept := cacheManager.SweepExpiredSessions(siteID); swept > 0 {
					logger.Cache().Info("Swept expired sessions", "siteId", siteID, "count", swept)
				}
			}
		}
	}
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
}
