// Package site manages site-specific configurations and context,
// isolating multi-site logic from the rest of the application.
package site

import (
	"fmt"
	"sync"

	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/caching/manager"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/persistence/database"
	"github.com/gin-gonic/gin"
)

// Manager coordinates site detection and context creation
type Manager struct {
	detector       *Detector
	cacheManager   *manager.Manager
	contexts       map[string]*Context
	contextMutexes sync.Map // Per-site mutexes for fine-grained locking
	globalMutex    sync.RWMutex
	logger         *logging.ChanneledLogger
}

// NewManager creates and initializes a new site manager.
func NewManager(logger *logging.ChanneledLogger) *Manager {
	detector, err := NewDetector(logger)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize site detector: %v", err))
	}

	cacheManager := manager.NewManager(logger)

	return &Manager{
		detector:     detector,
		cacheManager: cacheManager,
		contexts:     make(map[string]*Context),
		logger:       logger,
	}
}

// GetContext creates or retrieves a site context for the request
func (m *Manager) GetContext(c *gin.Context) (*Context, error) {
	siteID, err := m.detector.DetectSite(c)
	if err != nil {
		return nil, fmt.Errorf("site detection failed: %w", err)
	}

	m.globalMutex.RLock()
	if ctx, exists := m.contexts[siteID]; exists {
		m.globalMutex.RUnlock()
		if ctx.Database != nil && ctx.Database.Conn != nil {
			return ctx, nil
		}
	} else {
		m.globalMutex.RUnlock()
	}

	siteMutexInterface, _ := m.contextMutexes.LoadOrStore(siteID, &sync.Mutex{})
	siteMutex := siteMutexInterface.(*sync.Mutex)

	siteMutex.Lock()
	defer siteMutex.Unlock()

	m.globalMutex.RLock()
	if ctx, exists := m.contexts[siteID]; exists {
		m.globalMutex.RUnlock()
		if ctx.Database != nil && ctx.Database.Conn != nil {
			return ctx, nil
		}
	} else {
		m.globalMutex.RUnlock()
	}

	return m.createContext(siteID)
}

// createContext creates a new site context
func (m *Manager) createContext(siteID string) (*Context, error) {
	cfg, err := LoadSiteConfig(siteID, m.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load site config: %w", err)
	}

	db, err := NewDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	status := m.detector.GetSiteStatus(siteID)

	ctx := &Context{
		SiteID:       siteID,
		Config:       cfg,
		Database:     db,
		Status:       status,
		CacheManager: m.cacheManager,
		Logger:       m.logger,
	}

	m.globalMutex.Lock()
	m.contexts[siteID] = ctx
	m.globalMutex.Unlock()

	m.cacheManager.InitializeSite(siteID)

	return ctx, nil
}

// PreActivateAllSites brings every registered site up during startup:
// connect, ensure the schema, seed first-run content, mark active.
func (m *Manager) PreActivateAllSites() error {
	registry, err := LoadSiteRegistry()
	if err != nil {
		return fmt.Errorf("failed to load site registry for pre-activation: %w", err)
	}

	if len(registry.Sites) == 0 {
		return nil
	}

	var failedSites []string

	for siteID := range registry.Sites {
		if err := m.preActivateSingleSite(siteID); err != nil {
			if m.logger != nil {
				m.logger.Startup().Error("Site pre-activation failed", "siteId", siteID, "error", err)
			}
			failedSites = append(failedSites, siteID)
			continue
		}
	}

	if len(failedSites) > 0 {
		return fmt.Errorf("pre-activation failed for sites: %v", failedSites)
	}

	return nil
}

// preActivateSingleSite activates a single site during startup
func (m *Manager) preActivateSingleSite(siteID string) error {
	ctx, err := m.createContext(siteID)
	if err != nil {
		return fmt.Errorf("failed to create context for site %s: %w", siteID, err)
	}

	if err := ctx.Database.Conn.Ping(); err != nil {
		return fmt.Errorf("database connection test failed for site %s: %w", siteID, err)
	}

	tableCreator := database.NewTableCreator()
	if err := tableCreator.CreateSchema(ctx.Database.Conn); err != nil {
		return fmt.Errorf("schema creation failed for site %s: %w", siteID, err)
	}
	if err := tableCreator.SeedInitialContent(ctx.Database.Conn); err != nil {
		return fmt.Errorf("content seeding failed for site %s: %w", siteID, err)
	}

	dbType := "sqlite3"
	if ctx.Database.UseTurso {
		dbType = "turso"
	}
	m.detector.UpdateSiteStatus(siteID, "active", dbType)
	ctx.Status = "active"

	if m.logger != nil {
		m.logger.Startup().Info("Site activated", "siteId", siteID, "database", ctx.GetDatabaseInfo())
	}

	return nil
}

// GetActiveSiteIDs returns the IDs of all active sites
func (m *Manager) GetActiveSiteIDs() []string {
	active := make([]string, 0)
	for siteID, info := range m.detector.GetRegistry().Sites {
		if info.Status == "active" {
			active = append(active, siteID)
		}
	}
	return active
}

// GetCacheManager returns the cache manager for external access
func (m *Manager) GetCacheManager() *manager.Manager {
	return m.cacheManager
}

// GetDetector returns the detector for external access
func (m *Manager) GetDetector() *Detector {
	return m.detector
}

// GetLogger returns the logger for middleware access
func (m *Manager) GetLogger() *logging.ChanneledLogger {
	return m.logger
}

// Close cleans up all site contexts
func (m *Manager) Close() error {
	m.globalMutex.Lock()
	defer m.globalMutex.Unlock()

	for _, ctx := range m.contexts {
		if err := ctx.Close(); err != nil {
			continue
		}
	}

	m.contexts = make(map[string]*Context)
	return nil
}
