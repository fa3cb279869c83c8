// Package site provides site context management for multi-site support.
package site

import (
	"github.com/AtRiskMedia/sunset-go/internal/domain/entities/notice"
	domainUser "github.com/AtRiskMedia/sunset-go/internal/domain/user"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/caching/manager"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/persistence/content"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/persistence/database"
	persistenceUser "github.com/AtRiskMedia/sunset-go/internal/infrastructure/persistence/user"
)

// Context holds site-specific request context
type Context struct {
	SiteID       string
	Config       *Config
	Database     *Database
	Status       string
	CacheManager *manager.Manager
	Logger       *logging.ChanneledLogger
}

// Close cleans up the site context
func (ctx *Context) Close() error {
	if ctx.Database != nil {
		return ctx.Database.Close()
	}
	return nil
}

// GetSiteID returns the site ID for this context
func (ctx *Context) GetSiteID() string {
	return ctx.SiteID
}

// GetConfig returns the site configuration
func (ctx *Context) GetConfig() *Config {
	return ctx.Config
}

// GetCacheManager returns the cache manager
func (ctx *Context) GetCacheManager() *manager.Manager {
	return ctx.CacheManager
}

// IsActive returns true if the site is active
func (ctx *Context) IsActive() bool {
	return ctx.Status == "active"
}

// GetDatabaseInfo returns database connection information for logging
func (ctx *Context) GetDatabaseInfo() string {
	if ctx.Database != nil {
		return ctx.Database.GetConnectionInfo()
	}
	return "no database connection"
}

// =============================================================================
// Repository Factory Methods
// =============================================================================

// NoticeRepo returns a notice repository instance
func (ctx *Context) NoticeRepo() notice.Repository {
	db := &database.DB{DB: ctx.Database.Conn}
	return content.NewSQLNoticeRepository(db, ctx.Logger)
}

// FingerprintRepo returns a fingerprint repository instance
func (ctx *Context) FingerprintRepo() domainUser.FingerprintRepository {
	db := &database.DB{DB: ctx.Database.Conn}
	return persistenceUser.NewSQLFingerprintRepository(db, ctx.Logger)
}

// VisitRepo returns a visit repository instance
func (ctx *Context) VisitRepo() domainUser.VisitRepository {
	db := &database.DB{DB: ctx.Database.Conn}
	return persistenceUser.NewSQLVisitRepository(db, ctx.Logger)
}

// DismissalRepo returns a dismissal repository instance
func (ctx *Context) DismissalRepo() domainUser.DismissalRepository {
	db := &database.DB{DB: ctx.Database.Conn}
	return persistenceUser.NewSQLDismissalRepository(db, ctx.Logger)
}

// OperatorRepo returns an operator repository instance
func (ctx *Context) OperatorRepo() domainUser.OperatorRepository {
	db := &database.DB{DB: ctx.Database.Conn}
	return persistenceUser.NewSQLOperatorRepository(db, ctx.Logger)
}
