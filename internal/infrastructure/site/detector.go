// Package site provides site detection and validation.
package site

import (
	"fmt"
	"strings"

	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// Detector handles site detection from HTTP requests
type Detector struct {
	registry  *SiteRegistry
	multiSite bool
	logger    *logging.ChanneledLogger
}

// NewDetector creates a new site detector
func NewDetector(logger *logging.ChanneledLogger) (*Detector, error) {
	registry, err := LoadSiteRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load site registry: %w", err)
	}

	return &Detector{
		registry:  registry,
		multiSite: config.MultiSite,
		logger:    logger,
	}, nil
}

// DetectSite extracts the site ID from a request.
// EventSource cannot set custom headers, so SSE connections may pass
// the site ID as a query parameter instead.
func (d *Detector) DetectSite(c *gin.Context) (string, error) {
	var siteID string

	if d.multiSite {
		siteID = c.GetHeader("X-Sunset-Site-ID")
		if siteID == "" {
			siteID = c.Query("siteId")
		}

		if siteID == "" {
			return "", fmt.Errorf("missing site ID header in multi-site mode")
		}
	} else {
		siteID = "default"
	}

	if _, exists := d.registry.Sites[siteID]; !exists {
		return "", fmt.Errorf("unknown site: %s", siteID)
	}

	return siteID, nil
}

// ValidateDomain checks if the request domain is allowed for the site
func (d *Detector) ValidateDomain(siteID, domain string) bool {
	siteInfo, exists := d.registry.Sites[siteID]
	if !exists {
		return false
	}

	for _, allowedDomain := range siteInfo.Domains {
		if allowedDomain == "*" {
			return true
		}
		if strings.EqualFold(allowedDomain, domain) {
			return true
		}
	}

	return false
}

// GetSiteStatus returns the current status of a site
func (d *Detector) GetSiteStatus(siteID string) string {
	if siteInfo, exists := d.registry.Sites[siteID]; exists {
		return siteInfo.Status
	}
	return "unknown"
}

// UpdateSiteStatus updates the cached registry status
func (d *Detector) UpdateSiteStatus(siteID, status, dbType string) {
	if siteInfo, exists := d.registry.Sites[siteID]; exists {
		siteInfo.Status = status
		if dbType != "" {
			siteInfo.DatabaseType = dbType
		}
		d.registry.Sites[siteID] = siteInfo
	}
}

// RefreshRegistry reloads the site registry
func (d *Detector) RefreshRegistry() error {
	registry, err := LoadSiteRegistry()
	if err != nil {
		return fmt.Errorf("failed to refresh site registry: %w", err)
	}
	d.registry = registry
	return nil
}

// GetRegistry returns the current registry
func (d *Detector) GetRegistry() *SiteRegistry {
	return d.registry
}
