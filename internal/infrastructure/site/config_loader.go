// Package site handles loading and providing site-specific configurations.
package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/pkg/config"
)

// Config represents the structure of a single site's configuration
type Config struct {
	SiteID        string   `json:"siteId"`
	Domains       []string `json:"domains"`
	Status        string   `json:"status"`
	DatabaseType  string   `json:"databaseType"`
	TursoDatabase string   `json:"TURSO_DATABASE_URL"`
	TursoToken    string   `json:"TURSO_AUTH_TOKEN"`
	TursoEnabled  bool     `json:"TURSO_ENABLED"`
	JWTSecret     string   `json:"JWT_SECRET"`
	OperatorEmail string   `json:"OPERATOR_EMAIL,omitempty"`
	SQLitePath    string   `json:"-"`
}

// LoadSiteConfig loads configuration for a specific site from its env.json file.
// A missing file is not an error: small installs run entirely on defaults.
func LoadSiteConfig(siteID string, logger *logging.ChanneledLogger) (*Config, error) {
	siteConfig := &Config{
		SiteID:  siteID,
		Domains: []string{"*"},
		Status:  "active",
	}

	configPath := filepath.Join(config.HomeDir, "config", siteID, "env.json")
	if configFile, err := os.ReadFile(configPath); err == nil {
		if err := json.Unmarshal(configFile, siteConfig); err != nil {
			return nil, fmt.Errorf("could not parse site config json at %s: %w", configPath, err)
		}
		siteConfig.SiteID = siteID
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("could not read site config file: %w", err)
	}

	if siteConfig.JWTSecret == "" {
		siteConfig.JWTSecret = config.JWTSecret
	}
	siteConfig.SQLitePath = filepath.Join(config.HomeDir, "db", siteID, "sunset.db")

	if logger != nil {
		logger.System().Debug("Loaded site config", "siteId", siteID, "tursoEnabled", siteConfig.TursoEnabled)
	}

	return siteConfig, nil
}

// SiteRegistry holds the global site configuration
type SiteRegistry struct {
	Sites map[string]SiteInfo `json:"sites"`
}

// SiteInfo holds site metadata
type SiteInfo struct {
	SiteID       string   `json:"siteId"`
	Domains      []string `json:"domains"`
	Status       string   `json:"status"`       // "unknown", "inactive", "active"
	DatabaseType string   `json:"databaseType"` // "turso", "sqlite3"
}

// LoadSiteRegistry loads the global site registry. When no sites.json exists
// the registry is synthesized from the SUNSET_SITES environment list.
func LoadSiteRegistry() (*SiteRegistry, error) {
	registryPath := filepath.Join(config.HomeDir, "config", "sunset", "sites.json")

	if _, err := os.Stat(registryPath); os.IsNotExist(err) {
		registry := &SiteRegistry{Sites: make(map[string]SiteInfo)}
		for _, siteID := range strings.Split(config.SiteIDs, ",") {
			siteID = strings.TrimSpace(siteID)
			if siteID == "" {
				continue
			}
			registry.Sites[siteID] = SiteInfo{
				SiteID:       siteID,
				Domains:      []string{"*"},
				Status:       "inactive",
				DatabaseType: "",
			}
		}
		return registry, nil
	}

	data, err := os.ReadFile(registryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read site registry: %w", err)
	}

	var registry SiteRegistry
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse site registry: %w", err)
	}

	return &registry, nil
}

// RegisterSite adds a new site to the registry file so restarts keep it
func RegisterSite(siteID string) error {
	registryPath := filepath.Join(config.HomeDir, "config", "sunset", "sites.json")

	registry, err := LoadSiteRegistry()
	if err != nil {
		return err
	}

	if _, exists := registry.Sites[siteID]; exists {
		return nil
	}

	registry.Sites[siteID] = SiteInfo{
		SiteID:       siteID,
		Domains:      []string{"*"},
		Status:       "inactive",
		DatabaseType: "",
	}

	if err := os.MkdirAll(filepath.Dir(registryPath), 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}

	data, err := json.MarshalIndent(registry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.WriteFile(registryPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}

	return nil
}
