// Package config provides centralized default values for sunset-go
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Site Configuration
	HomeDir      string
	SiteIDs      string
	MediaEnabled bool

	// Database Pool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int
	SlowQueryThreshold       time.Duration
	MaxRecentMarkers         int

	// Session Configuration
	MaxSessionsPerSite   int
	SessionTTL           time.Duration
	VisitReuseWindow     time.Duration
	SessionCleanupEvery  time.Duration
	FingerprintHeaderKey string

	// SSE Configuration
	MaxSessionConnections       int
	SSEHeartbeatIntervalSeconds int

	// Email Configuration
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string

	// Auth Configuration
	JWTSecret string
	MultiSite bool
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Site Configuration
	HomeDir = getEnvString("SUNSET_HOME", defaultHomeDir())
	SiteIDs = getEnvString("SUNSET_SITES", "default")
	MediaEnabled = getEnvBool("SUNSET_MEDIA_ENABLED", true)

	// Database Pool
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 50*time.Millisecond)
	MaxRecentMarkers = getEnvInt("MAX_RECENT_MARKERS", 500)

	// Session Configuration
	MaxSessionsPerSite = getEnvInt("MAX_SESSIONS_PER_SITE", 5000)
	SessionTTL = time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour
	VisitReuseWindow = time.Duration(getEnvInt("VISIT_REUSE_WINDOW_HOURS", 2)) * time.Hour
	SessionCleanupEvery = time.Duration(getEnvInt("SESSION_CLEANUP_INTERVAL_MINUTES", 30)) * time.Minute
	FingerprintHeaderKey = getEnvString("FINGERPRINT_HEADER", "X-Sunset-Session-ID")

	// SSE Configuration
	MaxSessionConnections = getEnvInt("MAX_SESSION_CONNECTIONS", 3)
	SSEHeartbeatIntervalSeconds = getEnvInt("SSE_HEARTBEAT_INTERVAL_SECONDS", 30)

	// Email Configuration
	ResendAPIKey = getEnvString("RESEND_API_KEY", "")
	EmailFrom = getEnvString("SUNSET_EMAIL_FROM", "noreply@atriskmedia.com")
	EmailFromName = getEnvString("SUNSET_EMAIL_FROM_NAME", "Sunset Notices")

	// Auth Configuration
	JWTSecret = getEnvString("JWT_SECRET", "")
	MultiSite = getEnvBool("ENABLE_MULTI_SITE", false)
}

func defaultHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./sunset-go-server"
	}
	return home + "/sunset-go-server"
}
