package server

import (
	"context"
	"log/slog"
	"testing"

	"github.com/AtRiskMedia/sunset-go/internal/application/container"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/site"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServerAddrAndStop(t *testing.T) {
	gin.SetMode(gin.TestMode)

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToConsole: false,
		OutputToFile:    false,
		DefaultLevel:    slog.LevelError,
		ChannelLevels:   map[logging.Channel]slog.Level{},
	})
	require.NoError(t, err)

	siteManager := site.NewManager(logger)
	c, err := container.NewContainer(siteManager, siteManager.GetCacheManager(), logger)
	require.NoError(t, err)

	s := New("0", c)
	assert.Equal(t, ":0", s.Addr())

	// Shutdown on a server that never started is a clean no-op.
	assert.NoError(t, s.Stop(context.Background()))
}
