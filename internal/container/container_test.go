package container

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-interests-api/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Repositories.Postgres.Host = "127.0.0.1"
	cfg.Repositories.Postgres.Port = "1"
	cfg.Repositories.Postgres.Username = "postgres"
	cfg.Repositories.Postgres.Password = "postgres"
	cfg.Repositories.Postgres.DB = "interests"
	cfg.Repositories.Postgres.MaxConns = 10
	cfg.Server.Timeout = time.Second
	cfg.Events.Heartbeat = time.Minute
	cfg.Events.SubscriberBuffer = 4
	return cfg
}

func TestNewContainer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := NewContainer(testConfig(), logger)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, int32(10), c.Pool.Config().MaxConns)
	assert.Contains(t, c.DBConfig.ConnectionURL, "127.0.0.1:1/interests")
	require.NotNil(t, c.Hub)

	rec := httptest.NewRecorder()
	c.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewContainer_MissingHost(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig()
	cfg.Repositories.Postgres.Host = ""

	_, err := NewContainer(cfg, logger)
	assert.Error(t, err)
}

func TestClose_EndsSubscriptions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := NewContainer(testConfig(), logger)
	require.NoError(t, err)

	events, cancel := c.Hub.Subscribe()
	defer cancel()
	c.Close()

	_, open := <-events
	assert.False(t, open)
}
