package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/ngeran/xaos/internal/config"
	"github.com/ngeran/xaos/internal/hub"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *hub.Hub) {
	t.Helper()

	cfg := &config.Config{
		AppEnv:            "test",
		Port:              "0",
		LogLevel:          "info",
		LogFormat:         "text",
		PingInterval:      30 * time.Second,
		ConnectionTimeout: 300 * time.Second,
		MaxConnections:    10,
		SendQueueSize:     32,
		MaxMessageSize:    1 << 20,
		DebugLogCapacity:  100,
	}
	if mutate != nil {
		mutate(cfg)
	}

	h := hub.New(hub.Config{
		PingInterval:      cfg.PingInterval,
		ConnectionTimeout: cfg.ConnectionTimeout,
		MaxConnections:    cfg.MaxConnections,
		QueueCapacity:     cfg.SendQueueSize,
		MaxMessageSize:    cfg.MaxMessageSize,
		DebugEnabled:      cfg.DebugEnabled,
		DebugLogCapacity:  cfg.DebugLogCapacity,
	}, clockwork.NewRealClock())
	t.Cleanup(h.Stop)

	return NewServer(cfg, h), h
}

// doJSON runs one request through the full router, middleware included.
func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
