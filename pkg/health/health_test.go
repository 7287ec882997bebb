package health

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flagChecker struct {
	ready atomic.Bool
}

func (f *flagChecker) Ready() bool {
	return f.ready.Load()
}

func newTestServer(checker ReadinessChecker) *Server {
	return NewServer(":0", checker, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func get(t *testing.T, s *Server, path string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	if rec.Code != http.StatusNotFound {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec.Code, body
}

func TestLiveness(t *testing.T) {
	code, body := get(t, newTestServer(nil), "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alive", body["status"])
	assert.Equal(t, ServiceName, body["service"])
}

func TestReadiness(t *testing.T) {
	checker := &flagChecker{}
	s := newTestServer(checker)

	// not started
	code, body := get(t, s, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not_ready", body["status"])

	assert.Equal(t, "health server stopped", body["reason"])

	s.ready.Store(true)
	code, body = get(t, s, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "api server not accepting requests", body["reason"])

	checker.ready.Store(true)
	code, body = get(t, s, "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", body["status"])
}

func TestReadiness_NilChecker(t *testing.T) {
	s := newTestServer(nil)
	s.ready.Store(true)

	code, _ := get(t, s, "/readyz")
	assert.Equal(t, http.StatusOK, code)
}

func TestIndex(t *testing.T) {
	s := newTestServer(nil)

	code, body := get(t, s, "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, ServiceName, body["service"])

	code, _ = get(t, s, "/nope")
	assert.Equal(t, http.StatusNotFound, code)
}
