package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vincentvila/portfolio-backend/config"
	"github.com/vincentvila/portfolio-backend/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "8080"},
		Store:  config.StoreConfig{Owner: "owner", Repo: "site", Token: "tok", Branch: "main", Root: "public/projects"},
		Mail:   config.MailConfig{ResendAPIKey: "key", ReceiverEmail: "owner@example.com"},
		Upload: config.UploadConfig{MaxFileSize: 1 << 20, MaxFiles: 10},
		App:    config.AppConfig{Environment: "test", Version: "test"},
	}
}

func TestBuildRouter_HealthAndRequestID(t *testing.T) {
	r := BuildRouter(RouterDeps{
		ServiceName: "portfolio-backend",
		Cfg:         testConfig(),
		Log:         zap.NewNop(),
		Store:       store.NewMemory(),
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestBuildRouter_ProjectsRouteWired(t *testing.T) {
	r := BuildRouter(RouterDeps{
		ServiceName: "portfolio-backend",
		Cfg:         testConfig(),
		Log:         zap.NewNop(),
		Store:       store.NewMemory(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
