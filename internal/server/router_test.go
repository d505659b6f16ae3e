package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"

	"github.com/devfolio/portfolio/backend/handlers"
	"github.com/devfolio/portfolio/backend/internal/admin"
	"github.com/devfolio/portfolio/backend/internal/config"
	"github.com/devfolio/portfolio/backend/internal/contact/repository"
	"github.com/devfolio/portfolio/backend/internal/contact/service"
	"github.com/devfolio/portfolio/backend/internal/sessions"
	"github.com/devfolio/portfolio/backend/internal/tokens"
	"github.com/devfolio/portfolio/backend/pkg/metrics"
	"github.com/devfolio/portfolio/backend/pkg/middleware"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.FrontendURL = "http://localhost:3001"
	cfg.Server.BodyLimit = 10 << 20
	cfg.Admin = config.AdminConfig{Email: "admin@example.com", Password: "s3nha-forte"}
	cfg.JWT = config.JWTConfig{Secret: "router-test-secret-at-least-32-bytes", TTL: time.Hour, Issuer: "portfolio-backend"}
	cfg.RateLimit = config.RateLimitConfig{ContactMax: 5, LoginMax: 5, Window: 15 * time.Minute}
	return cfg
}

func newTestRouter(t *testing.T) (*gin.Engine, *repository.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	repo := repository.NewMemoryRepo()

	creds, err := admin.NewCredentials(cfg.Admin)
	require.NoError(t, err)
	auth := admin.NewService(creds, tokens.NewJWTService(cfg.JWT), sessions.NewMemoryRevoker(), cfg.Admin.Email)

	store := middleware.NewMemoryWindowStore()
	reg := prometheus.NewRegistry()
	metrics.RegisterCollectors(reg)

	r, err := NewRouter(Deps{
		Config:         cfg,
		Contacts:       service.New(repo),
		Auth:           auth,
		ContactLimiter: middleware.NewWindowLimiter("contact", cfg.RateLimit.ContactMax, cfg.RateLimit.Window, "Muitas tentativas de contato. Tente novamente em 15 minutos.", store),
		LoginLimiter:   middleware.NewWindowLimiter("login", cfg.RateLimit.LoginMax, cfg.RateLimit.Window, "Muitas tentativas de login. Tente novamente em 15 minutos.", store),
		Ready:          map[string]handlers.Pinger{"store": repo},
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	require.NoError(t, err)
	return r, repo
}

type resp struct {
	*httptest.ResponseRecorder
	body map[string]interface{}
}

func send(r http.Handler, method, path, token, body string) resp {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.10:40000"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return resp{w, out}
}

func TestUnknownRoute(t *testing.T) {
	r, _ := newTestRouter(t)
	res := send(r, http.MethodGet, "/api/nada", "", "")
	require.Equal(t, http.StatusNotFound, res.Code)
	require.Equal(t, map[string]interface{}{"success": false, "message": "Rota não encontrada"}, res.body)
}

func TestPanicBecomesInternalError(t *testing.T) {
	r, _ := newTestRouter(t)
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })
	res := send(r, http.MethodGet, "/boom", "", "")
	require.Equal(t, http.StatusInternalServerError, res.Code)
	require.Equal(t, "Erro interno do servidor", res.body["message"])
	require.NotContains(t, res.Body.String(), "kaboom")
}

func TestCommonHeaders(t *testing.T) {
	r, _ := newTestRouter(t)
	res := send(r, http.MethodGet, "/api/health", "", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.NotEmpty(t, res.Header().Get("X-Request-ID"))
	require.Equal(t, "nosniff", res.Header().Get("X-Content-Type-Options"))

	res = send(r, http.MethodGet, "/api/ready", "", "")
	require.Equal(t, http.StatusOK, res.Code)
}

func TestContactRateLimit(t *testing.T) {
	r, repo := newTestRouter(t)
	body := `{"nome":"Ana","email":"ana@example.com","mensagem":"Olá"}`
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusCreated, send(r, http.MethodPost, "/api/contato", "", body).Code)
	}
	res := send(r, http.MethodPost, "/api/contato", "", body)
	require.Equal(t, http.StatusTooManyRequests, res.Code)
	require.Equal(t, "Muitas tentativas de contato. Tente novamente em 15 minutos.", res.body["message"])
	require.NotEmpty(t, res.Header().Get("Retry-After"))
	require.Equal(t, 5, repo.Len())

	// login has its own counter
	res = send(r, http.MethodPost, "/api/admin/login", "", `{"email":"admin@example.com","password":"s3nha-forte"}`)
	require.Equal(t, http.StatusOK, res.Code)
}

func TestLoginRateLimit(t *testing.T) {
	r, _ := newTestRouter(t)
	for i := 0; i < 5; i++ {
		res := send(r, http.MethodPost, "/api/admin/login", "", `{"email":"admin@example.com","password":"errada"}`)
		require.Equal(t, http.StatusUnauthorized, res.Code)
	}
	res := send(r, http.MethodPost, "/api/admin/login", "", `{"email":"admin@example.com","password":"s3nha-forte"}`)
	require.Equal(t, http.StatusTooManyRequests, res.Code)
	require.Equal(t, "Muitas tentativas de login. Tente novamente em 15 minutos.", res.body["message"])
}

func TestAdminFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, path := range []string{"/api/admin/contatos", "/api/admin/stats", "/api/admin/export", "/api/admin/verify"} {
		res := send(r, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusUnauthorized, res.Code, path)
		require.Equal(t, "Token de acesso requerido", res.body["message"], path)
	}

	for i := 0; i < 3; i++ {
		body := fmt.Sprintf(`{"nome":"Pessoa %d","email":"p%d@example.com","empresa":"Empresa","mensagem":"Mensagem %d"}`, i, i, i)
		require.Equal(t, http.StatusCreated, send(r, http.MethodPost, "/api/contato", "", body).Code)
	}

	login := send(r, http.MethodPost, "/api/admin/login", "", `{"email":"admin@example.com","password":"s3nha-forte"}`)
	require.Equal(t, http.StatusOK, login.Code)
	token := login.body["token"].(string)

	list := send(r, http.MethodGet, "/api/admin/contatos?limit=2", token, "")
	require.Equal(t, http.StatusOK, list.Code)
	require.EqualValues(t, 3, list.body["total"])
	require.EqualValues(t, 2, list.body["totalPages"])
	items := list.body["items"].([]interface{})
	require.Equal(t, "Pessoa 2", items[0].(map[string]interface{})["name"])
	id := items[0].(map[string]interface{})["id"].(string)

	upd := send(r, http.MethodPatch, "/api/admin/contatos/"+id+"/status", token, `{"status":"read"}`)
	require.Equal(t, http.StatusOK, upd.Code)

	stats := send(r, http.MethodGet, "/api/admin/stats", token, "")
	require.Equal(t, http.StatusOK, stats.Code)
	require.Equal(t, map[string]interface{}{"total": 3.0, "new": 2.0, "read": 1.0, "replied": 0.0, "lastWeek": 3.0}, stats.body["stats"])

	exp := send(r, http.MethodGet, "/api/admin/export", token, "")
	require.Equal(t, http.StatusOK, exp.Code)
	require.Equal(t, 4, strings.Count(exp.Body.String(), "\n")+1)

	del := send(r, http.MethodDelete, "/api/admin/contatos/"+id, token, "")
	require.Equal(t, http.StatusOK, del.Code)
	del = send(r, http.MethodDelete, "/api/admin/contatos/"+id, token, "")
	require.Equal(t, http.StatusNotFound, del.Code)

	require.Equal(t, http.StatusOK, send(r, http.MethodPost, "/api/admin/logout", token, "").Code)
	res := send(r, http.MethodGet, "/api/admin/contatos", token, "")
	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.Equal(t, "Token inválido ou expirado", res.body["message"])
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	send(r, http.MethodGet, "/api/health", "", "")
	res := send(r, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), "portfolio_http_requests_total")
}

func TestThrottle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	repo := repository.NewMemoryRepo()
	creds, err := admin.NewCredentials(cfg.Admin)
	require.NoError(t, err)
	r, err := NewRouter(Deps{
		Config:   cfg,
		Contacts: service.New(repo),
		Auth:     admin.NewService(creds, tokens.NewJWTService(cfg.JWT), nil, cfg.Admin.Email),
		Throttle: middleware.NewThrottle(0.001, 2),
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, send(r, http.MethodGet, "/api/health", "", "").Code)
	require.Equal(t, http.StatusOK, send(r, http.MethodGet, "/api/health", "", "").Code)
	require.Equal(t, http.StatusTooManyRequests, send(r, http.MethodGet, "/api/health", "", "").Code)
	// swagger lives outside /api and is not throttled
	require.Equal(t, http.StatusOK, send(r, http.MethodGet, "/swagger/doc.json", "", "").Code)
}
