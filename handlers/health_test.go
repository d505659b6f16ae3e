package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	g := gin.New()
	RegisterHealth(g.Group("/api"), nil)

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Equal(t, true, out["success"])
	require.Equal(t, "Servidor funcionando!", out["message"])
	_, err := time.Parse(time.RFC3339, out["timestamp"].(string))
	require.NoError(t, err)
}

func TestReady(t *testing.T) {
	var storeErr error
	g := gin.New()
	RegisterHealth(g, map[string]Pinger{
		"store": PingFunc(func(context.Context) error { return storeErr }),
		"redis": PingFunc(func(context.Context) error { return nil }),
	})

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Equal(t, "ready", out["status"])
	require.Equal(t, map[string]interface{}{"store": true, "redis": true}, out["deps"])

	storeErr = errors.New("server selection timeout")
	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Equal(t, false, out["success"])
	require.Equal(t, "not_ready", out["status"])
	require.Equal(t, map[string]interface{}{"store": false, "redis": true}, out["deps"])
}
