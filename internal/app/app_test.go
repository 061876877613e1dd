package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/solar-nova/presence-core/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T, mutate func(*config.AppConfig)) *App {
	t.Helper()
	cfg := &config.AppConfig{
		Port:           8080,
		Env:            "production",
		AllowedOrigins: []string{"https://solar-nova.online"},
		Presence: config.PresenceRuntimeConfig{
			OnlineTTL:         60,
			ActivityWindow:    300,
			BroadcastInterval: 2,
		},
	}
	if mutate != nil {
		mutate(cfg)
	}
	a, err := New(zap.NewNop(), cfg)
	require.NoError(t, err)
	t.Cleanup(a.Shutdown)
	return a
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(zap.NewNop(), nil)
	require.Error(t, err)
}

func TestHeartbeatThenOnline(t *testing.T) {
	a := newTestApp(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/hit", strings.NewReader(`{"uid":"alice"}`))
	req.Header.Set("Content-Type", "application/json")
	a.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/online", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var sum struct {
		OnlineTotal int      `json:"online_total"`
		ActiveUIDs  []string `json:"active_uids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sum))
	require.Equal(t, 1, sum.OnlineTotal)
	require.Equal(t, []string{"alice"}, sum.ActiveUIDs)
}

func TestShutdownEndsObserverStreams(t *testing.T) {
	a := newTestApp(t, func(cfg *config.AppConfig) {
		cfg.Presence.BroadcastInterval = 1
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Client context far outlives the test; only Shutdown can end
		// this stream.
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/sse/online", nil).WithContext(ctx)
		a.Router().ServeHTTP(w, req)
	}()

	time.Sleep(50 * time.Millisecond)
	a.Shutdown()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("observer loop survived Shutdown")
	}
}

func TestStatsEndpoint(t *testing.T) {
	a := newTestApp(t, func(cfg *config.AppConfig) {
		cfg.Presence.SweepAfter = 3600
	})

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var stats struct {
		UptimeMS    int64 `json:"uptime_ms"`
		Records     int   `json:"records"`
		Subscribers struct {
			Total int `json:"total"`
		} `json:"subscribers"`
		Jobs []struct {
			Name string `json:"name"`
		} `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	require.Zero(t, stats.Records)
	require.Zero(t, stats.Subscribers.Total)
	require.Len(t, stats.Jobs, 1)
	require.Equal(t, "presence-sweep", stats.Jobs[0].Name)
}

func TestErrorEnvelopes(t *testing.T) {
	a := newTestApp(t, nil)

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/no/such/route", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"ok":false,"error":"not found"}`, w.Body.String())

	w = httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/hit", nil))
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	require.JSONEq(t, `{"ok":false,"error":"method not allowed"}`, w.Body.String())
}

func TestCORSHeaders(t *testing.T) {
	a := newTestApp(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/v1/hit", nil)
	req.Header.Set("Origin", "https://solar-nova.online")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	a.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "https://solar-nova.online", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/v1/hit", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	a.Router().ServeHTTP(w, req)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestOriginChecker(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		dev      bool
		origin   string
		want     bool
	}{
		{"exact match", []string{"https://solar-nova.online"}, false, "https://solar-nova.online", true},
		{"scheme not checked on host match", []string{"https://solar-nova.online"}, false, "http://solar-nova.online", true},
		{"other origin", []string{"https://solar-nova.online"}, false, "https://evil.example", false},
		{"wildcard subdomain", []string{"*.solar-nova.online"}, false, "https://app.solar-nova.online", true},
		{"port wildcard", []string{"localhost:*"}, false, "http://localhost:3000", true},
		{"dev allows anything", []string{"https://solar-nova.online"}, true, "https://evil.example", true},
		{"empty list allows anything", nil, false, "https://anywhere.example", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, originChecker(tt.patterns, tt.dev)(tt.origin))
		})
	}
}
