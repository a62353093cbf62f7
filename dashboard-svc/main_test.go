package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"restodash/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAPI serves the remote restaurant API envelopes the dashboard expects.
func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/users/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"user":{"_id":"rest-1","email":"chef@example.com"},"token":"tok-1"}}`))
	})
	mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Not authorized"}`))
			return
		}
		w.Write([]byte(`{"user":{"_id":"rest-1","email":"chef@example.com"}}`))
	})
	mux.HandleFunc("/api/v1/orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rest-1", r.URL.Query().Get("owner"))
		w.Write([]byte(`{"data":{"data":[
			{"_id":"o1","status":"new","totalAmount":12.5,"createdAt":{"$date":"2025-04-28T12:30:00Z"}},
			{"_id":"o2","status":"completed","totalAmount":3}
		]}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, apiURL string) *config.Config {
	t.Helper()
	return &config.Config{
		App:     config.AppConfig{InstanceID: "test-1", PublicURL: "http://dash.test"},
		API:     config.APIConfig{BaseURL: apiURL + "/api/v1", MenusPath: "/menus", OrdersPath: "/orders", UsersPath: "/users", Timeout: 5 * time.Second},
		Token:   config.TokenConfig{Backend: "file", FilePath: filepath.Join(t.TempDir(), "token")},
		Cache:   config.CacheConfig{FetchTimeout: 5 * time.Second},
		Dialog:  config.DialogConfig{PreviewDir: t.TempDir()},
		Display: config.DisplayConfig{Timezone: "UTC", NotificationLimit: 10, OrderPageSize: 3},
	}
}

func TestBuildApp_LoginThenBoard(t *testing.T) {
	api := fakeAPI(t)
	a, err := buildApp(testConfig(t, api.URL), zap.NewNop(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.close(zap.NewNop())

	req := httptest.NewRequest("GET", "/api/orders/board", nil)
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"email":"chef@example.com","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/api/orders/board", nil)
	w = httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var board struct {
		New []struct {
			ID          string `json:"_id"`
			DisplayTime string `json:"displayTime"`
		} `json:"new"`
		Done []json.RawMessage `json:"done"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &board))
	require.Len(t, board.New, 1)
	assert.Equal(t, "o1", board.New[0].ID)
	assert.Equal(t, "12:30 28/04", board.New[0].DisplayTime)
	assert.Len(t, board.Done, 1)
}

func TestNewTokenStore(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   config.TokenConfig
		wantErr bool
	}{
		{name: "file", token: config.TokenConfig{Backend: "file", FilePath: filepath.Join(t.TempDir(), "token")}},
		{name: "redis", token: config.TokenConfig{Backend: "redis", RedisKey: "restodash:token"}},
		{name: "unknown", token: config.TokenConfig{Backend: "etcd"}, wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			cfg := &config.Config{
				Token: testCase.token,
				Redis: config.RedisConfig{Host: mr.Host(), Port: port},
			}
			store, closeFn, err := newTokenStore(cfg, zap.NewNop())
			if testCase.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer closeFn()

			ctx := context.Background()
			require.NoError(t, store.Set(ctx, "abc"))
			token, ok, err := store.Get(ctx)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "abc", token)
		})
	}
}
