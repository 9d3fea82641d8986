package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/brook/internal/adapter/http/dto"
	"github.com/iho/brook/internal/infrastructure/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("HTTP_PORT", "0")
	t.Setenv("SEED_DEMO", "false")
	t.Setenv("REDIS_URL", "")

	cfg, err := config.LoadFiles()
	require.NoError(t, err)
	cfg.HTTPShutdownTimeout = time.Second
	return cfg
}

func TestNewApp_SeedsDemoAccount(t *testing.T) {
	cfg := testConfig(t)
	cfg.SeedDemo = true

	a, err := newApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()

	srv := httptest.NewServer(a.handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/accounts/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list dto.ListAccountsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list.Accounts, 1)
	assert.Equal(t, "BOA Checking", list.Accounts[0].Name)
	assert.Len(t, list.Accounts[0].Pending, 4)
}

func TestNewApp_RateLimitDisabled(t *testing.T) {
	tests := []struct {
		name  string
		rps   float64
		burst int
	}{
		{name: "zero burst", rps: 50, burst: 0},
		{name: "zero rps", rps: 0, burst: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.RateLimitRPS = tt.rps
			cfg.RateLimitBurst = tt.burst

			a, err := newApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
			require.NoError(t, err)
			defer a.Close()
			assert.Nil(t, a.rateLimiter)

			srv := httptest.NewServer(a.handler)
			defer srv.Close()

			for i := 0; i < 3; i++ {
				resp, err := http.Get(srv.URL + "/api/v1/accounts/")
				require.NoError(t, err)
				resp.Body.Close()
				assert.Equal(t, http.StatusOK, resp.StatusCode)
			}
		})
	}
}

func TestNewApp_RedisIdempotency(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.RedisURL = "redis://" + mr.Addr()

	a, err := newApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()

	srv := httptest.NewServer(a.handler)
	defer srv.Close()

	ready, err := http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	var status map[string]string
	require.NoError(t, json.NewDecoder(ready.Body).Decode(&status))
	ready.Body.Close()
	assert.Equal(t, "ok", status["redis"])

	post := func() *http.Response {
		req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/accounts/", strings.NewReader(`{"name":"Savings"}`))
		require.NoError(t, err)
		req.Header.Set("Idempotency-Key", "create-savings")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	first := post()
	first.Body.Close()
	require.Equal(t, http.StatusCreated, first.StatusCode)

	second := post()
	second.Body.Close()
	require.Equal(t, http.StatusCreated, second.StatusCode)
	assert.Equal(t, "true", second.Header.Get("X-Idempotency-Replay"))

	assert.True(t, mr.Exists("brook:idempotency:/api/v1/accounts/:create-savings"))

	mr.Close()
	down, err := http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	down.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, down.StatusCode)
}

func TestNewApp_InvalidRedisURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.RedisURL = "not-a-url://"

	_, err := newApp(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	require.Error(t, err)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	cfg := testConfig(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, zerolog.Nop(), ln) }()

	url := "http://" + ln.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(url + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	metricsResp, err := http.Get(url + "/metrics")
	require.NoError(t, err)
	metricsResp.Body.Close()
	assert.Equal(t, http.StatusOK, metricsResp.StatusCode)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
