package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"animeharvest/pkg/extract"
	"animeharvest/pkg/logging"
)

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler := promhttp.Handler()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	bodyStr := string(body)
	if !strings.Contains(bodyStr, "# HELP") || !strings.Contains(bodyStr, "# TYPE") {
		t.Error("Expected Prometheus format metrics output")
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Run("string fallback", func(t *testing.T) {
		if got := getEnv("ANIMEHARVEST_UNSET_VAR", "fallback"); got != "fallback" {
			t.Errorf("getEnv = %q, want fallback", got)
		}
	})

	t.Run("string set", func(t *testing.T) {
		t.Setenv("ANIMEHARVEST_TEST_VAR", "value")
		if got := getEnv("ANIMEHARVEST_TEST_VAR", "fallback"); got != "value" {
			t.Errorf("getEnv = %q, want value", got)
		}
	})

	t.Run("int set", func(t *testing.T) {
		t.Setenv("ANIMEHARVEST_TEST_INT", "42")
		if got := getEnvInt("ANIMEHARVEST_TEST_INT", 7); got != 42 {
			t.Errorf("getEnvInt = %d, want 42", got)
		}
	})

	t.Run("int invalid falls back", func(t *testing.T) {
		t.Setenv("ANIMEHARVEST_TEST_INT", "not-a-number")
		if got := getEnvInt("ANIMEHARVEST_TEST_INT", 7); got != 7 {
			t.Errorf("getEnvInt = %d, want 7", got)
		}
	})

	t.Run("duration set", func(t *testing.T) {
		t.Setenv("ANIMEHARVEST_TEST_DUR", "250ms")
		if got := getEnvDuration("ANIMEHARVEST_TEST_DUR", time.Second); got != 250*time.Millisecond {
			t.Errorf("getEnvDuration = %v, want 250ms", got)
		}
	})

	t.Run("duration invalid falls back", func(t *testing.T) {
		t.Setenv("ANIMEHARVEST_TEST_DUR", "soon")
		if got := getEnvDuration("ANIMEHARVEST_TEST_DUR", time.Second); got != time.Second {
			t.Errorf("getEnvDuration = %v, want 1s", got)
		}
	})
}

func TestLogSample_HandlesNilFields(t *testing.T) {
	logger := logging.Setup(logging.Config{Level: logging.LevelInfo, Output: io.Discard})

	score := 8.75
	title := "Cowboy Bebop"
	records := []extract.Record{
		{ID: 1, Title: &title, Score: &score, Genres: "Action"},
		{ID: 2}, // every optional absent
	}

	// Must not panic on records with absent optionals or short slices.
	logSample(logger, nil, 3)
	logSample(logger, records, 10)
}
