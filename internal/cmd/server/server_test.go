package server

import (
	"context"
	"flag"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("SEGMIND_API_KEY", "")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.SegmindURL != "https://api.segmind.com/v1/ai-face-swap" {
		t.Fatalf("SegmindURL = %q", cfg.SegmindURL)
	}
	if cfg.DemoFallback != "/demo.mp4" {
		t.Fatalf("DemoFallback = %q", cfg.DemoFallback)
	}
	if cfg.MaxBodyBytes != 10*1024*1024 {
		t.Fatalf("MaxBodyBytes = %d", cfg.MaxBodyBytes)
	}
	if cfg.UpstreamTimeout != 3*time.Minute {
		t.Fatalf("UpstreamTimeout = %s", cfg.UpstreamTimeout)
	}
	if cfg.PublicDir != "public" {
		t.Fatalf("PublicDir = %q", cfg.PublicDir)
	}
	if cfg.RateLimitPerMinute != 0 || cfg.RateLimitBurst != 1 {
		t.Fatalf("rate limit = %d/%d", cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	}
}

func TestParseConfigEnvThenFlags(t *testing.T) {
	t.Setenv("SEGMIND_API_KEY", "env-key")
	t.Setenv("CULTFACE_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("CULTFACE_DEMO_FALLBACK", "https://cdn.example/demo.mp4")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-http-addr", "127.0.0.1:9002", "-rate-limit", "6"})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.SegmindAPIKey != "env-key" {
		t.Fatalf("SegmindAPIKey = %q", cfg.SegmindAPIKey)
	}
	if cfg.HTTPAddr != "127.0.0.1:9002" {
		t.Fatalf("HTTPAddr = %q, want flag override", cfg.HTTPAddr)
	}
	if cfg.DemoFallback != "https://cdn.example/demo.mp4" {
		t.Fatalf("DemoFallback = %q, want env value", cfg.DemoFallback)
	}
	if cfg.RateLimitPerMinute != 6 {
		t.Fatalf("RateLimitPerMinute = %d", cfg.RateLimitPerMinute)
	}
}

func TestParseConfigRejectsBadEnv(t *testing.T) {
	t.Setenv("CULTFACE_UPSTREAM_TIMEOUT", "soon")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	if _, err := ParseConfig(fs, nil); err == nil {
		t.Fatal("expected env parse error")
	}
}

func TestNewFaceSwapHandlerRequiresAPIKey(t *testing.T) {
	if _, err := NewFaceSwapHandler(Config{}); err == nil || !strings.Contains(err.Error(), "SEGMIND_API_KEY") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestRunRequiresAPIKey(t *testing.T) {
	if err := Run(context.Background(), Config{HTTPAddr: "127.0.0.1:0"}); err == nil {
		t.Fatal("expected missing key error")
	}
}

func TestNewFaceSwapHandlerProxiesToProvider(t *testing.T) {
	var gotKey string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = w.Write([]byte("swapped"))
	}))
	defer upstream.Close()

	h, err := NewFaceSwapHandler(Config{SegmindAPIKey: "secret", SegmindURL: upstream.URL})
	if err != nil {
		t.Fatalf("NewFaceSwapHandler() error = %v", err)
	}

	rr := httptest.NewRecorder()
	body := strings.NewReader(`{"sourceBase64":"eA==","videoUrl":"https://cdn.example/clip.mp4"}`)
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/face-swap", body))

	if rr.Code != http.StatusOK || rr.Body.String() != "swapped" {
		t.Fatalf("response = %d %q", rr.Code, rr.Body.String())
	}
	if gotKey != "secret" {
		t.Fatalf("x-api-key = %q", gotKey)
	}
}
