// Package server parses server command flags and composes the web process.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/cultface/internal/platform/cmd"
	"github.com/louisbranch/cultface/internal/services/faceswap"
	"github.com/louisbranch/cultface/internal/services/web"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config holds server command configuration.
type Config struct {
	HTTPAddr           string        `env:"CULTFACE_HTTP_ADDR"             envDefault:":8080"`
	SegmindAPIKey      string        `env:"SEGMIND_API_KEY"`
	SegmindURL         string        `env:"CULTFACE_SEGMIND_URL"           envDefault:"https://api.segmind.com/v1/ai-face-swap"`
	DemoFallback       string        `env:"CULTFACE_DEMO_FALLBACK"         envDefault:"/demo.mp4"`
	MaxBodyBytes       int64         `env:"CULTFACE_MAX_BODY_BYTES"        envDefault:"10485760"`
	UpstreamTimeout    time.Duration `env:"CULTFACE_UPSTREAM_TIMEOUT"      envDefault:"3m"`
	PublicDir          string        `env:"CULTFACE_PUBLIC_DIR"            envDefault:"public"`
	AssetBaseURL       string        `env:"CULTFACE_ASSET_BASE_URL"`
	RateLimitPerMinute int           `env:"CULTFACE_RATE_LIMIT_PER_MINUTE" envDefault:"0"`
	RateLimitBurst     int           `env:"CULTFACE_RATE_LIMIT_BURST"      envDefault:"1"`
}

// ParseConfig parses environment and flags into a Config. The API key is
// environment-only so it never shows up in process listings.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.SegmindURL, "segmind-url", cfg.SegmindURL, "face-swap provider endpoint")
	fs.StringVar(&cfg.DemoFallback, "demo-fallback", cfg.DemoFallback, "video URL served when the provider is rate limited")
	fs.Int64Var(&cfg.MaxBodyBytes, "max-body-bytes", cfg.MaxBodyBytes, "maximum face-swap request body size")
	fs.DurationVar(&cfg.UpstreamTimeout, "upstream-timeout", cfg.UpstreamTimeout, "face-swap provider call timeout")
	fs.StringVar(&cfg.PublicDir, "public-dir", cfg.PublicDir, "directory with scene clips, thumbnails and the demo video")
	fs.StringVar(&cfg.AssetBaseURL, "asset-base-url", cfg.AssetBaseURL, "public base URL used to make relative scene URLs absolute (empty: request origin)")
	fs.IntVar(&cfg.RateLimitPerMinute, "rate-limit", cfg.RateLimitPerMinute, "provider calls allowed per minute before serving the demo (0 disables)")
	fs.IntVar(&cfg.RateLimitBurst, "rate-limit-burst", cfg.RateLimitBurst, "burst size for -rate-limit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewFaceSwapHandler builds the proxy handler and its Segmind provider.
func NewFaceSwapHandler(cfg Config) (http.Handler, error) {
	if strings.TrimSpace(cfg.SegmindAPIKey) == "" {
		return nil, errors.New("SEGMIND_API_KEY is required")
	}
	timeout := cfg.UpstreamTimeout
	if timeout <= 0 {
		timeout = 3 * time.Minute
	}
	provider, err := faceswap.NewSegmindProvider(faceswap.SegmindConfig{
		Endpoint: cfg.SegmindURL,
		APIKey:   cfg.SegmindAPIKey,
		HTTPClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("init face-swap provider: %w", err)
	}
	return faceswap.NewHandler(faceswap.Config{
		Provider:        provider,
		DemoFallbackURL: cfg.DemoFallback,
		MaxBodyBytes:    cfg.MaxBodyBytes,
		AssetBaseURL:    cfg.AssetBaseURL,
		Limiter:         faceswap.NewLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst),
	})
}

// Run builds the face-swap proxy and serves the web process.
func Run(ctx context.Context, cfg Config) error {
	faceSwap, err := NewFaceSwapHandler(cfg)
	if err != nil {
		return err
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceServer, func(ctx context.Context) error {
		if err := web.Run(ctx, web.Config{
			HTTPAddr:  cfg.HTTPAddr,
			FaceSwap:  faceSwap,
			PublicDir: cfg.PublicDir,
		}); err != nil {
			return fmt.Errorf("serve cultface: %w", err)
		}
		return nil
	})
}
