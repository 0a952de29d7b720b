package faceswap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/cultface/internal/platform/assets/catalog"
	apperrors "github.com/louisbranch/cultface/internal/platform/errors"
	"golang.org/x/time/rate"
)

const (
	// Path is the route the handler is mounted on.
	Path = "/api/face-swap"

	// DefaultMaxBodyBytes bounds the inbound JSON body. Base64 images are
	// roughly a third larger than the source file.
	DefaultMaxBodyBytes int64 = 10 << 20

	// DemoHeader marks responses that substitute the demo video.
	DemoHeader = "X-Cultface-Demo"

	videoContentType = "video/mp4"

	maxUpstreamErrorBytes = 1 << 20
	internalErrorMessage  = "internal server error"
)

// Demo reasons reported in DemoHeader.
const (
	DemoReasonUpstreamRateLimited = "rate-limited"
	DemoReasonLocalRateLimited    = "local-rate-limit"
)

// DemoResponse is the JSON marker telling the client to play the fallback.
type DemoResponse struct {
	Demo bool   `json:"demo"`
	URL  string `json:"url"`
}

// ErrorResponse is the JSON body of every error answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Config defines the handler's collaborators.
type Config struct {
	Provider Provider
	// DemoFallbackURL is served when the provider rate-limits and the request
	// did not name its own fallback.
	DemoFallbackURL string
	// MaxBodyBytes caps the request body; zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
	// AssetBaseURL turns site-relative video URLs (the scene catalog's
	// "/Brad Pitt.mp4") into absolute ones the provider can fetch. Empty means
	// the origin the request arrived on.
	AssetBaseURL string
	// Limiter optionally bounds provider calls process-wide. Requests over
	// budget get the demo fallback without reaching the provider.
	Limiter *rate.Limiter
}

// Handler serves POST /api/face-swap.
type Handler struct {
	provider        Provider
	demoFallbackURL string
	maxBodyBytes    int64
	assetBaseURL    string
	limiter         *rate.Limiter
}

// NewHandler builds the proxy handler.
func NewHandler(cfg Config) (*Handler, error) {
	if cfg.Provider == nil {
		return nil, errors.New("face-swap provider is required")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	demo := strings.TrimSpace(cfg.DemoFallbackURL)
	if demo == "" {
		demo = DefaultDemoFallback
	}
	return &Handler{
		provider:        cfg.Provider,
		demoFallbackURL: demo,
		maxBodyBytes:    cfg.MaxBodyBytes,
		assetBaseURL:    strings.TrimSpace(cfg.AssetBaseURL),
		limiter:         cfg.Limiter,
	}, nil
}

// NewLimiter returns a limiter allowing perMinute provider calls with the
// given burst, or nil when perMinute is not positive.
func NewLimiter(perMinute int, burst int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, apperrors.New(apperrors.CodeMethodNotAllowed, "method not allowed"))
		return
	}

	req, err := h.decode(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts := req.Resolve(h.demoFallbackURL)
	base := h.assetBaseURL
	if base == "" {
		base = requestOrigin(r)
	}
	target, err := catalog.ResolveURL(base, opts.VideoURL)
	if err != nil {
		writeError(w, r, apperrors.Wrap(apperrors.CodeInvalidRequest, "invalid videoUrl", err))
		return
	}
	opts.VideoURL = target

	if h.limiter != nil && !h.limiter.Allow() {
		log.Printf("faceswap: local rate limit reached, serving demo url=%q", opts.DemoFallback)
		writeDemo(w, opts.DemoFallback, DemoReasonLocalRateLimited)
		return
	}

	res, err := h.provider.Swap(r.Context(), NewProviderPayload(opts))
	if err != nil {
		writeError(w, r, apperrors.Wrap(apperrors.CodeUpstreamUnavailable, internalErrorMessage, err))
		return
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusTooManyRequests:
		limited := apperrors.New(apperrors.CodeUpstreamRateLimited, "provider rate limited")
		log.Printf("faceswap: %s (%s), serving demo url=%q", limited.Message, limited.Code, opts.DemoFallback)
		writeDemo(w, opts.DemoFallback, DemoReasonUpstreamRateLimited)
	case res.StatusCode < 200 || res.StatusCode >= 300:
		body, err := io.ReadAll(io.LimitReader(res.Body, maxUpstreamErrorBytes))
		if err != nil {
			writeError(w, r, apperrors.Wrap(apperrors.CodeInternal, internalErrorMessage, fmt.Errorf("read provider error body: %w", err)))
			return
		}
		log.Printf("faceswap: provider status %d for target=%q", res.StatusCode, opts.VideoURL)
		writeError(w, r, apperrors.WithStatus(apperrors.CodeUpstreamFailure, res.StatusCode, string(body)))
	default:
		w.Header().Set("Content-Type", videoContentType)
		if res.ContentLength > 0 {
			w.Header().Set("Content-Length", strconv.FormatInt(res.ContentLength, 10))
		}
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, res.Body); err != nil {
			// Headers are out; the client sees a truncated video.
			log.Printf("faceswap: stream video: %v", err)
		}
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (SwapRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	var req SwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return SwapRequest{}, apperrors.New(apperrors.CodeRequestTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		}
		return SwapRequest{}, apperrors.Wrap(apperrors.CodeInvalidRequest, "invalid JSON body", err)
	}
	if err := req.Validate(); err != nil {
		return SwapRequest{}, err
	}
	return req, nil
}

// requestOrigin is the scheme and host the client reached us on. A TLS
// terminating proxy reports the original scheme in X-Forwarded-Proto.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		proto := strings.ToLower(strings.TrimSpace(strings.Split(forwarded, ",")[0]))
		if proto == "http" || proto == "https" {
			scheme = proto
		}
	}
	return scheme + "://" + r.Host
}

func writeDemo(w http.ResponseWriter, url string, reason string) {
	w.Header().Set(DemoHeader, reason)
	writeJSON(w, http.StatusOK, DemoResponse{Demo: true, URL: url})
}

// writeError answers with the domain error's status and caller-safe message.
// Errors outside the domain collapse to a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Wrap(apperrors.CodeInternal, internalErrorMessage, err)
	}
	status := appErr.HTTPStatus()
	if appErr.Cause != nil || status >= http.StatusInternalServerError {
		log.Printf("faceswap: %s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, ErrorResponse{Error: appErr.Message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
