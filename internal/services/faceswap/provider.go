package faceswap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/louisbranch/cultface/internal/platform/otel"
	"github.com/louisbranch/cultface/internal/platform/timeouts"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultSegmindURL is the Segmind face-swap endpoint.
const DefaultSegmindURL = "https://api.segmind.com/v1/ai-face-swap"

const apiKeyHeader = "x-api-key"

// ProviderPayload is the request body of the provider's face-swap API.
type ProviderPayload struct {
	SourceImage           string  `json:"source_image"`
	Target                string  `json:"target"`
	PixelBoost            string  `json:"pixel_boost"`
	FaceSelectorMode      string  `json:"face_selector_mode"`
	FaceSelectorOrder     string  `json:"face_selector_order"`
	FaceSelectorAgeStart  int     `json:"face_selector_age_start"`
	FaceSelectorAgeEnd    int     `json:"face_selector_age_end"`
	ReferenceFaceDistance float64 `json:"reference_face_distance"`
	ReferenceFrameNumber  int     `json:"reference_frame_number"`
	Base64                bool    `json:"base64"`
}

// NewProviderPayload maps resolved options onto the provider's parameter
// names. Output is always requested as raw bytes, never base64.
func NewProviderPayload(opts SwapOptions) ProviderPayload {
	return ProviderPayload{
		SourceImage:           opts.SourceBase64,
		Target:                opts.VideoURL,
		PixelBoost:            opts.PixelBoost,
		FaceSelectorMode:      opts.FaceSelectorMode,
		FaceSelectorOrder:     opts.FaceSelectorOrder,
		FaceSelectorAgeStart:  opts.AgeStart,
		FaceSelectorAgeEnd:    opts.AgeEnd,
		ReferenceFaceDistance: opts.FaceDistance,
		ReferenceFrameNumber:  opts.FrameNumber,
		Base64:                false,
	}
}

// ProviderResponse is the raw provider answer. The caller owns Body.
type ProviderResponse struct {
	StatusCode    int
	ContentLength int64
	Body          io.ReadCloser
}

// Provider performs a face swap. A non-nil error means no usable response was
// received; any HTTP status, including failures, comes back as a response.
type Provider interface {
	Swap(ctx context.Context, payload ProviderPayload) (*ProviderResponse, error)
}

// SegmindConfig configures the Segmind adapter.
type SegmindConfig struct {
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
}

// SegmindProvider calls the Segmind face-swap API.
type SegmindProvider struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewSegmindProvider builds a Segmind adapter. The API key is required; the
// endpoint and client fall back to DefaultSegmindURL and an instrumented
// client bounded by timeouts.Upstream.
func NewSegmindProvider(cfg SegmindConfig) (*SegmindProvider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("segmind api key is required")
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultSegmindURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeouts.Upstream,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &SegmindProvider{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: httpClient,
	}, nil
}

// Swap posts the payload to Segmind and returns the unread response.
func (p *SegmindProvider) Swap(ctx context.Context, payload ProviderPayload) (*ProviderResponse, error) {
	ctx, span := otel.Tracer().Start(ctx, "faceswap.segmind.swap")
	defer span.End()
	span.SetAttributes(
		attribute.String("faceswap.target", payload.Target),
		attribute.String("faceswap.pixel_boost", payload.PixelBoost),
	)

	body, err := json.Marshal(payload)
	if err != nil {
		span.SetStatus(codes.Error, "marshal payload")
		return nil, fmt.Errorf("marshal swap payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		span.SetStatus(codes.Error, "build request")
		return nil, fmt.Errorf("build swap request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// The key only travels in this header; it is never logged or echoed.
	req.Header.Set(apiKeyHeader, p.apiKey)

	res, err := p.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "swap request failed")
		return nil, fmt.Errorf("swap request failed: %w", err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode))
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		span.SetStatus(codes.Error, res.Status)
	}
	return &ProviderResponse{
		StatusCode:    res.StatusCode,
		ContentLength: res.ContentLength,
		Body:          res.Body,
	}, nil
}
