package faceswap

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/louisbranch/cultface/internal/platform/assets/catalog"
)

type fakeProvider struct {
	calls   int
	payload ProviderPayload
	res     *ProviderResponse
	err     error
}

func (f *fakeProvider) Swap(_ context.Context, payload ProviderPayload) (*ProviderResponse, error) {
	f.calls++
	f.payload = payload
	return f.res, f.err
}

func providerResponse(status int, body string) *ProviderResponse {
	return &ProviderResponse{
		StatusCode:    status,
		ContentLength: int64(len(body)),
		Body:          io.NopCloser(strings.NewReader(body)),
	}
}

func newTestHandler(t *testing.T, cfg Config) *Handler {
	t.Helper()
	h, err := NewHandler(cfg)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	return h
}

func swapBody(t *testing.T, req any) io.Reader {
	t.Helper()
	data, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return bytes.NewReader(data)
}

func validRequest() SwapRequest {
	return SwapRequest{
		SourceBase64: base64.StdEncoding.EncodeToString([]byte("portrait")),
		VideoURL:     "https://cdn.example/Brad%20Pitt.mp4",
	}
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestNewHandlerRequiresProvider(t *testing.T) {
	if _, err := NewHandler(Config{}); err == nil {
		t.Fatal("expected error for missing provider")
	}
}

func TestHandlerRejectsNonPost(t *testing.T) {
	provider := &fakeProvider{}
	h := newTestHandler(t, Config{Provider: provider})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodHead, http.MethodOptions} {
		t.Run(method, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(method, Path, nil))

			if rr.Code != http.StatusMethodNotAllowed {
				t.Fatalf("status = %d, want 405", rr.Code)
			}
			if got := rr.Header().Get("Allow"); got != http.MethodPost {
				t.Fatalf("Allow = %q, want POST", got)
			}
		})
	}
	if provider.calls != 0 {
		t.Fatalf("provider called %d times", provider.calls)
	}
}

func TestHandlerStreamsVideoOnSuccess(t *testing.T) {
	video := "\x00\x00\x00\x18ftypmp42binary-video"
	provider := &fakeProvider{res: providerResponse(http.StatusOK, video)}
	h := newTestHandler(t, Config{Provider: provider})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, Path, swapBody(t, validRequest())))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "video/mp4" {
		t.Fatalf("Content-Type = %q, want video/mp4", got)
	}
	if rr.Body.String() != video {
		t.Fatalf("body = %q, want upstream bytes", rr.Body.String())
	}
	if provider.payload.Target != validRequest().VideoURL || provider.payload.Base64 {
		t.Fatalf("unexpected payload %+v", provider.payload)
	}
}

func TestHandlerServesDemoOnUpstreamRateLimit(t *testing.T) {
	provider := &fakeProvider{res: providerResponse(http.StatusTooManyRequests, `{"error":"slow down"}`)}
	h := newTestHandler(t, Config{Provider: provider, DemoFallbackURL: "https://cdn.example/demo.mp4"})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, Path, swapBody(t, validRequest())))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	got := decodeJSON[DemoResponse](t, rr)
	if !got.Demo || got.URL != "https://cdn.example/demo.mp4" {
		t.Fatalf("demo response = %+v", got)
	}
	if rr.Header().Get(DemoHeader) != DemoReasonUpstreamRateLimited {
		t.Fatalf("%s = %q", DemoHeader, rr.Header().Get(DemoHeader))
	}
}

func TestHandlerDemoUsesRequestFallback(t *testing.T) {
	provider := &fakeProvider{res: providerResponse(http.StatusTooManyRequests, "")}
	h := newTestHandler(t, Config{Provider: provider})

	req := validRequest()
	req.DemoFallback = ptr("/custom-demo.mp4")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, Path, swapBody(t, req)))

	if got := decodeJSON[DemoResponse](t, rr); got.URL != "/custom-demo.mp4" {
		t.Fatalf("url = %q, want request fallback", got.URL)
	}
}

func TestHandlerRelaysUpstreamFailures(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound, http.StatusInternalServerError, http.StatusServiceUnavailable, 599} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			body := `{"detail":"provider said no"}`
			provider := &fakeProvider{res: providerResponse(status, body)}
			h := newTestHandler(t, Config{Provider: provider})

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, Path, swapBody(t, validRequest())))

			if rr.Code != status {
				t.Fatalf("status = %d, want %d", rr.Code, status)
			}
			if got := decodeJSON[ErrorResponse](t, rr); got.Error != body {
				t.Fatalf("error = %q, want %q", got.Error, body)
			}
		})
	}
}

func TestHandlerReturns500OnProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("dial tcp: connection refused")}
	h := newTestHandler(t, Config{Provider: provider})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, Path, swapBody(t, validRequest())))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	got := decodeJSON[ErrorResponse](t, rr)
	if got.Error != "internal server error" {
		t.Fatalf("error = %q", got.Error)
	}
	if strings.Contains(rr.Body.String(), "connection refused") {
		t.Fatal("internal detail leaked to the client")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestHandlerReturns500WhenUpstreamErrorBodyUnreadable(t *testing.T) {
	provider := &fakeProvider{res: &ProviderResponse{
		StatusCode: http.StatusBadGateway,
		Body:       io.NopCloser(failingReader{}),
	}}
	h := newTestHandler(t, Config{Provider: provider})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, Path, swapBody(t, validRequest())))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
}

func TestHandlerRejectsInvalidBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"sourceBase64":`},
		{name: "missing image", body: `{"videoUrl":"/clip.mp4"}`},
		{name: "missing video", body: `{"sourceBase64":"eA=="}`},
		{name: "wrong type", body: `{"sourceBase64":"eA==","videoUrl":"/clip.mp4","ageStart":"ten"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{}
			h := newTestHandler(t, Config{Provider: provider})

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, Path, strings.NewReader(tt.body)))

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			if provider.calls != 0 {
				t.Fatal("provider should not be called")
			}
		})
	}
}

func TestHandlerRejectsOversizeBody(t *testing.T) {
	provider := &fakeProvider{}
	h := newTestHandler(t, Config{Provider: provider, MaxBodyBytes: 64})

	req := validRequest()
	req.SourceBase64 = strings.Repeat("A", 256)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, Path, swapBody(t, req)))

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rr.Code)
	}
	if provider.calls != 0 {
		t.Fatal("provider should not be called")
	}
}

func TestHandlerDefaultBodyLimitIsTenMegabytes(t *testing.T) {
	h := newTestHandler(t, Config{Provider: &fakeProvider{}})
	if h.maxBodyBytes != 10*1024*1024 {
		t.Fatalf("maxBodyBytes = %d", h.maxBodyBytes)
	}
}

func TestHandlerLocalLimiterServesDemoWithoutProvider(t *testing.T) {
	provider := &fakeProvider{res: providerResponse(http.StatusOK, "video")}
	h := newTestHandler(t, Config{Provider: provider, Limiter: NewLimiter(1, 1)})

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodPost, Path, swapBody(t, validRequest())))
	if first.Code != http.StatusOK || first.Header().Get("Content-Type") != "video/mp4" {
		t.Fatalf("first request: status %d content-type %q", first.Code, first.Header().Get("Content-Type"))
	}

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodPost, Path, swapBody(t, validRequest())))
	if got := decodeJSON[DemoResponse](t, second); !got.Demo || got.URL != DefaultDemoFallback {
		t.Fatalf("second request demo = %+v", got)
	}
	if second.Header().Get(DemoHeader) != DemoReasonLocalRateLimited {
		t.Fatalf("%s = %q", DemoHeader, second.Header().Get(DemoHeader))
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.calls)
	}
}

func TestNewLimiterDisabled(t *testing.T) {
	if NewLimiter(0, 5) != nil {
		t.Fatal("expected nil limiter when rate is zero")
	}
	if l := NewLimiter(60, 0); l == nil || l.Burst() != 1 {
		t.Fatalf("expected burst defaulted to 1, got %v", l)
	}
}

func TestHandlerResolvesRelativeVideoURL(t *testing.T) {
	provider := &fakeProvider{res: providerResponse(http.StatusOK, "video")}
	h := newTestHandler(t, Config{Provider: provider, AssetBaseURL: "https://cultface.example"})

	req := validRequest()
	req.VideoURL = "/Brad Pitt.mp4"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, Path, swapBody(t, req)))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if provider.payload.Target != "https://cultface.example/Brad%20Pitt.mp4" {
		t.Fatalf("target = %q", provider.payload.Target)
	}
}

func TestHandlerResolvesCatalogSceneAgainstRequestOrigin(t *testing.T) {
	scene, ok := catalog.DefaultCatalog().Default()
	if !ok {
		t.Fatal("default catalog is empty")
	}
	tests := []struct {
		name      string
		forwarded string
		want      string
	}{
		{name: "plain http", want: "http://cultface.example/Brad%20Pitt.mp4"},
		{name: "behind tls proxy", forwarded: "https", want: "https://cultface.example/Brad%20Pitt.mp4"},
		{name: "proxy chain", forwarded: "HTTPS, http", want: "https://cultface.example/Brad%20Pitt.mp4"},
		{name: "bogus proto ignored", forwarded: "gopher", want: "http://cultface.example/Brad%20Pitt.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{res: providerResponse(http.StatusOK, "video")}
			h := newTestHandler(t, Config{Provider: provider})

			req := validRequest()
			req.VideoURL = scene.VideoURL
			httpReq := httptest.NewRequest(http.MethodPost, "http://cultface.example"+Path, swapBody(t, req))
			if tt.forwarded != "" {
				httpReq.Header.Set("X-Forwarded-Proto", tt.forwarded)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httpReq)

			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rr.Code)
			}
			if provider.payload.Target != tt.want {
				t.Fatalf("target = %q, want %q", provider.payload.Target, tt.want)
			}
		})
	}
}

func TestHandlerRejectsSchemeRelativeVideoURL(t *testing.T) {
	provider := &fakeProvider{}
	h := newTestHandler(t, Config{Provider: provider})

	req := validRequest()
	req.VideoURL = "//elsewhere.example/clip.mp4"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, Path, swapBody(t, req)))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if provider.calls != 0 {
		t.Fatalf("provider called %d times", provider.calls)
	}
}
