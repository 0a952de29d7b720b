package faceswap

import (
	"errors"
	"testing"

	apperrors "github.com/louisbranch/cultface/internal/platform/errors"
)

func ptr[T any](v T) *T { return &v }

func TestResolveAppliesDefaults(t *testing.T) {
	got := SwapRequest{SourceBase64: "aGVsbG8=", VideoURL: "https://cdn.example/clip.mp4"}.Resolve("")

	want := SwapOptions{
		SourceBase64:      "aGVsbG8=",
		VideoURL:          "https://cdn.example/clip.mp4",
		PixelBoost:        "384x384",
		FaceSelectorMode:  "reference",
		FaceSelectorOrder: "large-small",
		AgeStart:          0,
		AgeEnd:            100,
		FaceDistance:      0.6,
		FrameNumber:       1,
		DemoFallback:      "/demo.mp4",
	}
	if got != want {
		t.Fatalf("Resolve() = %+v, want %+v", got, want)
	}
}

func TestResolveUsesConfiguredDemoFallback(t *testing.T) {
	got := SwapRequest{}.Resolve("https://cdn.example/demo.mp4")
	if got.DemoFallback != "https://cdn.example/demo.mp4" {
		t.Fatalf("DemoFallback = %q", got.DemoFallback)
	}
}

func TestResolveKeepsExplicitValues(t *testing.T) {
	got := SwapRequest{
		PixelBoost:        ptr("512x512"),
		FaceSelectorMode:  ptr("one"),
		FaceSelectorOrder: ptr("left-right"),
		AgeStart:          ptr(18),
		AgeEnd:            ptr(0),
		FaceDistance:      ptr(0.0),
		FrameNumber:       ptr(42),
		DemoFallback:      ptr("/other.mp4"),
	}.Resolve("/configured.mp4")

	if got.PixelBoost != "512x512" || got.FaceSelectorMode != "one" || got.FaceSelectorOrder != "left-right" {
		t.Fatalf("unexpected string options: %+v", got)
	}
	if got.AgeStart != 18 || got.AgeEnd != 0 || got.FaceDistance != 0 || got.FrameNumber != 42 {
		t.Fatalf("explicit numeric values not kept: %+v", got)
	}
	if got.DemoFallback != "/other.mp4" {
		t.Fatalf("DemoFallback = %q, want request override", got.DemoFallback)
	}
}

func TestResolveTreatsBlankStringsAsUnset(t *testing.T) {
	got := SwapRequest{PixelBoost: ptr("  "), DemoFallback: ptr("")}.Resolve("/configured.mp4")
	if got.PixelBoost != DefaultPixelBoost {
		t.Fatalf("PixelBoost = %q", got.PixelBoost)
	}
	if got.DemoFallback != "/configured.mp4" {
		t.Fatalf("DemoFallback = %q", got.DemoFallback)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     SwapRequest
		wantErr bool
	}{
		{name: "complete", req: SwapRequest{SourceBase64: "eA==", VideoURL: "/clip.mp4"}},
		{name: "missing image", req: SwapRequest{VideoURL: "/clip.mp4"}, wantErr: true},
		{name: "missing video", req: SwapRequest{SourceBase64: "eA==", VideoURL: " "}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %t", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperrors.New(apperrors.CodeInvalidRequest, "")) {
				t.Fatalf("expected invalid request code, got %v", err)
			}
		})
	}
}

func TestNewProviderPayloadForcesRawOutput(t *testing.T) {
	opts := SwapRequest{SourceBase64: "eA==", VideoURL: "/clip.mp4"}.Resolve("")
	payload := NewProviderPayload(opts)

	if payload.Base64 {
		t.Fatal("expected base64 output disabled")
	}
	if payload.SourceImage != "eA==" || payload.Target != "/clip.mp4" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.FaceSelectorAgeEnd != 100 || payload.ReferenceFaceDistance != 0.6 || payload.ReferenceFrameNumber != 1 {
		t.Fatalf("defaults not mapped: %+v", payload)
	}
}
