package faceswap

import (
	"strings"

	apperrors "github.com/louisbranch/cultface/internal/platform/errors"
)

// Defaults applied when a SwapRequest leaves an optional field unset.
const (
	DefaultPixelBoost        = "384x384"
	DefaultFaceSelectorMode  = "reference"
	DefaultFaceSelectorOrder = "large-small"
	DefaultAgeStart          = 0
	DefaultAgeEnd            = 100
	DefaultFaceDistance      = 0.6
	DefaultFrameNumber       = 1
	DefaultDemoFallback      = "/demo.mp4"
)

// SwapRequest is the JSON body accepted by POST /api/face-swap.
//
// Optional fields are pointers so an explicit zero (ageStart: 0) is told apart
// from an absent field. Blank strings count as absent.
type SwapRequest struct {
	SourceBase64      string   `json:"sourceBase64"`
	VideoURL          string   `json:"videoUrl"`
	PixelBoost        *string  `json:"pixelBoost,omitempty"`
	FaceSelectorMode  *string  `json:"faceSelectorMode,omitempty"`
	FaceSelectorOrder *string  `json:"faceSelectorOrder,omitempty"`
	AgeStart          *int     `json:"ageStart,omitempty"`
	AgeEnd            *int     `json:"ageEnd,omitempty"`
	FaceDistance      *float64 `json:"faceDistance,omitempty"`
	FrameNumber       *int     `json:"frameNumber,omitempty"`
	DemoFallback      *string  `json:"demoFallback,omitempty"`
}

// SwapOptions is a SwapRequest with every default filled in.
type SwapOptions struct {
	SourceBase64      string
	VideoURL          string
	PixelBoost        string
	FaceSelectorMode  string
	FaceSelectorOrder string
	AgeStart          int
	AgeEnd            int
	FaceDistance      float64
	FrameNumber       int
	DemoFallback      string
}

// Validate reports missing required fields.
func (r SwapRequest) Validate() error {
	if strings.TrimSpace(r.SourceBase64) == "" {
		return apperrors.New(apperrors.CodeInvalidRequest, "sourceBase64 is required")
	}
	if strings.TrimSpace(r.VideoURL) == "" {
		return apperrors.New(apperrors.CodeInvalidRequest, "videoUrl is required")
	}
	return nil
}

// Resolve fills unset fields with their defaults. demoFallback is the
// server-configured fallback used when the request does not name one; an
// empty value falls back to DefaultDemoFallback.
func (r SwapRequest) Resolve(demoFallback string) SwapOptions {
	if strings.TrimSpace(demoFallback) == "" {
		demoFallback = DefaultDemoFallback
	}
	return SwapOptions{
		SourceBase64:      strings.TrimSpace(r.SourceBase64),
		VideoURL:          strings.TrimSpace(r.VideoURL),
		PixelBoost:        stringOr(r.PixelBoost, DefaultPixelBoost),
		FaceSelectorMode:  stringOr(r.FaceSelectorMode, DefaultFaceSelectorMode),
		FaceSelectorOrder: stringOr(r.FaceSelectorOrder, DefaultFaceSelectorOrder),
		AgeStart:          valueOr(r.AgeStart, DefaultAgeStart),
		AgeEnd:            valueOr(r.AgeEnd, DefaultAgeEnd),
		FaceDistance:      valueOr(r.FaceDistance, DefaultFaceDistance),
		FrameNumber:       valueOr(r.FrameNumber, DefaultFrameNumber),
		DemoFallback:      stringOr(r.DemoFallback, demoFallback),
	}
}

func stringOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

func valueOr[T any](value *T, fallback T) T {
	if value == nil {
		return fallback
	}
	return *value
}
