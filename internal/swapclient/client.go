// Package swapclient is the Go counterpart of the browser dispatcher: it
// encodes a portrait, posts one face-swap request, and classifies the answer
// by content type.
package swapclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/louisbranch/cultface/internal/platform/assets/catalog"
	"github.com/louisbranch/cultface/internal/platform/timeouts"
	"github.com/louisbranch/cultface/internal/services/faceswap"
)

// Kind classifies a face-swap answer.
type Kind int

const (
	KindVideo Kind = iota + 1
	KindDemo
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindDemo:
		return "demo"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is one of a swapped video, a demo fallback, or an error answer.
type Result struct {
	Kind Kind
	// Video holds the swapped clip for KindVideo.
	Video []byte
	// DemoURL is the fallback clip for KindDemo, absolute against the server.
	DemoURL string
	// Status and Message describe KindError.
	Status  int
	Message string
}

// maxVideoBytes caps a returned video held in memory.
var maxVideoBytes int64 = 512 << 20

// ErrVideoTooLarge reports a video answer above the in-memory cap.
var ErrVideoTooLarge = errors.New("video exceeds size limit")

// Client talks to a CULTFACE server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a client for the server at baseURL.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("server url is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeouts.ClientRequest}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}, nil
}

// EncodeImage reads an image and returns its standard base64 encoding, the
// form expected in sourceBase64.
func EncodeImage(r io.Reader) (string, error) {
	if r == nil {
		return "", errors.New("image reader is required")
	}
	var b strings.Builder
	enc := base64.NewEncoder(base64.StdEncoding, &b)
	n, err := io.Copy(enc, r)
	if err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	if n == 0 {
		return "", errors.New("image is empty")
	}
	return b.String(), nil
}

// Swap posts req and classifies the response. Transport failures are
// returned as errors; server-side failures come back as KindError results.
func (c *Client) Swap(ctx context.Context, req faceswap.SwapRequest) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("marshal swap request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+faceswap.Path, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build swap request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("swap request failed: %w", err)
	}
	defer res.Body.Close()
	return c.classify(res)
}

func (c *Client) classify(res *http.Response) (Result, error) {
	mediaType, _, _ := mime.ParseMediaType(res.Header.Get("Content-Type"))
	mediaType = strings.ToLower(mediaType)

	switch {
	case mediaType == "application/json":
		var payload struct {
			Demo  bool   `json:"demo"`
			URL   string `json:"url"`
			Error string `json:"error"`
		}
		if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
			return Result{}, fmt.Errorf("decode swap response: %w", err)
		}
		if payload.Demo {
			demoURL, err := catalog.ResolveURL(c.baseURL, payload.URL)
			if err != nil {
				return Result{}, fmt.Errorf("resolve demo url: %w", err)
			}
			return Result{Kind: KindDemo, DemoURL: demoURL}, nil
		}
		message := payload.Error
		if message == "" {
			message = "API error"
		}
		return Result{Kind: KindError, Status: res.StatusCode, Message: message}, nil
	case strings.HasPrefix(mediaType, "video/"):
		video, err := io.ReadAll(io.LimitReader(res.Body, maxVideoBytes+1))
		if err != nil {
			return Result{}, fmt.Errorf("read video: %w", err)
		}
		if int64(len(video)) > maxVideoBytes {
			return Result{}, fmt.Errorf("%w: more than %d bytes", ErrVideoTooLarge, maxVideoBytes)
		}
		return Result{Kind: KindVideo, Video: video}, nil
	default:
		return Result{
			Kind:    KindError,
			Status:  res.StatusCode,
			Message: fmt.Sprintf("unexpected server response: %s", mediaType),
		}, nil
	}
}

// Download copies the resource at rawURL into w. Relative URLs resolve
// against the server.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	target, err := catalog.ResolveURL(c.baseURL, rawURL)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("build download request: %w", err)
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download %s: %w", target, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download %s: status %d", target, res.StatusCode)
	}
	n, err := io.Copy(w, res.Body)
	if err != nil {
		return n, fmt.Errorf("download %s: %w", target, err)
	}
	return n, nil
}
