// Package catalog holds the fixed set of movie scenes offered for swapping.
package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrSceneNotFound = errors.New("scene is not in the catalog")
	ErrSceneID       = errors.New("scene id is required")
)

// Scene is one selectable clip.
type Scene struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Actor        string `json:"actor"`
	VideoURL     string `json:"videoUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// Catalog is an ordered scene list with id lookup.
type Catalog struct {
	scenes []Scene
	byID   map[string]int
}

// New builds a catalog, rejecting blank or duplicate ids.
func New(scenes []Scene) (*Catalog, error) {
	c := &Catalog{
		scenes: make([]Scene, 0, len(scenes)),
		byID:   make(map[string]int, len(scenes)),
	}
	for _, scene := range scenes {
		id := normalizeID(scene.ID)
		if id == "" {
			return nil, ErrSceneID
		}
		if _, exists := c.byID[id]; exists {
			return nil, fmt.Errorf("duplicate scene id %q", id)
		}
		scene.ID = id
		c.byID[id] = len(c.scenes)
		c.scenes = append(c.scenes, scene)
	}
	return c, nil
}

// Scenes returns the scenes in display order.
func (c *Catalog) Scenes() []Scene {
	if c == nil {
		return nil
	}
	out := make([]Scene, len(c.scenes))
	copy(out, c.scenes)
	return out
}

// Default returns the first scene, which the picker preselects.
func (c *Catalog) Default() (Scene, bool) {
	if c == nil || len(c.scenes) == 0 {
		return Scene{}, false
	}
	return c.scenes[0], true
}

// Lookup finds a scene by id, ignoring case and surrounding whitespace.
func (c *Catalog) Lookup(id string) (Scene, error) {
	id = normalizeID(id)
	if id == "" {
		return Scene{}, ErrSceneID
	}
	if c == nil {
		return Scene{}, ErrSceneNotFound
	}
	idx, ok := c.byID[id]
	if !ok {
		return Scene{}, fmt.Errorf("%w: %s", ErrSceneNotFound, id)
	}
	return c.scenes[idx], nil
}

// ResolveURL makes a site-relative asset path absolute against base.
// Absolute URLs and an empty base leave raw untouched. Spaces in scene file
// names are escaped. Scheme-relative references ("//host/clip.mp4") are
// rejected rather than rebased onto base's scheme.
func ResolveURL(base string, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	base = strings.TrimSpace(base)
	if raw == "" || base == "" {
		return raw, nil
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse asset url: %w", err)
	}
	if ref.IsAbs() {
		return raw, nil
	}
	if ref.Host != "" {
		return "", fmt.Errorf("asset url %q names a host without a scheme", raw)
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse asset base url: %w", err)
	}
	if !baseURL.IsAbs() {
		return "", fmt.Errorf("asset base url %q is not absolute", base)
	}
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}
	ref.Path = strings.TrimPrefix(ref.Path, "/")
	return baseURL.ResolveReference(ref).String(), nil
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
