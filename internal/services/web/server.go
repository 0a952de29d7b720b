package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/louisbranch/cultface/internal/platform/assets/catalog"
	apperrors "github.com/louisbranch/cultface/internal/platform/errors"
	"github.com/louisbranch/cultface/internal/platform/timeouts"
	"github.com/louisbranch/cultface/internal/services/faceswap"
	"github.com/louisbranch/cultface/internal/services/web/i18n"
	"github.com/louisbranch/cultface/internal/services/web/static"
	webtemplates "github.com/louisbranch/cultface/internal/services/web/templates"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config defines the inputs for the web server.
type Config struct {
	HTTPAddr string
	// FaceSwap serves POST /api/face-swap.
	FaceSwap http.Handler
	// Catalog lists the selectable scenes; nil means the built-in catalog.
	Catalog *catalog.Catalog
	// PublicDir holds clips, thumbnails, and the demo video. Empty disables
	// asset serving.
	PublicDir         string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the CULTFACE HTTP process.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
}

type handler struct {
	faceSwap http.Handler
	catalog  *catalog.Catalog
	public   fs.FS
	static   fs.FS
}

// NewHandler builds the route table.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.FaceSwap == nil {
		return nil, errors.New("face-swap handler is required")
	}
	scenes := cfg.Catalog
	if scenes == nil {
		scenes = catalog.DefaultCatalog()
	}
	h := &handler{
		faceSwap: cfg.FaceSwap,
		catalog:  scenes,
		static:   static.FS,
	}
	if dir := strings.TrimSpace(cfg.PublicDir); dir != "" {
		h.public = os.DirFS(dir)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	// The proxy answers every method itself so non-POST gets its JSON 405.
	mux.Handle(faceswap.Path, cfg.FaceSwap)
	mux.HandleFunc("GET /scenes.json", h.handleScenes)
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.Handle("/static/", http.StripPrefix("/static", h.fileHandler(h.static)))
	mux.Handle("/", h.fileHandler(h.public))
	return mux, nil
}

func (h *handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := pageContext(w, r)
	view := webtemplates.SceneView{
		Scenes:    h.catalog.Scenes(),
		Endpoint:  faceswap.Path,
		Languages: webtemplates.LanguageOptions(page),
	}
	templ.Handler(webtemplates.ScenePage(page, view)).ServeHTTP(w, r)
}

func (h *handler) handleScenes(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(h.catalog.Scenes())
}

// fileHandler serves regular files from fsys. Scene clips and thumbnails
// live at the public root ("/Brad Pitt.mp4"), as does the demo fallback.
// Directories and missing files get the error page.
func (h *handler) fileHandler(fsys fs.FS) http.Handler {
	var files http.Handler
	if fsys != nil {
		files = http.FileServerFS(fsys)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			h.renderError(w, r, apperrors.New(apperrors.CodeMethodNotAllowed, "method not allowed"))
			return
		}
		if files == nil || !isFile(fsys, r.URL.Path) {
			h.renderError(w, r, apperrors.New(apperrors.CodeNotFound, "asset not found"))
			return
		}
		files.ServeHTTP(w, r)
	})
}

func isFile(fsys fs.FS, urlPath string) bool {
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		return false
	}
	info, err := fs.Stat(fsys, name)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// renderError answers with the error page at the status the error's code
// maps to.
func (h *handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.GetCode(err).HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Printf("web: %s %s: %v", r.Method, r.URL.Path, err)
	}
	page := pageContext(w, r)
	templ.Handler(webtemplates.ErrorPage(page, status), templ.WithStatus(status)).ServeHTTP(w, r)
}

func pageContext(w http.ResponseWriter, r *http.Request) webtemplates.PageContext {
	tag, persist := i18n.ResolveTag(r)
	if persist {
		i18n.SetLanguageCookie(w, tag)
	}
	return webtemplates.NewPageContext(tag)
}

// NewServer builds the HTTP server.
func NewServer(cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = timeouts.Shutdown
	}
	if dir := strings.TrimSpace(cfg.PublicDir); dir != "" {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			log.Printf("web: public dir %q is not readable, assets will 404", dir)
		}
	}
	mux, err := NewHandler(cfg)
	if err != nil {
		return nil, err
	}

	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: cfg.ShutdownTimeout,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           otelhttp.NewHandler(mux, "cultface"),
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
	}, nil
}

// Run builds the server and serves until ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	server, err := NewServer(cfg)
	if err != nil {
		return fmt.Errorf("init web server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve web: %w", err)
	}
	return nil
}

// ListenAndServe serves HTTP and shuts down gracefully when ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("web server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases the listener if it is still open.
func (s *Server) Close() {
	if s == nil || s.httpServer == nil {
		return
	}
	if err := s.httpServer.Close(); err != nil {
		log.Printf("close web server: %v", err)
	}
}
