package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"webdeck/internal/preview"
)

// PreviewHandler serves documents from the preview store at /preview/{id}.
//
// The id is the bare handle id, without the preview:// scheme. Released or
// unknown handles answer 404; the browser sees exactly what the pipeline
// rendered, straight out of memory.
type PreviewHandler struct {
	store *preview.Store
}

// NewPreviewHandler creates a handler backed by the given store.
func NewPreviewHandler(store *preview.Store) *PreviewHandler {
	return &PreviewHandler{store: store}
}

// Routes returns the path patterns this handler serves.
func (h *PreviewHandler) Routes() []string {
	return []string{"/preview/"}
}

// ServeHTTP resolves the handle id from the path and writes the document.
func (h *PreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/preview/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	doc, ok := h.store.Resolve(preview.Scheme + id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, doc.Content)
}

// Logging returns middleware that logs one line per request.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}
}

// NewPreviewServer builds an http.Server that serves previews on addr.
func NewPreviewServer(addr string, store *preview.Store, logger *log.Logger) *http.Server {
	router := NewBasicRouter()
	router.Use(Logging(logger))
	router.Handler(NewPreviewHandler(store))

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// PreviewURL converts a preview handle into the URL the local server exposes it at.
func PreviewURL(addr, handle string) string {
	id := strings.TrimPrefix(handle, preview.Scheme)
	return fmt.Sprintf("http://%s/preview/%s", addr, id)
}
