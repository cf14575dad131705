// Package static serves the built front-end files from a fixed directory.
package static

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

// DefaultContentType is used for extensions missing from the table.
const DefaultContentType = "application/octet-stream"

var contentTypes = map[string]string{
	".html": "text/html",
	".js":   "application/javascript",
	".css":  "text/css",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
}

// ContentType returns the content type for a file name based on its extension.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return DefaultContentType
}

// Server serves files from root. "/" serves index.html.
type Server struct {
	root   fs.FS
	logger *slog.Logger
}

// New creates a Server over root. A nil logger discards records.
func New(root fs.FS, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{root: root, logger: logger}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte("method not allowed"))
		return
	}

	name := "index.html"
	if r.URL.Path != "/" {
		name = strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	}

	if !fs.ValidPath(name) {
		notFound(w)
		return
	}

	content, err := fs.ReadFile(s.root, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			notFound(w)
			return
		}
		s.logger.Error("failed to read static file", "path", name, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("server error"))
		return
	}

	w.Header().Set("Content-Type", ContentType(name))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(content)
	}
}

func notFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("file not found"))
}
