// Package server wires the HTTP routes and runs the listener.
package server

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/zstd"

	"taskboard/internal/handlers"
)

const compressionLevel = 5

// Options configures the router.
type Options struct {
	// Assets holds the stylesheets and scripts used by the rendered views.
	Assets fs.FS

	// Fallback serves every path no route matches, normally the static
	// front-end bundle.
	Fallback http.Handler
}

// NewRouter builds the chi router for the pages, form posts and JSON API.
func NewRouter(h *handlers.Handlers, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(newCompressor().Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if opts.Assets != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(opts.Assets))))
	}

	// Page routes
	r.Get("/", h.Home)
	r.Get("/stats", h.StatsPage)
	r.Get("/about", h.About)

	// Form routes
	r.Post("/tasks", h.CreateTaskForm)
	r.Post("/tasks/{id}/status", h.UpdateTaskStatusForm)
	r.Post("/tasks/{id}/delete", h.DeleteTaskForm)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/tasks", h.ListTasks)
		r.Put("/tasks", h.ReplaceTasks)
		r.Post("/tasks", h.CreateTask)
		r.Get("/tasks/{id}", h.GetTask)
		r.Patch("/tasks/{id}", h.UpdateTask)
		r.Delete("/tasks/{id}", h.DeleteTask)

		r.Get("/vocabulary", h.Vocabulary)
		r.Get("/stats", h.Stats)
		r.Get("/export", h.Export)
	})

	if opts.Fallback != nil {
		r.NotFound(opts.Fallback.ServeHTTP)
	}

	return r
}

// newCompressor returns chi's compressor with zstd preferred over gzip and
// deflate for clients that accept it.
func newCompressor() *middleware.Compressor {
	c := middleware.NewCompressor(compressionLevel)
	c.SetEncoder("zstd", func(w io.Writer, level int) io.Writer {
		enc, err := zstd.NewWriter(w,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			return nil
		}
		return enc
	})
	return c
}

// Run serves handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
