package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/klauspost/compress/zstd"

	"taskboard/internal/handlers"
	"taskboard/internal/models"
	"taskboard/internal/static"
	"taskboard/internal/store"
)

func setupTestRouter(t *testing.T) http.Handler {
	t.Helper()
	s := store.NewTaskStore(store.NewMemoryBackend())
	h := handlers.New(s, nil, nil)

	assets := fstest.MapFS{
		"app.css": {Data: []byte("body { margin: 0; }")},
	}
	dist := fstest.MapFS{
		"index.html":  {Data: []byte("<!doctype html><title>taskboard</title>")},
		"js/app.js":   {Data: []byte("console.log('ready')")},
		"favicon.ico": {Data: []byte{0, 0, 1, 0}},
	}

	return NewRouter(h, Options{
		Assets:   assets,
		Fallback: static.New(dist, nil),
	})
}

func do(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	router := setupTestRouter(t)

	rec := do(t, router, "GET", "/health", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

func TestRouter_TaskLifecycle(t *testing.T) {
	router := setupTestRouter(t)

	rec := do(t, router, "POST", "/api/tasks", `{"id":"t1","title":"Plan"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = do(t, router, "PATCH", "/api/tasks/t1", `{"status":"in-progress"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = do(t, router, "GET", "/api/tasks/t1", "")
	var task models.Task
	if err := json.Unmarshal(rec.Body.Bytes(), &task); err != nil {
		t.Fatalf("failed to decode task: %v", err)
	}
	if task.Status() != models.StatusInProgress || task.Title() != "Plan" {
		t.Errorf("unexpected task %v", task)
	}

	rec = do(t, router, "DELETE", "/api/tasks/t1", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("delete: unexpected response %d %q", rec.Code, rec.Body.String())
	}

	rec = do(t, router, "GET", "/api/tasks/t1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected %d after delete, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestRouter_Pages(t *testing.T) {
	router := setupTestRouter(t)

	for _, path := range []string{"/", "/stats", "/about"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, router, "GET", path, "")
			if rec.Code != http.StatusOK {
				t.Errorf("expected %d, got %d", http.StatusOK, rec.Code)
			}
		})
	}
}

func TestRouter_FormPostRedirects(t *testing.T) {
	router := setupTestRouter(t)

	req := httptest.NewRequest("POST", "/tasks", strings.NewReader("title=Buy+milk"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %q", loc)
	}
}

func TestRouter_StaticFallback(t *testing.T) {
	router := setupTestRouter(t)

	tests := []struct {
		path        string
		wantCode    int
		contentType string
		body        string
	}{
		{path: "/index.html", wantCode: http.StatusOK, contentType: "text/html", body: "<!doctype html><title>taskboard</title>"},
		{path: "/js/app.js", wantCode: http.StatusOK, contentType: "application/javascript", body: "console.log('ready')"},
		{path: "/favicon.ico", wantCode: http.StatusOK, contentType: "image/x-icon"},
		{path: "/missing.png", wantCode: http.StatusNotFound, body: "file not found"},
		{path: "/js", wantCode: http.StatusInternalServerError, body: "server error"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(t, router, "GET", tt.path, "")
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.contentType != "" && rec.Header().Get("Content-Type") != tt.contentType {
				t.Errorf("expected content type %q, got %q", tt.contentType, rec.Header().Get("Content-Type"))
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("expected body %q, got %q", tt.body, rec.Body.String())
			}
		})
	}
}

func TestRouter_StaticFallbackIsReadOnly(t *testing.T) {
	router := setupTestRouter(t)

	rec := do(t, router, "POST", "/js/app.js", "x")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
	if strings.Contains(rec.Body.String(), "ready") {
		t.Error("expected file contents not to be served")
	}
}

func TestRouter_Assets(t *testing.T) {
	router := setupTestRouter(t)

	rec := do(t, router, "GET", "/static/app.css", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "margin") {
		t.Errorf("unexpected asset body %q", rec.Body.String())
	}
}

func TestRouter_ZstdEncoding(t *testing.T) {
	router := setupTestRouter(t)
	do(t, router, "POST", "/api/tasks", `{"id":"z1","title":"`+strings.Repeat("compressible ", 100)+`"}`)

	req := httptest.NewRequest("GET", "/api/tasks", nil)
	req.Header.Set("Accept-Encoding", "zstd, gzip")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Encoding"); got != "zstd" {
		t.Fatalf("expected zstd encoding, got %q", got)
	}

	dec, err := zstd.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("failed to create zstd reader: %v", err)
	}
	defer dec.Close()

	var tasks []models.Task
	if err := json.NewDecoder(dec).Decode(&tasks); err != nil {
		t.Fatalf("failed to decode compressed body: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID() != "z1" {
		t.Errorf("unexpected tasks %v", tasks)
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, "127.0.0.1:0", http.NotFoundHandler(), logger)
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
