package store

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestParseMySQLDSN(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		wantErr bool
	}{
		{name: "full dsn", dsn: "user:pass@tcp(127.0.0.1:3306)/taskboard", wantErr: false},
		{name: "missing database", dsn: "user:pass@tcp(127.0.0.1:3306)/", wantErr: true},
		{name: "malformed", dsn: "user:pass@tcp(127.0.0.1:3306", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseMySQLDSN(tt.dsn)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !cfg.ParseTime {
				t.Error("expected parseTime to be enabled")
			}
			if cfg.Loc != time.UTC {
				t.Errorf("expected UTC location, got %v", cfg.Loc)
			}
		})
	}
}

// Runs only when TASKBOARD_TEST_MYSQL_DSN points at a disposable database.
func TestMySQLBackend_Integration(t *testing.T) {
	dsn := os.Getenv("TASKBOARD_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TASKBOARD_TEST_MYSQL_DSN not set")
	}
	ctx := context.Background()

	backend, err := NewMySQLBackend(ctx, dsn)
	if err != nil {
		t.Fatalf("NewMySQLBackend failed: %v", err)
	}
	t.Cleanup(func() { backend.Close() })

	store := NewTaskStore(backend, WithKey("taskboard_integration_test"))
	t.Cleanup(func() { backend.RemoveItem(ctx, "taskboard_integration_test") })

	store.SaveAll(ctx, nil)
	store.Add(ctx, makeTask(t, "1", map[string]any{"title": "A"}))
	tasks := store.Update(ctx, "1", makeTask(t, "1", map[string]any{"status": "done"}))

	if len(tasks) != 1 || tasks[0].Title() != "A" || tasks[0].Status() != "done" {
		t.Errorf("unexpected tasks: %v", tasks)
	}
}
