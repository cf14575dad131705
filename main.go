package main

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"taskboard/internal/config"
	"taskboard/internal/handlers"
	"taskboard/internal/server"
	"taskboard/internal/static"
	"taskboard/internal/store"
)

//go:embed templates/*
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath, port, staticDir string

	flagSet := pflag.NewFlagSet("taskboard", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to a YAML, JSON or JSONC config file")
	flagSet.StringVar(&port, "port", "", "port to listen on (overrides config and PORT)")
	flagSet.StringVar(&staticDir, "static-dir", "", "directory of built front-end files")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	// Configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Port = port
	}
	if staticDir != "" {
		cfg.StaticDir = staticDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := cfg.Log.NewLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize store
	backend, storageName, err := openBackend(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer backend.Close()

	s := store.NewTaskStore(
		store.WithQuota(backend, cfg.Storage.QuotaBytes),
		store.WithKey(cfg.Storage.Key),
		store.WithLogger(logger),
	)

	// Parse templates
	tmpl, err := parseTemplates()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	h := handlers.New(s, tmpl, logger)
	h.StorageName = storageName

	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		return fmt.Errorf("failed to open embedded assets: %w", err)
	}

	router := server.NewRouter(h, server.Options{
		Assets:   assets,
		Fallback: static.New(os.DirFS(cfg.StaticDir), logger),
	})

	logger.Info("starting server",
		"url", "http://localhost"+cfg.Addr(),
		"storage", storageName,
		"key", cfg.Storage.Key,
		"static_dir", cfg.StaticDir,
	)
	return server.Run(ctx, cfg.Addr(), router, logger)
}

// openBackend opens the configured persistence backend and describes it for
// the about page.
func openBackend(ctx context.Context, cfg config.StorageConfig) (store.Backend, string, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemoryBackend(), "in-memory (not persisted)", nil

	case config.BackendMySQL:
		mysqlCfg, err := store.ParseMySQLDSN(cfg.DSN)
		if err != nil {
			return nil, "", err
		}
		b, err := store.NewMySQLBackend(ctx, cfg.DSN)
		if err != nil {
			return nil, "", err
		}
		return b, fmt.Sprintf("MySQL database %s at %s", mysqlCfg.DBName, mysqlCfg.Addr), nil

	default:
		// Ensure data directory exists
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, "", fmt.Errorf("failed to create data directory: %w", err)
		}
		b, err := store.NewSQLiteBackend(cfg.Path)
		if err != nil {
			return nil, "", err
		}
		return b, "SQLite file " + cfg.Path, nil
	}
}

func parseTemplates() (*template.Template, error) {
	// Custom template functions
	funcMap := template.FuncMap{
		"dict": func(values ...interface{}) map[string]interface{} {
			if len(values)%2 != 0 {
				return nil
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				dict[key] = values[i+1]
			}
			return dict
		},
	}

	tmpl := template.New("").Funcs(funcMap)

	patterns := []string{
		"templates/*.html",
		"templates/partials/*.html",
	}

	for _, pattern := range patterns {
		matches, err := fs.Glob(templatesFS, pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
		}

		for _, match := range matches {
			content, err := templatesFS.ReadFile(match)
			if err != nil {
				return nil, fmt.Errorf("failed to read template %s: %w", match, err)
			}

			name := filepath.Base(match)
			if _, err := tmpl.New(name).Parse(string(content)); err != nil {
				return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
			}
		}
	}

	return tmpl, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `taskboard serves a task list backed by a single key-value entry.

Settings are read from defaults, the optional --config file, environment
variables (PORT, STATIC_DIR, STORAGE_BACKEND, DB_PATH, MYSQL_DSN,
STORAGE_KEY, STORAGE_QUOTA_BYTES, LOG_LEVEL, LOG_FORMAT) and finally flags.

Usage:
  taskboard [flags]

Flags:
`)
	flagSet.PrintDefaults()
}
