package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/ibportal/internal/config"
	"github.com/JonMunkholm/ibportal/internal/core"
	_ "github.com/JonMunkholm/ibportal/internal/core/tables" // Register all tables
	"github.com/JonMunkholm/ibportal/internal/export"
	"github.com/JonMunkholm/ibportal/internal/logging"
	"github.com/JonMunkholm/ibportal/internal/source"
	"github.com/JonMunkholm/ibportal/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()
	src, err := source.Open(ctx, source.Options{
		APIBaseURL:      cfg.API.BaseURL,
		APIToken:        cfg.API.Token,
		APITimeout:      cfg.API.Timeout,
		DatabaseURL:     cfg.Database.URL,
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		slog.Error("failed to open row source", "source", cfg.SourceKind(), "error", err)
		os.Exit(1)
	}
	defer src.Close()

	slog.Info("tables registered",
		"count", core.TableCount(),
		"groups", len(core.Groups()),
	)
	for _, group := range core.Groups() {
		slog.Debug("table group", "group", group, "tables", len(core.ByGroup(group)))
	}

	exporter := export.New(export.Config{
		SpreadsheetEnabled: cfg.Export.SpreadsheetEnabled,
		PDFEnabled:         cfg.Export.PDFEnabled,
		PDFTableLayout:     cfg.Export.PDFTableLayout,
		PDFFontPath:        cfg.Export.PDFFontPath,
		PDFMaxTableColumns: cfg.Export.PDFMaxTableColumns,
		MaxConcurrent:      cfg.Export.MaxConcurrent,
		MaxWait:            cfg.Export.MaxWait,
	})

	server := web.NewServer(cfg, src, exporter)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
