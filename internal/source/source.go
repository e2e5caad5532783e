// Package source loads the rows behind a table's dataset.
//
// Three backends exist: the portal's REST API, a PostgreSQL database, and
// mock data embedded in the binary for local development. Open picks one
// from configuration.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/JonMunkholm/ibportal/internal/core"
	"github.com/JonMunkholm/ibportal/internal/logging"
	"github.com/JonMunkholm/ibportal/internal/metrics"
)

// ErrDatasetNotFound is returned when a backend has no data for a dataset.
var ErrDatasetNotFound = errors.New("dataset not found")

// Source fetches all rows of a dataset.
type Source interface {
	Rows(ctx context.Context, dataset string) ([]core.Row, error)
	Name() string
	Close()
}

// Options selects and configures a backend.
type Options struct {
	APIBaseURL string
	APIToken   string
	APITimeout time.Duration

	DatabaseURL     string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Open returns the API source when a base URL is configured, else the
// Postgres source when a database URL is configured, else the embedded
// mock data.
func Open(ctx context.Context, opts Options) (Source, error) {
	var (
		src Source
		err error
	)
	switch {
	case opts.APIBaseURL != "":
		src, err = NewAPI(opts.APIBaseURL, opts.APIToken, opts.APITimeout)
	case opts.DatabaseURL != "":
		src, err = NewPostgres(ctx, opts)
	default:
		src = NewStatic()
	}
	if err != nil {
		return nil, err
	}
	slog.Info("row source selected", "source", src.Name())
	return Instrument(src), nil
}

// decodeRows decodes a JSON array of objects, keeping numbers as
// json.Number so large amounts survive without float rounding.
func decodeRows(r io.Reader) ([]core.Row, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	rows := make([]core.Row, len(raw))
	for i, m := range raw {
		rows[i] = core.Row(m)
	}
	return rows, nil
}

type instrumented struct {
	Source
}

// Instrument records fetch counts and logs failures.
func Instrument(src Source) Source {
	return instrumented{src}
}

func (s instrumented) Rows(ctx context.Context, dataset string) ([]core.Row, error) {
	start := time.Now()
	rows, err := s.Source.Rows(ctx, dataset)
	metrics.SourceFetches.WithLabelValues(s.Name(), metrics.Result(err)).Inc()

	logger := logging.WithFields(ctx, "source", s.Name(), "dataset", dataset)
	if err != nil {
		logger.Warn("fetch rows failed", "error", err)
		return nil, fmt.Errorf("fetch %s: %w", dataset, err)
	}
	logger.Debug("fetched rows", "rows", len(rows), "duration", time.Since(start))
	return rows, nil
}
