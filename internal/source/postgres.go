package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/ibportal/internal/core"
)

// undefinedTable is the SQLSTATE for a missing relation.
const undefinedTable = "42P01"

// Postgres reads a dataset "schema/table" as SELECT * FROM "schema"."table".
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects a pool and verifies it with a ping.
func NewPostgres(ctx context.Context, opts Options) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(opts.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	if opts.MaxConnLifetime > 0 {
		cfg.MaxConnLifetime = opts.MaxConnLifetime
	}
	if opts.MaxConnIdleTime > 0 {
		cfg.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Close() { p.pool.Close() }

// datasetIdent maps "ib/commissions" to the quoted identifier
// "ib"."commissions".
func datasetIdent(dataset string) (string, error) {
	parts := strings.Split(dataset, "/")
	if len(parts) > 2 {
		return "", fmt.Errorf("%w: %q", ErrDatasetNotFound, dataset)
	}
	for _, p := range parts {
		if p == "" {
			return "", fmt.Errorf("%w: %q", ErrDatasetNotFound, dataset)
		}
	}
	return pgx.Identifier(parts).Sanitize(), nil
}

func (p *Postgres) Rows(ctx context.Context, dataset string) ([]core.Row, error) {
	ident, err := datasetIdent(dataset)
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, "SELECT * FROM "+ident)
	if err != nil {
		return nil, mapPgError(dataset, err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, mapPgError(dataset, err)
	}

	out := make([]core.Row, len(maps))
	for i, m := range maps {
		out[i] = core.Row(m)
	}
	return out, nil
}

func mapPgError(dataset string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return fmt.Errorf("%w: %q", ErrDatasetNotFound, dataset)
	}
	return fmt.Errorf("query %s: %w", dataset, err)
}
