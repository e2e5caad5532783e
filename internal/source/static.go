package source

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/JonMunkholm/ibportal/internal/core"
)

//go:embed data
var mockData embed.FS

// Static serves datasets from JSON files under a file system, one file per
// dataset at "<dataset>.json". The default file system is the embedded
// mock data.
type Static struct {
	fsys fs.FS
}

// NewStatic returns a Static over the embedded mock data.
func NewStatic() *Static {
	sub, err := fs.Sub(mockData, "data")
	if err != nil {
		panic(err)
	}
	return &Static{fsys: sub}
}

// NewStaticFS returns a Static over fsys.
func NewStaticFS(fsys fs.FS) *Static {
	return &Static{fsys: fsys}
}

func (s *Static) Name() string { return "static" }

func (s *Static) Close() {}

func (s *Static) Rows(ctx context.Context, dataset string) ([]core.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !fs.ValidPath(dataset) {
		return nil, fmt.Errorf("%w: %q", ErrDatasetNotFound, dataset)
	}
	f, err := s.fsys.Open(dataset + ".json")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrDatasetNotFound, dataset)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := decodeRows(f)
	if err != nil {
		return nil, fmt.Errorf("decode response %s: %w", dataset, err)
	}
	return rows, nil
}
