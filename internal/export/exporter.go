package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/ibportal/internal/logging"
	"github.com/JonMunkholm/ibportal/internal/metrics"
)

// Notice shown when a PDF request is served as CSV.
const PDFFallbackNotice = "PDF export is unavailable, so the data was downloaded as CSV instead."

var (
	ErrSpreadsheetUnavailable = errors.New("spreadsheet writer unavailable")
	ErrPDFUnavailable         = errors.New("pdf writer unavailable")
)

// Config selects which writers can load and how PDFs are laid out.
type Config struct {
	SpreadsheetEnabled bool
	PDFEnabled         bool
	PDFTableLayout     bool
	PDFFontPath        string
	PDFMaxTableColumns int
	MaxConcurrent      int
	MaxWait            time.Duration
}

// Result is a rendered export file.
type Result struct {
	Requested   Format // format the caller asked for
	Format      Format // format actually produced
	Filename    string
	ContentType string
	Data        []byte
	Notice      string // set when Format differs from Requested
}

// Exporter owns the process-wide writer capabilities.
type Exporter struct {
	pdf         *Lazy[*PDFWriter]
	spreadsheet *Lazy[*SpreadsheetWriter]
	limiter     *Limiter
	now         func() time.Time
}

// Option customizes an Exporter.
type Option func(*Exporter)

// WithClock replaces time.Now for file names and PDF stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// WithPDFLoader replaces the PDF capability loader.
func WithPDFLoader(load func(context.Context) (*PDFWriter, error)) Option {
	return func(e *Exporter) { e.pdf = NewLazy("pdf", load) }
}

// WithSpreadsheetLoader replaces the spreadsheet capability loader.
func WithSpreadsheetLoader(load func(context.Context) (*SpreadsheetWriter, error)) Option {
	return func(e *Exporter) { e.spreadsheet = NewLazy("xlsx", load) }
}

// New builds an Exporter. Nothing is loaded until the first export.
func New(cfg Config, opts ...Option) *Exporter {
	e := &Exporter{
		pdf:         NewLazy("pdf", LoadPDFWriter(cfg)),
		spreadsheet: NewLazy("xlsx", LoadSpreadsheetWriter(cfg)),
		limiter:     NewLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export renders g in format f.
//
// CSV never fails. A PDF whose writer cannot load or render is replaced by
// CSV with Result.Notice set. A spreadsheet whose writer cannot load fails
// with an error wrapping ErrSpreadsheetUnavailable.
func (e *Exporter) Export(ctx context.Context, f Format, g Grid) (*Result, error) {
	if err := e.limiter.Acquire(ctx); err != nil {
		metrics.ExportsTotal.WithLabelValues(string(f), "error").Inc()
		return nil, err
	}
	defer e.limiter.Release()

	start := time.Now()
	defer func() {
		metrics.ExportDuration.WithLabelValues(string(f)).Observe(time.Since(start).Seconds())
	}()

	res, err := e.render(ctx, f, g)
	switch {
	case err != nil:
		metrics.ExportsTotal.WithLabelValues(string(f), "error").Inc()
	case res.Notice != "":
		metrics.ExportsTotal.WithLabelValues(string(f), "fallback").Inc()
	default:
		metrics.ExportsTotal.WithLabelValues(string(f), "ok").Inc()
	}
	return res, err
}

func (e *Exporter) render(ctx context.Context, f Format, g Grid) (*Result, error) {
	now := e.now()
	logger := logging.WithFields(ctx, "format", f, "title", g.Title, "rows", len(g.Rows))

	switch f {
	case FormatCSV:
		return e.result(f, f, g.Title, EncodeCSV(g), now), nil

	case FormatXLSX:
		w, err := e.spreadsheet.Get(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("spreadsheet writer unavailable", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrSpreadsheetUnavailable, err)
		}
		data, err := w.Encode(g)
		if err != nil {
			logger.Error("spreadsheet export failed", "error", err)
			return nil, fmt.Errorf("export failed: %w", err)
		}
		return e.result(f, f, g.Title, data, now), nil

	case FormatPDF:
		data, err := e.renderPDF(ctx, g, now)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("pdf export fell back to csv", "error", err)
			res := e.result(FormatPDF, FormatCSV, g.Title, EncodeCSV(g), now)
			res.Notice = PDFFallbackNotice
			return res, nil
		}
		return e.result(f, f, g.Title, data, now), nil
	}

	return nil, fmt.Errorf("unsupported export format %q", f)
}

func (e *Exporter) renderPDF(ctx context.Context, g Grid, now time.Time) (data []byte, err error) {
	w, err := e.pdf.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFUnavailable, err)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("export failed: pdf panic: %v", r)
		}
	}()
	return w.Encode(g, now)
}

func (e *Exporter) result(requested, produced Format, title string, data []byte, now time.Time) *Result {
	return &Result{
		Requested:   requested,
		Format:      produced,
		Filename:    FileName(title, produced, now),
		ContentType: produced.ContentType(),
		Data:        data,
	}
}

// Status reports each capability's load state.
func (e *Exporter) Status() map[Format]LoadState {
	return map[Format]LoadState{
		FormatCSV:  StateReady,
		FormatXLSX: e.spreadsheet.State(),
		FormatPDF:  e.pdf.State(),
	}
}

// Drain waits for in-flight exports to finish.
func (e *Exporter) Drain(ctx context.Context) error {
	return e.limiter.WaitForDrain(ctx)
}
