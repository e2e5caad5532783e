package web

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/ibportal/internal/core"
	"github.com/JonMunkholm/ibportal/internal/export"
	"github.com/JonMunkholm/ibportal/internal/logging"
	"github.com/JonMunkholm/ibportal/internal/metrics"
	"github.com/JonMunkholm/ibportal/internal/web/templates"
)

// handleDashboard lists the registered tables by group.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var groups []templates.TableGroup
	for _, name := range core.Groups() {
		defs := core.ByGroup(name)
		infos := make([]core.TableInfo, len(defs))
		for i, def := range defs {
			infos[i] = def.Info
		}
		groups = append(groups, templates.TableGroup{Name: name, Tables: infos})
	}
	templates.Dashboard(groups).Render(r.Context(), w)
}

// handleTablePage mounts a new view session over fresh rows and renders
// the full page.
func (s *Server) handleTablePage(w http.ResponseWriter, r *http.Request) {
	def, err := lookupTable(chi.URLParam(r, "tableKey"))
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}

	table, err := s.openTable(r.Context(), def)
	if err != nil {
		s.respondError(w, r, err, sourceStatus(err))
		return
	}
	vs := s.sessions.create(def, table)

	logging.WithFields(r.Context(), "session", vs.id, "table", def.Info.Key).
		Info("view opened", "rows", table.View().Total)
	metrics.TableActions.WithLabelValues(def.Info.Key, "open").Inc()

	templates.TablePage(s.tableParams(vs, table.View())).Render(r.Context(), w)
}

func lookupTable(key string) (core.TableDefinition, error) {
	def, ok := core.Get(key)
	if !ok {
		return core.TableDefinition{}, fmt.Errorf("table not found: %q", key)
	}
	return def, nil
}

// openTable fetches the dataset and builds a table with default state.
func (s *Server) openTable(ctx context.Context, def core.TableDefinition) (*core.Table, error) {
	rows, err := s.source.Rows(ctx, def.Info.Dataset)
	if err != nil {
		return nil, err
	}

	opts := core.TableOptions{Locale: s.locale}
	if def.PageSize <= 0 {
		opts.PageSize = s.cfg.Table.DefaultPageSize
	}
	key := def.Info.Key
	opts.OnResetAll = func() {
		metrics.TableActions.WithLabelValues(key, "reset_all").Inc()
	}
	opts.OnClearDates = func() {
		metrics.TableActions.WithLabelValues(key, "clear_dates_done").Inc()
	}
	return core.NewTable(def, rows, opts), nil
}

func (s *Server) tableParams(vs *viewSession, view core.View) templates.TableParams {
	sid := vs.id.String()
	links := make([]templates.ExportLink, len(export.Formats))
	for i, f := range export.Formats {
		links[i] = templates.ExportLink{
			Label:  f.Label(),
			Format: string(f),
			Href:   "/api/view/" + sid + "/export/" + string(f),
		}
	}

	sizes := slices.Clone(core.PageSizeOptions)
	if !slices.Contains(sizes, view.PageSize) {
		sizes = append(sizes, view.PageSize)
		slices.Sort(sizes)
	}

	return templates.TableParams{
		SessionID:         sid,
		Info:              vs.def.Info,
		Filters:           vs.def.Filters,
		View:              view,
		SearchPlaceholder: vs.def.SearchPlaceholder,
		PageSizes:         sizes,
		Exports:           links,
	}
}
