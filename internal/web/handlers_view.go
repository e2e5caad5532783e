package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/ibportal/internal/core"
	"github.com/JonMunkholm/ibportal/internal/logging"
	"github.com/JonMunkholm/ibportal/internal/metrics"
	"github.com/JonMunkholm/ibportal/internal/web/templates"
)

// viewApply changes one session's table from a request.
type viewApply func(r *http.Request, vs *viewSession) error

// viewAction wraps apply with session lookup, form parsing and re-render.
// Full re-renders swap the toolbar too, so inputs reflect restored state.
func (s *Server) viewAction(name string, full bool, apply viewApply) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vs, err := s.sessions.get(chi.URLParam(r, "sessionID"))
		if err != nil {
			s.respondError(w, r, err, http.StatusNotFound)
			return
		}
		if err := r.ParseForm(); err != nil {
			s.respondError(w, r, fmt.Errorf("parse form: %w", err), http.StatusBadRequest)
			return
		}
		if err := apply(r, vs); err != nil {
			s.respondError(w, r, err, http.StatusBadRequest)
			return
		}

		metrics.TableActions.WithLabelValues(vs.def.Info.Key, name).Inc()
		logging.WithFields(r.Context(), "session", vs.id, "table", vs.def.Info.Key).
			Debug("view action", "action", name)

		params := s.tableParams(vs, vs.table.View())
		if full {
			templates.TableView(params).Render(r.Context(), w)
			return
		}
		templates.Results(params).Render(r.Context(), w)
	}
}

// handleViewResults re-renders a session's results without changing state.
func (s *Server) handleViewResults(w http.ResponseWriter, r *http.Request) {
	vs, err := s.sessions.get(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	templates.Results(s.tableParams(vs, vs.table.View())).Render(r.Context(), w)
}

func applySearch(r *http.Request, vs *viewSession) error {
	vs.table.SetQuery(r.FormValue("q"))
	return nil
}

func applySelect(r *http.Request, vs *viewSession) error {
	key := r.FormValue("key")
	if !hasSelect(vs.def.Filters, key) {
		return fmt.Errorf("unknown column %q", key)
	}
	vs.table.SetSelect(key, r.FormValue("value"))
	return nil
}

func applyDates(r *http.Request, vs *viewSession) error {
	if vs.def.Filters.DateKey == "" {
		return fmt.Errorf("unknown column: table %q has no date filter", vs.def.Info.Key)
	}
	from, to := r.FormValue("from"), r.FormValue("to")
	if err := checkDates(from, to); err != nil {
		return err
	}
	vs.table.SetDateRange(from, to)
	return nil
}

func applyClearDates(_ *http.Request, vs *viewSession) error {
	vs.table.ClearDates()
	return nil
}

func applySort(r *http.Request, vs *viewSession) error {
	vs.table.ToggleSort(chi.URLParam(r, "columnKey"))
	return nil
}

func applyPage(r *http.Request, vs *viewSession) error {
	page, err := parsePositive(r.FormValue("page"))
	if err != nil {
		return err
	}
	vs.table.SetPage(page)
	return nil
}

func (s *Server) applyPageSize(r *http.Request, vs *viewSession) error {
	size, err := parsePositive(r.FormValue("size"))
	if err != nil {
		return err
	}
	vs.table.SetPageSize(min(size, s.cfg.Table.MaxPageSize))
	return nil
}

func applyReset(_ *http.Request, vs *viewSession) error {
	vs.table.Reset()
	return nil
}

func hasSelect(filters core.FilterConfig, key string) bool {
	for _, sf := range filters.Selects {
		if sf.Key == key {
			return true
		}
	}
	return false
}

// parsePositive parses a 1-based page number or size.
func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid page value %q", s)
	}
	return n, nil
}
