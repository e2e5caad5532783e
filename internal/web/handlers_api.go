package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/ibportal/internal/core"
	"github.com/JonMunkholm/ibportal/internal/export"
	"github.com/JonMunkholm/ibportal/internal/logging"
)

// TableSummary describes a registered table.
type TableSummary struct {
	Key   string `json:"key"`
	Group string `json:"group"`
	Label string `json:"label"`
}

// ColumnMeta describes one column of a rows response.
type ColumnMeta struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Sortable bool   `json:"sortable"`
}

// RowsResponse is one page of a table view.
type RowsResponse struct {
	Table      string              `json:"table"`
	Columns    []ColumnMeta        `json:"columns"`
	Rows       []map[string]string `json:"rows"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	TotalPages int                 `json:"total_pages"`
	Sort       *SortResponse       `json:"sort,omitempty"`
}

type SortResponse struct {
	Key string `json:"key"`
	Dir string `json:"dir"`
}

// HealthResponse reports liveness and capability state.
type HealthResponse struct {
	Status   string            `json:"status"`
	Source   string            `json:"source"`
	Tables   int               `json:"tables"`
	Sessions int               `json:"sessions"`
	Exports  map[string]string `json:"exports"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	exports := make(map[string]string)
	for f, st := range s.exporter.Status() {
		exports[string(f)] = st.String()
	}
	writeJSON(w, HealthResponse{
		Status:   "ok",
		Source:   s.source.Name(),
		Tables:   core.TableCount(),
		Sessions: s.sessions.len(),
		Exports:  exports,
	})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	defs := core.All()
	out := make([]TableSummary, len(defs))
	for i, def := range defs {
		out[i] = TableSummary{Key: def.Info.Key, Group: def.Info.Group, Label: def.Info.Label}
	}
	writeJSON(w, out)
}

// statelessTable opens the table named in the URL and applies the query
// parameters. Nothing is kept between requests.
func (s *Server) statelessTable(w http.ResponseWriter, r *http.Request) (core.TableDefinition, *core.Table, bool) {
	def, err := lookupTable(chi.URLParam(r, "tableKey"))
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return def, nil, false
	}
	table, err := s.openTable(r.Context(), def)
	if err != nil {
		s.respondError(w, r, err, sourceStatus(err))
		return def, nil, false
	}
	if err := applyQuery(table, def, r.URL.Query(), s.cfg.Table.MaxPageSize); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return def, nil, false
	}
	return def, table, true
}

func (s *Server) handleTableRows(w http.ResponseWriter, r *http.Request) {
	def, table, ok := s.statelessTable(w, r)
	if !ok {
		return
	}
	writeJSON(w, rowsResponse(def.Info.Key, table.View()))
}

func rowsResponse(key string, v core.View) RowsResponse {
	resp := RowsResponse{
		Table:      key,
		Columns:    make([]ColumnMeta, len(v.Columns)),
		Rows:       make([]map[string]string, len(v.Rows)),
		Total:      v.Total,
		Page:       v.Page,
		PageSize:   v.PageSize,
		TotalPages: v.TotalPages,
	}
	for i, c := range v.Columns {
		resp.Columns[i] = ColumnMeta{Key: c.Key, Label: c.Label, Type: c.Type.String(), Sortable: c.Sortable()}
	}
	for i, row := range v.Rows {
		cells := make(map[string]string, len(row.Cells))
		for _, cell := range row.Cells {
			cells[cell.Key] = cell.Text
		}
		resp.Rows[i] = cells
	}
	if v.Sort.Active() {
		resp.Sort = &SortResponse{Key: v.Sort.Key, Dir: string(v.Sort.Dir)}
	}
	return resp
}

func (s *Server) handleTableExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	def, table, ok := s.statelessTable(w, r)
	if !ok {
		return
	}
	s.export(w, r, format, def, table)
}

func (s *Server) handleViewExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	vs, err := s.sessions.get(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	s.export(w, r, format, vs.def, vs.table)
}

// export renders every filtered and sorted row, ignoring pagination.
func (s *Server) export(w http.ResponseWriter, r *http.Request, format export.Format, def core.TableDefinition, table *core.Table) {
	grid := export.NewGrid(def.Info.Title, table.Columns(), table.Resolved())
	res, err := s.exporter.Export(r.Context(), format, grid)
	if err != nil {
		s.respondError(w, r, err, exportStatus(err))
		return
	}

	logging.WithFields(r.Context(), "table", def.Info.Key).Info("export served",
		"requested", res.Requested,
		"format", res.Format,
		"rows", len(grid.Rows),
		"bytes", len(res.Data),
		"fallback", res.Notice != "",
	)
	writeDownload(w, res)
}
