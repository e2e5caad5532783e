package core

// FieldType represents the kind of data a column holds.
type FieldType int

const (
	FieldText FieldType = iota
	FieldEnum
	FieldDate
	FieldNumeric
	FieldBool
)

// String returns the lowercase name used in JSON and HTML attributes.
func (ft FieldType) String() string {
	switch ft {
	case FieldEnum:
		return "enum"
	case FieldDate:
		return "date"
	case FieldNumeric:
		return "numeric"
	case FieldBool:
		return "bool"
	default:
		return "text"
	}
}

// IndexKey is the key of the synthetic rank column.
const IndexKey = "__index"

// IndexLabel is the header shown for the synthetic rank column.
const IndexLabel = "#"

// Row is a single record supplied by a caller. The engine never mutates it.
type Row map[string]any

// RenderFunc converts a raw cell value into something displayable.
// index is the row's 0-based position in the filtered and sorted set.
type RenderFunc func(value any, row Row, index int) Displayable

// Column describes how a field is shown, sorted and exported.
type Column struct {
	Key        string
	Label      string
	Type       FieldType
	Unsortable bool
	Render     RenderFunc
}

// Sortable reports whether a header click on this column may change the sort.
func (c Column) Sortable() bool {
	return !c.Unsortable && c.Key != IndexKey
}

// IsIndex reports whether c is the synthetic rank column.
func (c Column) IsIndex() bool {
	return c.Key == IndexKey
}

// SelectFilter is a dropdown filter comparing a field against fixed options.
type SelectFilter struct {
	Key     string
	Label   string
	Options []string
}

// FilterConfig describes the filter controls offered by a table.
// A zero FilterConfig means free-text search across every row key.
type FilterConfig struct {
	SearchKeys []string       // Defaults to all keys of each row
	Selects    []SelectFilter // Exact-match dropdowns
	DateKey    string         // Field checked by the from/to range, if any
}

// SortDir is the direction of the active sort.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// SortSpec represents the active sort column and direction.
// An empty Key means rows keep their input order.
type SortSpec struct {
	Key string
	Dir SortDir
}

// Active reports whether a sort is applied.
func (s SortSpec) Active() bool {
	return s.Key != ""
}

// ViewState is the mutable state of one table instance.
type ViewState struct {
	Query    string
	Selects  map[string]string // select key -> chosen option ("" = no filter)
	DateFrom string
	DateTo   string
	Sort     SortSpec
	Page     int // 1-based, clamped when the view is derived
	PageSize int
}

// Clone returns a deep copy so callers can hold a snapshot safely.
func (s ViewState) Clone() ViewState {
	out := s
	out.Selects = make(map[string]string, len(s.Selects))
	for k, v := range s.Selects {
		out.Selects[k] = v
	}
	return out
}

// TableInfo contains display information about a registered table.
type TableInfo struct {
	Key     string // Unique identifier: "ib_commissions"
	Group   string // Portal area: "IB", "Admin", "Compliance"
	Label   string // Display name: "Commissions"
	Title   string // Export file prefix; falls back to "table"
	Dataset string // Source dataset name (endpoint, SQL table or mock file)
}

// TableDefinition contains everything needed to build a table instance.
type TableDefinition struct {
	Info              TableInfo
	Columns           []Column
	Filters           FilterConfig
	PageSize          int
	IndexColumn       bool // Inject the synthetic rank column when absent
	SearchPlaceholder string
}
