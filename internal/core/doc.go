// Package core provides the table engine behind the portal's data tables.
//
// This package is the heart of the portal's tabular pages (commissions,
// clients, KYC applications, withdrawals), containing all filtering, sorting
// and pagination logic independent of any UI or transport layer. It can be
// used by web handlers, export encoders, or tests without modification.
//
// # Architecture
//
//   - Table Definitions: Registered via the registry, each table has columns,
//     filter controls, a page size and the dataset its rows come from.
//   - Table: One mounted instance holding rows and view state. Every state
//     change is atomic; [Table.View] derives the visible window.
//   - Pipeline: Pure derivation (search, selects, date range, sort, page)
//     shared by the view and by exports via [SortedRows] and [ResolveCell].
//
// # Table Registry
//
// Tables are registered at init time using [Register]:
//
//	core.Register(core.TableDefinition{
//	    Info: core.TableInfo{Key: "withdrawals", Group: "Admin", Label: "Withdrawals"},
//	    Columns: []core.Column{
//	        {Key: "client", Label: "Client"},
//	        {Key: "amount", Label: "Amount", Type: core.FieldNumeric},
//	    },
//	    Filters:  core.FilterConfig{DateKey: "requested_at"},
//	    PageSize: 25,
//	})
//
// # Cell Rendering
//
// A column's [RenderFunc] returns a [Displayable]: [Text], [Number] or a
// [Node] tree. Exports never see markup; they use [ExtractText], which
// concatenates the textual leaves of the tree.
//
// # Error Handling
//
// Filter evaluation never fails: rows with missing or unparsable dates are
// excluded from a date-bounded view. Technical errors from other layers are
// mapped to user-friendly messages using [MapError].
package core
