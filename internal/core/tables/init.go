// Package tables registers the portal's table definitions with the core
// registry. Import this package to ensure all tables are registered.
package tables

// Each table file uses init() to register its tables; this file exists to
// provide a single import point.
