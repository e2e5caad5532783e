package core

// error_messages.go maps technical errors to user-facing messages with codes
// for support reference. Users quote the code; support looks it up here.
//
// # Table Errors (TBL001-TBL099)
//
//	TBL001 - Table not found: The requested table does not exist
//	         Patterns: "table not found"
//	TBL002 - Column not found: The column cannot be sorted or filtered
//	         Patterns: "unknown column"
//
// # View Session Errors (SES001-SES099)
//
//	SES001 - Session expired: The table view is no longer open
//	         Patterns: "session not found"
//
// # Filter Errors (FLT001-FLT099)
//
//	FLT001 - Invalid date: A date filter could not be read
//	         Patterns: "invalid date"
//	FLT002 - Invalid page: Page or page size is not a positive number
//	         Patterns: "invalid page"
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Unsupported format: Export format is not csv, xlsx or pdf
//	         Patterns: "unsupported export format"
//	EXP002 - Spreadsheet unavailable: The spreadsheet writer could not be loaded
//	         Patterns: "spreadsheet writer unavailable"
//	EXP003 - PDF unavailable: The PDF writer could not be loaded
//	         Patterns: "pdf writer unavailable"
//	EXP004 - Export failed: The file could not be generated
//	         Patterns: "export failed"
//	EXP005 - Export busy: Every export slot is in use
//	         Patterns: "too many exports"
//
// # Data Source Errors (SRC001-SRC099)
//
//	SRC001 - Backend rejected: The portal API returned success=false
//	         Patterns: "backend rejected"
//	SRC002 - Backend unreachable: The portal API could not be reached
//	         Patterns: "connection refused", "no such host"
//	SRC003 - Backend timeout: The portal API did not answer in time
//	         Patterns: "context deadline exceeded", "timeout"
//	SRC004 - Dataset not found: No data is configured for this table
//	         Patterns: "dataset not found"
//	SRC005 - Bad response: The portal API returned malformed data
//	         Patterns: "decode response"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//
// Patterns are matched case-insensitively with strings.Contains. The first
// matching pattern wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Tables
	{"table not found", UserMessage{"Table not found", "Verify the table name is correct", "TBL001"}},
	{"unknown column", UserMessage{"Column not found", "Refresh the page and try again", "TBL002"}},

	// View sessions
	{"session not found", UserMessage{"This table view has expired", "Reload the page to open it again", "SES001"}},

	// Filters
	{"invalid date", UserMessage{"Invalid date format detected", "Use YYYY-MM-DD, MM/DD/YYYY, or Jan 15, 2024", "FLT001"}},
	{"invalid page", UserMessage{"Invalid page or page size", "Use a positive whole number", "FLT002"}},

	// Exports
	{"unsupported export format", UserMessage{"This export format is not supported", "Choose CSV, Excel or PDF", "EXP001"}},
	{"spreadsheet writer unavailable", UserMessage{"Excel export is not available", "Install or enable the spreadsheet writer, or export as CSV", "EXP002"}},
	{"pdf writer unavailable", UserMessage{"PDF export is not available", "Export as CSV instead", "EXP003"}},
	{"export failed", UserMessage{"The export file could not be generated", "Please try again or export as CSV", "EXP004"}},
	{"too many exports", UserMessage{"Too many exports are running", "Please wait a moment and try again", "EXP005"}},

	// Data sources
	{"backend rejected", UserMessage{"The portal API rejected the request", "Please try again or contact support", "SRC001"}},
	{"connection refused", UserMessage{"Unable to reach the portal API", "Please try again in a few moments", "SRC002"}},
	{"no such host", UserMessage{"Unable to reach the portal API", "Please try again in a few moments", "SRC002"}},
	{"context deadline exceeded", UserMessage{"The portal API did not respond in time", "Please try again later", "SRC003"}},
	{"timeout", UserMessage{"The portal API did not respond in time", "Please try again later", "SRC003"}},
	{"dataset not found", UserMessage{"No data is configured for this table", "Contact support", "SRC004"}},
	{"decode response", UserMessage{"The portal API returned unexpected data", "Please try again or contact support", "SRC005"}},

	// Rate limiting
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A nil error yields the zero UserMessage.
//
// Example:
//
//	msg := MapError(errors.New("session not found: 1f0c..."))
//	// msg.Code == "SES001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
// Error returns the user message; Unwrap returns the original for logging.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Technical: err, User: MapError(err)}
}
