// Package config loads application settings from environment variables,
// applies defaults, and validates everything at startup so misconfiguration
// fails fast.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	API      APIConfig
	Table    TableConfig
	Export   ExportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including export drain.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the per-request middleware timeout.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig configures the optional PostgreSQL row source.
// Supports both DATABASE_URL and DB_URL.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL" envAlt:"DB_URL"`
	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// APIConfig configures the portal REST row source. When BaseURL is set it
// takes precedence over the database.
type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL"`
	Token   string        `env:"API_TOKEN"`
	Timeout time.Duration `env:"API_TIMEOUT" default:"15s"`
}

// TableConfig holds view defaults.
type TableConfig struct {
	// DefaultPageSize applies to tables that do not set their own.
	DefaultPageSize int `env:"TABLE_DEFAULT_PAGE_SIZE" default:"10"`

	// MaxPageSize caps page sizes requested over HTTP.
	MaxPageSize int `env:"TABLE_MAX_PAGE_SIZE" default:"500"`

	// Locale is the BCP 47 tag used for sort collation.
	Locale string `env:"TABLE_LOCALE" default:"en"`

	// SessionTTL is how long an idle table view stays open.
	SessionTTL time.Duration `env:"TABLE_SESSION_TTL" default:"30m"`
}

// ExportConfig controls which export writers may load.
type ExportConfig struct {
	SpreadsheetEnabled bool   `env:"EXPORT_SPREADSHEET_ENABLED" default:"true"`
	PDFEnabled         bool   `env:"EXPORT_PDF_ENABLED" default:"true"`
	PDFTableLayout     bool   `env:"EXPORT_PDF_TABLE_LAYOUT" default:"true"`
	PDFFontPath        string `env:"EXPORT_PDF_FONT_PATH"`

	// PDFMaxTableColumns switches wider tables to the text layout.
	PDFMaxTableColumns int `env:"EXPORT_PDF_MAX_TABLE_COLUMNS" default:"12"`

	MaxConcurrent int           `env:"EXPORT_MAX_CONCURRENT" default:"4"`
	MaxWait       time.Duration `env:"EXPORT_MAX_WAIT" default:"10s"`
}

// RateLimitConfig holds per-IP rate limits.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute applies to every route.
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"300"`

	// ExportLimit is requests per minute for export endpoints.
	ExportLimit int `env:"RATE_LIMIT_EXPORT" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of proxy CIDRs whose
	// X-Forwarded-For and X-Real-IP headers are believed.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SourceKind names the row source the configuration selects.
func (c *Config) SourceKind() string {
	switch {
	case c.API.BaseURL != "":
		return "api"
	case c.Database.URL != "":
		return "postgres"
	default:
		return "static"
	}
}
