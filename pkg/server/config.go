package server

import "time"

// Config holds server configuration settings
type Config struct {
	Host           string        // Server host address
	Port           int           // Server port
	ReadTimeout    time.Duration // HTTP read timeout
	WriteTimeout   time.Duration // HTTP write timeout
	IdleTimeout    time.Duration // HTTP idle timeout
	MaxRequestSize int64         // Maximum request body size in bytes
	EnableCORS     bool          // Enable CORS middleware
	AllowedOrigins []string      // CORS allowed origins
	EnableLogging  bool          // Enable request logging
	EnableGzip     bool          // Enable gzip response compression

	// Stats streaming
	StatsInterval time.Duration // WebSocket stats push interval

	// Slow task log
	SlowTaskThreshold time.Duration // Tasks slower than this are logged
	SlowTaskLogFile   string        // Optional JSON-lines sink

	// TLS/SSL configuration
	EnableTLS   bool   // Enable TLS/SSL
	TLSCertFile string // Path to TLS certificate file
	TLSKeyFile  string // Path to TLS private key file

	// GraphQL configuration
	EnableGraphQL bool // Enable GraphQL API endpoint

	// Authentication. When enabled, admin endpoints require a bearer
	// token with the managePool permission.
	EnableAuth    bool
	AdminUser     string
	AdminPassword string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Host:              "localhost",
		Port:              8080,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxRequestSize:    1 * 1024 * 1024, // 1MB, stats payloads are small
		EnableCORS:        true,
		AllowedOrigins:    []string{"*"},
		EnableLogging:     true,
		EnableGzip:        true,
		StatsInterval:     time.Second,
		SlowTaskThreshold: 100 * time.Millisecond,
		EnableTLS:         false,
		TLSCertFile:       "",
		TLSKeyFile:        "",
		EnableGraphQL:     false, // GraphQL disabled by default (opt-in feature)
		EnableAuth:        false,
	}
}
