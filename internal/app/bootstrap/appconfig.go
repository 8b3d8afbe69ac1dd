// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig
// handles framework-level settings (ports, TLS, logging, CORS);
// AppConfig is everything specific to the approval engine.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: ringihub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// File storage configuration
	StorageLocalPath string // Local storage path for uploaded files
	StorageLocalURL  string // URL prefix for serving local files

	// Operation timeouts, parsed as durations (e.g. "5s")
	TimeoutPing   string
	TimeoutShort  string
	TimeoutMedium string
	TimeoutLong   string
}
