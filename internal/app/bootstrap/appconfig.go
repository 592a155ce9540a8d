// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig is where everything specific to ScriptHub lives: the MongoDB
// connection, session cookies for the dashboard API, Discord OAuth
// credentials, and the public base URL used to build OAuth redirect URIs.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connections in the driver pool
	MongoMinPoolSize uint64 // Min connections kept warm in the driver pool

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: scripthub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Discord OAuth configuration (dashboard sign-in)
	DiscordClientID     string // Discord application client ID
	DiscordClientSecret string // Discord application client secret

	// Base URL for OAuth redirect URIs and links in responses
	BaseURL string // e.g., "https://scripthub.example.com" or "http://localhost:3000"
}
