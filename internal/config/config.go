package config // package config loads application configuration from environment variables

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.  Unlike database-backed deployments there
// are no required credentials: every value has a sensible default so the
// service can start from a checkout with an empty environment.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DataDir   string // directory holding the three JSON documents
	AvatarDir string // directory holding user avatar blobs
}

// Load reads configuration values from environment variables and returns
// a Config.  Missing variables fall back to the defaults used by the
// original deployment layout (data/ and media/images/avatars).
func Load() Config {
	return Config{
		Env:       getenv("APP_ENV", "dev"),                     // environment (dev/test/prod)
		Port:      getenv("APP_PORT", "8080"),                   // port to bind the HTTP server
		DataDir:   getenv("DATA_DIR", "data"),                   // users.json / bookings.json / settings.json
		AvatarDir: getenv("AVATAR_DIR", "media/images/avatars"), // avatar blob directory
	}
}
