package flag

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/ngetahun/bugzilla-mcp/internal/logging"

	"github.com/containeroo/resolver"
	"github.com/containeroo/tinyflags"
)

// Transport selects how the MCP server talks to its client.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config holds all application and Bugzilla-specific configuration.
type Config struct {
	BugzillaURL    string            // Base URL of the Bugzilla instance, no trailing slash
	APIKey         string            // API key, empty when unset
	Username       string            // Login for username/password auth
	Password       string            // Password for username/password auth
	ListenAddr     string            // HTTP transport bind address (e.g. ":8080")
	Transport      string            // MCP transport ("stdio" or "http")
	RequestTimeout time.Duration     // Per-request timeout for Bugzilla calls
	MaxRetries     int               // Retry budget for failed Bugzilla requests
	LogLevel       slog.Level        // Effective log level
	LogFormat      logging.LogFormat // Log output format (text or json)
	Debug          bool              // Forces DEBUG level
	SkipTLSVerify  bool              // Skip TLS certificate verification
	DefaultsFile   string            // Optional path to a query defaults file
}

// ParseArgs parses CLI arguments and environment variables into Config,
// handling version/help flags. Credential values support resolver
// indirection (env:NAME, file:/path).
func ParseArgs(version string, args []string, out io.Writer, getEnv func(string) string) (Config, error) {
	var cfg Config
	tf := tinyflags.NewFlagSet("bugzilla-mcp", tinyflags.ContinueOnError)
	tf.Version(version)
	tf.SetGetEnvFn(getEnv)
	tf.EnvPrefix("BUGZILLA")
	tf.SetOutput(out)

	// Bugzilla connection
	rawURL := tf.String("url", "", "Bugzilla instance URL (e.g. https://bugzilla.suse.com)").
		Placeholder("URL").
		Value()
	apiKey := tf.String("api-key", "", "Bugzilla API key").Value()
	username := tf.String("username", "", "Bugzilla username").Value()
	password := tf.String("password", "", "Bugzilla password").Value()
	tf.BoolVar(&cfg.SkipTLSVerify, "skip-tls-verify", false, "Skip TLS certificate verification").Value()

	// Request behavior
	requestTimeout := tf.Duration("request-timeout", 30*time.Second, "Timeout for Bugzilla requests").Value()
	maxRetries := tf.Int("max-retries", 3, "Maximum retries for failed Bugzilla requests").Value()

	// Server
	transport := tf.String("transport", TransportStdio, "MCP transport").
		Choices(TransportStdio, TransportHTTP).
		Value()
	listenAddr := tf.TCPAddr("listen-address", &net.TCPAddr{IP: nil, Port: 8080}, "HTTP transport listen address").
		Placeholder("ADDR:PORT").
		Value()
	tf.StringVar(&cfg.DefaultsFile, "defaults-file", "", "Path to query defaults file").Value()

	// Logging
	tf.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging").Value()
	logLevel := tf.String("log-level", "INFO", "Log level").
		Choices("DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL").
		Value()
	logFormat := tf.String("log-format", "text", "Log format").Choices("text", "json").Short("l").Value()

	// Parse
	if err := tf.Parse(args); err != nil {
		return Config{}, err
	}

	// Post-parse
	u := strings.TrimRight(*rawURL, "/")
	switch {
	case u == "":
		return Config{}, fmt.Errorf("missing Bugzilla URL")
	case !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://"):
		return Config{}, fmt.Errorf("Bugzilla URL must start with http:// or https://")
	}
	cfg.BugzillaURL = u

	addr := *listenAddr
	if addr.Port < 1 || addr.Port > 65535 {
		return Config{}, fmt.Errorf("listen-address port must be between 1 and 65535")
	}
	cfg.ListenAddr = addr.String()

	key, err := resolver.ResolveVariable(*apiKey)
	if err != nil {
		return Config{}, fmt.Errorf("resolving api-key: %w", err)
	}
	cfg.APIKey = key

	pass, err := resolver.ResolveVariable(*password)
	if err != nil {
		return Config{}, fmt.Errorf("resolving password: %w", err)
	}
	cfg.Password = pass
	cfg.Username = *username

	if cfg.Username != "" && cfg.Password == "" || cfg.Username == "" && cfg.Password != "" {
		return Config{}, fmt.Errorf("username and password must be set together")
	}

	cfg.Transport = *transport
	cfg.RequestTimeout = *requestTimeout
	cfg.MaxRetries = *maxRetries
	cfg.LogFormat = logging.LogFormat(*logFormat)
	cfg.LogLevel = logging.ParseLevel(*logLevel)
	if cfg.Debug {
		cfg.LogLevel = slog.LevelDebug
	}

	return cfg, nil
}
