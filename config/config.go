package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for the admin console.
type Config struct {
	LogLevel    string `yaml:"log_level"`
	LogFilePath string `yaml:"log_file"`
	ListenAddr  string `yaml:"listen_addr"`

	DBDriver             string `yaml:"db_driver"` // sqlite|postgres
	DatabaseURL          string `yaml:"database_url"`
	SQLitePragmasEnabled bool   `yaml:"sqlite_pragmas_enabled"`
	SQLiteBusyTimeoutMS  int    `yaml:"sqlite_busy_timeout_ms"`
	SQLiteJournalMode    string `yaml:"sqlite_journal_mode"`
	SQLiteSynchronous    string `yaml:"sqlite_synchronous"`
	SQLiteForeignKeys    bool   `yaml:"sqlite_foreign_keys"`
	SQLiteMaxOpenConns   int    `yaml:"sqlite_max_open_conns"`
	SQLiteMaxIdleConns   int    `yaml:"sqlite_max_idle_conns"`
	SQLiteConnMaxIdleSec int    `yaml:"sqlite_conn_max_idle_seconds"`
	SQLiteConnMaxLifeSec int    `yaml:"sqlite_conn_max_lifetime_seconds"`

	// Environment shown by the version surfaces
	PlatformName   string `yaml:"platform_name"`
	ServerSoftware string `yaml:"server_software"`
	Locale         string `yaml:"locale"`

	// Authentication and anti-forgery
	NonceSecret       string        `yaml:"nonce_secret"`
	NonceLifetime     time.Duration `yaml:"nonce_lifetime"`
	SessionDuration   time.Duration `yaml:"session_duration"`
	SecureCookies     bool          `yaml:"secure_cookies"`
	AdminUser         string        `yaml:"admin_user"`
	AdminPassword     string        `yaml:"admin_password"`
	AdminTOTPSecret   string        `yaml:"admin_totp_secret"`
	LoginRateLimit    int           `yaml:"login_rate_limit"`
	LoginRateWindow   time.Duration `yaml:"login_rate_window"`
	CORSAllowedOrigin []string      `yaml:"cors_allowed_origins"`
	AdminAllowCIDRs   []string      `yaml:"admin_allow_cidrs"`
	AdminDenyCIDRs    []string      `yaml:"admin_deny_cidrs"`

	// Core update checks
	UpdateRepo     string        `yaml:"update_repo"` // owner/name, empty disables checks
	UpdateCacheTTL time.Duration `yaml:"update_cache_ttl"`
	UpdateProxyURL string        `yaml:"update_proxy_url"`
	GitHubToken    string        `yaml:"-"`
}

// Default returns the built-in configuration before any file, environment or
// flag overrides.
func Default() *Config {
	return &Config{
		LogLevel:             "INFO",
		LogFilePath:          "",
		ListenAddr:           ":7788",
		DBDriver:             "sqlite",
		DatabaseURL:          "versioninfo.db",
		SQLitePragmasEnabled: true,
		SQLiteBusyTimeoutMS:  5000,
		SQLiteJournalMode:    "WAL",
		SQLiteSynchronous:    "NORMAL",
		SQLiteForeignKeys:    true,
		SQLiteMaxOpenConns:   1,
		SQLiteMaxIdleConns:   1,
		SQLiteConnMaxIdleSec: 300,
		SQLiteConnMaxLifeSec: 0,
		PlatformName:         "VersionInfo",
		ServerSoftware:       "gin/" + gin.Version,
		Locale:               "en",
		NonceLifetime:        24 * time.Hour,
		SessionDuration:      24 * time.Hour,
		LoginRateLimit:       5,
		LoginRateWindow:      time.Minute,
		UpdateCacheTTL:       12 * time.Hour,
	}
}

// Load builds the configuration: defaults, then the optional YAML file, then
// environment variables (a .env file in the working directory is honoured).
func Load(path string) (*Config, error) {
	// Missing .env is not an error
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFilePath = getEnv("LOG_FILE", c.LogFilePath)
	c.ListenAddr = getEnv("LISTEN_ADDR", c.ListenAddr)
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.SQLitePragmasEnabled = getEnvBool("SQLITE_PRAGMAS_ENABLED", c.SQLitePragmasEnabled)
	c.SQLiteBusyTimeoutMS = getEnvInt("SQLITE_BUSY_TIMEOUT_MS", c.SQLiteBusyTimeoutMS)
	c.SQLiteJournalMode = getEnv("SQLITE_JOURNAL_MODE", c.SQLiteJournalMode)
	c.SQLiteSynchronous = getEnv("SQLITE_SYNCHRONOUS", c.SQLiteSynchronous)
	c.SQLiteForeignKeys = getEnvBool("SQLITE_FOREIGN_KEYS", c.SQLiteForeignKeys)
	c.SQLiteMaxOpenConns = getEnvInt("SQLITE_MAX_OPEN_CONNS", c.SQLiteMaxOpenConns)
	c.SQLiteMaxIdleConns = getEnvInt("SQLITE_MAX_IDLE_CONNS", c.SQLiteMaxIdleConns)
	c.SQLiteConnMaxIdleSec = getEnvInt("SQLITE_CONN_MAX_IDLE_SECONDS", c.SQLiteConnMaxIdleSec)
	c.SQLiteConnMaxLifeSec = getEnvInt("SQLITE_CONN_MAX_LIFETIME_SECONDS", c.SQLiteConnMaxLifeSec)
	c.PlatformName = getEnv("PLATFORM_NAME", c.PlatformName)
	c.ServerSoftware = getEnv("SERVER_SOFTWARE", c.ServerSoftware)
	c.Locale = getEnv("LOCALE", c.Locale)
	c.NonceSecret = getEnv("NONCE_SECRET", c.NonceSecret)
	c.NonceLifetime = getEnvDuration("NONCE_LIFETIME", c.NonceLifetime)
	c.SessionDuration = getEnvDuration("SESSION_DURATION", c.SessionDuration)
	c.SecureCookies = getEnvBool("SECURE_COOKIES", c.SecureCookies)
	c.AdminUser = getEnv("ADMIN_USER", c.AdminUser)
	c.AdminPassword = getEnv("ADMIN_PASSWORD", c.AdminPassword)
	c.AdminTOTPSecret = getEnv("ADMIN_TOTP_SECRET", c.AdminTOTPSecret)
	c.LoginRateLimit = getEnvInt("LOGIN_RATE_LIMIT", c.LoginRateLimit)
	c.LoginRateWindow = getEnvDuration("LOGIN_RATE_WINDOW", c.LoginRateWindow)
	c.CORSAllowedOrigin = getEnvList("CORS_ALLOWED_ORIGINS", c.CORSAllowedOrigin)
	c.AdminAllowCIDRs = getEnvList("ADMIN_ALLOW_CIDRS", c.AdminAllowCIDRs)
	c.AdminDenyCIDRs = getEnvList("ADMIN_DENY_CIDRS", c.AdminDenyCIDRs)
	c.UpdateRepo = getEnv("UPDATE_REPO", c.UpdateRepo)
	c.UpdateCacheTTL = getEnvDuration("UPDATE_CACHE_TTL", c.UpdateCacheTTL)
	c.UpdateProxyURL = getEnv("UPDATE_PROXY_URL", c.UpdateProxyURL)
	c.GitHubToken = strings.TrimSpace(getEnv("GITHUB_TOKEN", c.GitHubToken))
}

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	var errs []string

	switch strings.ToLower(c.DBDriver) {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("unsupported DB_DRIVER %q (want sqlite or postgres)", c.DBDriver))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if c.NonceLifetime <= 0 {
		errs = append(errs, "NONCE_LIFETIME must be positive")
	}
	if c.SessionDuration <= 0 {
		errs = append(errs, "SESSION_DURATION must be positive")
	}
	if c.UpdateRepo != "" && strings.Count(c.UpdateRepo, "/") != 1 {
		errs = append(errs, "UPDATE_REPO must look like owner/name")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

// IsDebug reports whether debug logging is enabled.
func (c *Config) IsDebug() bool {
	return strings.EqualFold(c.LogLevel, "DEBUG")
}

// BindFlags registers the command-line overrides on fs. Defaults shown in
// help come from Default(); only flags the user actually sets are applied.
func BindFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("config", "", "Path to a YAML config file")
	fs.String("listen", d.ListenAddr, "HTTP listen address (overrides LISTEN_ADDR)")
	fs.String("db-driver", d.DBDriver, "Database driver: sqlite or postgres (overrides DB_DRIVER)")
	fs.String("db", d.DatabaseURL, "Database path or DSN (overrides DATABASE_URL)")
	fs.String("log-level", d.LogLevel, "Log level: DEBUG, INFO, WARN, ERROR (overrides LOG_LEVEL)")
	fs.String("log-file", d.LogFilePath, "Log file path, empty logs to stderr (overrides LOG_FILE)")
	fs.String("platform-name", d.PlatformName, "Platform name shown in version lines (overrides PLATFORM_NAME)")
	fs.String("server-software", d.ServerSoftware, "Web server identifier (overrides SERVER_SOFTWARE)")
	fs.String("locale", d.Locale, "Interface language, e.g. en or de (overrides LOCALE)")
	fs.String("update-repo", d.UpdateRepo, "GitHub repo checked for core updates (overrides UPDATE_REPO)")
	fs.Bool("sqlite-pragmas", d.SQLitePragmasEnabled, "Enable SQLite PRAGMAs (overrides SQLITE_PRAGMAS_ENABLED)")
}

// ApplyFlags copies flags that were explicitly set on fs into c.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) {
	if fs.Changed("listen") {
		c.ListenAddr, _ = fs.GetString("listen")
	}
	if fs.Changed("db-driver") {
		c.DBDriver, _ = fs.GetString("db-driver")
	}
	if fs.Changed("db") {
		c.DatabaseURL, _ = fs.GetString("db")
	}
	if fs.Changed("log-level") {
		c.LogLevel, _ = fs.GetString("log-level")
	}
	if fs.Changed("log-file") {
		c.LogFilePath, _ = fs.GetString("log-file")
	}
	if fs.Changed("platform-name") {
		c.PlatformName, _ = fs.GetString("platform-name")
	}
	if fs.Changed("server-software") {
		c.ServerSoftware, _ = fs.GetString("server-software")
	}
	if fs.Changed("locale") {
		c.Locale, _ = fs.GetString("locale")
	}
	if fs.Changed("update-repo") {
		c.UpdateRepo, _ = fs.GetString("update-repo")
	}
	if fs.Changed("sqlite-pragmas") {
		c.SQLitePragmasEnabled, _ = fs.GetBool("sqlite-pragmas")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
