package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/jobtracker"
	ConfigFileName    = "jobtracker.yml"

	// MinSecretKeyLength is the shortest accepted HMAC signing key.
	MinSecretKeyLength = 32
)

const (
	SourceDefault     = "default"
	SourceFile        = "file"
	SourceEnvironment = "environment"
)

// Config holds all job tracker settings. A loaded Config is treated as
// read-only; it is passed to the components that need it.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string
	DatabaseURL string `yaml:"database_url" json:"database_url"`

	// SecretKey signs access and refresh tokens
	SecretKey string `yaml:"secret_key" json:"-"`

	// GoogleClientID is the OAuth client id; ID tokens must carry it as audience
	GoogleClientID string `yaml:"google_client_id" json:"google_client_id"`

	// GoogleClientSecret is used for authorization code exchange
	GoogleClientSecret string `yaml:"google_client_secret" json:"-"`

	// GoogleRedirectURL is the redirect URI registered for code exchange
	GoogleRedirectURL string `yaml:"google_redirect_url" json:"google_redirect_url"`

	// CORSAllowedOrigins lists origins allowed to make cross-origin requests
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" json:"cors_allowed_origins"`

	// AccessTokenTTL is the access token lifetime in seconds
	AccessTokenTTL int `yaml:"access_token_ttl" json:"access_token_ttl"`

	// RefreshTokenTTL is the refresh token lifetime in seconds
	RefreshTokenTTL int `yaml:"refresh_token_ttl" json:"refresh_token_ttl"`

	// FollowupDays is how long an applied application may sit before it needs a follow-up
	FollowupDays int `yaml:"followup_days" json:"followup_days"`

	// PageSize is the default list page size
	PageSize int `yaml:"page_size" json:"page_size"`

	// MaxPageSize caps the page_size query parameter
	MaxPageSize int `yaml:"max_page_size" json:"max_page_size"`

	// TimeZone decides which calendar day "today" is
	TimeZone string `yaml:"time_zone" json:"time_zone"`

	// DevAuthFallback resolves unauthenticated requests to DevUsername.
	// Never enable outside development.
	DevAuthFallback bool `yaml:"dev_auth_fallback" json:"dev_auth_fallback"`

	// DevUsername is the existing account used by DevAuthFallback
	DevUsername string `yaml:"dev_username" json:"dev_username"`

	// AuthRateLimit is the per-client request rate on authentication endpoints
	AuthRateLimit float64 `yaml:"auth_rate_limit" json:"auth_rate_limit"`

	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Only enable behind a proxy that sets them.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers" json:"trust_proxy_headers"`

	// AuditEnabled turns the security audit log on or off
	AuditEnabled *bool `yaml:"audit_enabled" json:"audit_enabled"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level" json:"log_level"`

	// LogDev switches to the human readable development logger
	LogDev bool `yaml:"log_dev" json:"log_dev"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// New returns a config holding only default values.
func New() *Config {
	enabled := true
	c := &Config{
		CORSAllowedOrigins: []string{"*"},
		AccessTokenTTL:     30 * 60,
		RefreshTokenTTL:    24 * 60 * 60,
		FollowupDays:       3,
		PageSize:           10,
		MaxPageSize:        100,
		TimeZone:           "America/Los_Angeles",
		DevUsername:        "dev",
		AuthRateLimit:      5,
		AuditEnabled:       &enabled,
		LogLevel:           "info",
		sources:            make(map[string]string),
	}
	for _, name := range attributeNames() {
		c.sources[name] = SourceDefault
	}
	return c
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	config := New()

	configPath := os.Getenv("JOBTRACKER_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}

	return config, nil
}

func attributeNames() []string {
	return []string{
		"database_url", "secret_key", "google_client_id", "google_client_secret",
		"google_redirect_url", "cors_allowed_origins", "access_token_ttl",
		"refresh_token_ttl", "followup_days", "page_size", "max_page_size",
		"time_zone", "dev_auth_fallback", "dev_username", "auth_rate_limit",
		"trust_proxy_headers", "audit_enabled", "log_level", "log_dev",
	}
}

func (c *Config) applyFileConfig(file *Config) {
	setString := func(name string, dst *string, v string) {
		if v != "" {
			*dst = v
			c.sources[name] = SourceFile
		}
	}
	setInt := func(name string, dst *int, v int) {
		if v != 0 {
			*dst = v
			c.sources[name] = SourceFile
		}
	}

	setString("database_url", &c.DatabaseURL, file.DatabaseURL)
	setString("secret_key", &c.SecretKey, file.SecretKey)
	setString("google_client_id", &c.GoogleClientID, file.GoogleClientID)
	setString("google_client_secret", &c.GoogleClientSecret, file.GoogleClientSecret)
	setString("google_redirect_url", &c.GoogleRedirectURL, file.GoogleRedirectURL)
	setString("time_zone", &c.TimeZone, file.TimeZone)
	setString("dev_username", &c.DevUsername, file.DevUsername)
	setString("log_level", &c.LogLevel, file.LogLevel)
	setInt("access_token_ttl", &c.AccessTokenTTL, file.AccessTokenTTL)
	setInt("refresh_token_ttl", &c.RefreshTokenTTL, file.RefreshTokenTTL)
	setInt("followup_days", &c.FollowupDays, file.FollowupDays)
	setInt("page_size", &c.PageSize, file.PageSize)
	setInt("max_page_size", &c.MaxPageSize, file.MaxPageSize)

	if len(file.CORSAllowedOrigins) > 0 {
		c.CORSAllowedOrigins = file.CORSAllowedOrigins
		c.sources["cors_allowed_origins"] = SourceFile
	}
	if file.AuthRateLimit != 0 {
		c.AuthRateLimit = file.AuthRateLimit
		c.sources["auth_rate_limit"] = SourceFile
	}
	if file.AuditEnabled != nil {
		c.AuditEnabled = file.AuditEnabled
		c.sources["audit_enabled"] = SourceFile
	}
	if file.DevAuthFallback {
		c.DevAuthFallback = true
		c.sources["dev_auth_fallback"] = SourceFile
	}
	if file.LogDev {
		c.LogDev = true
		c.sources["log_dev"] = SourceFile
	}
	if file.TrustProxyHeaders {
		c.TrustProxyHeaders = true
		c.sources["trust_proxy_headers"] = SourceFile
	}
}

func (c *Config) applyEnvConfig() error {
	setString := func(name, env string, dst *string) {
		if val := os.Getenv(env); val != "" {
			*dst = val
			c.sources[name] = SourceEnvironment
		}
	}
	setInt := func(name, env string, dst *int) error {
		val := os.Getenv(env)
		if val == "" {
			return nil
		}
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", env, val, err)
		}
		*dst = i
		c.sources[name] = SourceEnvironment
		return nil
	}
	setBool := func(name, env string, dst *bool) {
		if val := os.Getenv(env); val != "" {
			*dst = parseBool(val)
			c.sources[name] = SourceEnvironment
		}
	}

	setString("database_url", "DATABASE_URL", &c.DatabaseURL)
	setString("secret_key", "JOBTRACKER_SECRET_KEY", &c.SecretKey)
	setString("google_client_id", "GOOGLE_CLIENT_ID", &c.GoogleClientID)
	setString("google_client_secret", "GOOGLE_CLIENT_SECRET", &c.GoogleClientSecret)
	setString("google_redirect_url", "GOOGLE_REDIRECT_URL", &c.GoogleRedirectURL)
	setString("time_zone", "JOBTRACKER_TIME_ZONE", &c.TimeZone)
	setString("dev_username", "JOBTRACKER_DEV_USERNAME", &c.DevUsername)
	setString("log_level", "LOG_LEVEL", &c.LogLevel)
	setBool("dev_auth_fallback", "JOBTRACKER_DEV_AUTH_FALLBACK", &c.DevAuthFallback)
	setBool("log_dev", "LOG_DEV", &c.LogDev)
	setBool("trust_proxy_headers", "JOBTRACKER_TRUST_PROXY_HEADERS", &c.TrustProxyHeaders)

	if val := os.Getenv("JOBTRACKER_CORS_ALLOWED_ORIGINS"); val != "" {
		c.CORSAllowedOrigins = splitAndTrim(val)
		c.sources["cors_allowed_origins"] = SourceEnvironment
	}
	if val := os.Getenv("JOBTRACKER_AUDIT_ENABLED"); val != "" {
		enabled := parseBool(val)
		c.AuditEnabled = &enabled
		c.sources["audit_enabled"] = SourceEnvironment
	}
	if val := os.Getenv("JOBTRACKER_AUTH_RATE_LIMIT"); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid JOBTRACKER_AUTH_RATE_LIMIT value %q: %w", val, err)
		}
		c.AuthRateLimit = f
		c.sources["auth_rate_limit"] = SourceEnvironment
	}

	ints := []struct {
		name, env string
		dst       *int
	}{
		{"access_token_ttl", "JOBTRACKER_ACCESS_TOKEN_TTL", &c.AccessTokenTTL},
		{"refresh_token_ttl", "JOBTRACKER_REFRESH_TOKEN_TTL", &c.RefreshTokenTTL},
		{"followup_days", "JOBTRACKER_FOLLOWUP_DAYS", &c.FollowupDays},
		{"page_size", "JOBTRACKER_PAGE_SIZE", &c.PageSize},
		{"max_page_size", "JOBTRACKER_MAX_PAGE_SIZE", &c.MaxPageSize},
	}
	for _, i := range ints {
		if err := setInt(i.name, i.env, i.dst); err != nil {
			return err
		}
	}
	return nil
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return SourceDefault
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return SourceDefault
}

// AccessTTL returns the access token lifetime as a duration
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenTTL) * time.Second
}

// RefreshTTL returns the refresh token lifetime as a duration
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenTTL) * time.Second
}

// Location returns the configured time zone, falling back to UTC when the
// zone database does not know it or the zone is the host's "Local", which
// Postgres cannot interpret. Validate reports both.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil || loc == time.Local {
		return time.UTC
	}
	return loc
}

// IsAuditEnabled reports whether security audit events are logged.
func (c *Config) IsAuditEnabled() bool {
	return c.AuditEnabled == nil || *c.AuditEnabled
}

// GoogleEnabled reports whether federated login is configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != ""
}

// Validate validates the configuration for running the server.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url is required (set DATABASE_URL)")
	}
	if len(c.SecretKey) < MinSecretKeyLength {
		return fmt.Errorf("secret_key must be at least %d bytes (set JOBTRACKER_SECRET_KEY)", MinSecretKeyLength)
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	if c.AccessTokenTTL >= c.RefreshTokenTTL {
		return fmt.Errorf("access_token_ttl (%d) must be shorter than refresh_token_ttl (%d)", c.AccessTokenTTL, c.RefreshTokenTTL)
	}
	if c.FollowupDays < 0 {
		return fmt.Errorf("followup_days must not be negative")
	}
	if c.PageSize <= 0 || c.MaxPageSize < c.PageSize {
		return fmt.Errorf("page_size must be positive and not exceed max_page_size")
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid time_zone %q: %w", c.TimeZone, err)
	}
	if loc == time.Local {
		return fmt.Errorf("invalid time_zone %q: use an IANA zone name such as America/Los_Angeles", c.TimeZone)
	}
	if c.DevAuthFallback && c.DevUsername == "" {
		return fmt.Errorf("dev_username is required when dev_auth_fallback is enabled")
	}
	if c.AuthRateLimit < 0 {
		return fmt.Errorf("auth_rate_limit must not be negative")
	}
	return nil
}

// Attributes returns all configuration attributes with their values and
// sources. Secrets are masked.
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "database_url", Value: maskURL(c.DatabaseURL), Source: c.Source("database_url")},
		{Name: "secret_key", Value: mask(c.SecretKey), Source: c.Source("secret_key")},
		{Name: "google_client_id", Value: c.GoogleClientID, Source: c.Source("google_client_id")},
		{Name: "google_client_secret", Value: mask(c.GoogleClientSecret), Source: c.Source("google_client_secret")},
		{Name: "google_redirect_url", Value: c.GoogleRedirectURL, Source: c.Source("google_redirect_url")},
		{Name: "cors_allowed_origins", Value: strings.Join(c.CORSAllowedOrigins, ","), Source: c.Source("cors_allowed_origins")},
		{Name: "access_token_ttl", Value: strconv.Itoa(c.AccessTokenTTL), Source: c.Source("access_token_ttl")},
		{Name: "refresh_token_ttl", Value: strconv.Itoa(c.RefreshTokenTTL), Source: c.Source("refresh_token_ttl")},
		{Name: "followup_days", Value: strconv.Itoa(c.FollowupDays), Source: c.Source("followup_days")},
		{Name: "page_size", Value: strconv.Itoa(c.PageSize), Source: c.Source("page_size")},
		{Name: "max_page_size", Value: strconv.Itoa(c.MaxPageSize), Source: c.Source("max_page_size")},
		{Name: "time_zone", Value: c.TimeZone, Source: c.Source("time_zone")},
		{Name: "dev_auth_fallback", Value: strconv.FormatBool(c.DevAuthFallback), Source: c.Source("dev_auth_fallback")},
		{Name: "dev_username", Value: c.DevUsername, Source: c.Source("dev_username")},
		{Name: "auth_rate_limit", Value: strconv.FormatFloat(c.AuthRateLimit, 'f', -1, 64), Source: c.Source("auth_rate_limit")},
		{Name: "trust_proxy_headers", Value: strconv.FormatBool(c.TrustProxyHeaders), Source: c.Source("trust_proxy_headers")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.IsAuditEnabled()), Source: c.Source("audit_enabled")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "log_dev", Value: strconv.FormatBool(c.LogDev), Source: c.Source("log_dev")},
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-24s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func parseBool(val string) bool {
	return val == "true" || val == "1" || val == "yes"
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

// maskURL hides the password part of a connection URL.
func maskURL(s string) string {
	at := strings.LastIndex(s, "@")
	scheme := strings.Index(s, "://")
	if at < 0 || scheme < 0 {
		return s
	}
	userinfo := s[scheme+3 : at]
	if colon := strings.Index(userinfo, ":"); colon >= 0 {
		return s[:scheme+3] + userinfo[:colon] + ":********" + s[at:]
	}
	return s
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
