package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JOBTRACKER_CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1800, cfg.AccessTokenTTL)
	assert.Equal(t, 86400, cfg.RefreshTokenTTL)
	assert.Equal(t, 3, cfg.FollowupDays)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.DevAuthFallback)
	assert.False(t, cfg.TrustProxyHeaders)
	assert.True(t, cfg.IsAuditEnabled())
	assert.Equal(t, SourceDefault, cfg.Source("followup_days"))
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	dir := t.TempDir()
	yml := `
database_url: postgres://file@localhost/jobs
followup_days: 1
page_size: 25
cors_allowed_origins:
  - http://localhost:5173
audit_enabled: false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(yml), 0o600))
	t.Setenv("JOBTRACKER_CONFIG_PATH", dir)
	t.Setenv("JOBTRACKER_FOLLOWUP_DAYS", "5")
	t.Setenv("JOBTRACKER_TRUST_PROXY_HEADERS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://file@localhost/jobs", cfg.DatabaseURL)
	assert.Equal(t, SourceFile, cfg.Source("database_url"))
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.IsAuditEnabled())

	assert.Equal(t, 5, cfg.FollowupDays)
	assert.Equal(t, SourceEnvironment, cfg.Source("followup_days"))
	assert.True(t, cfg.TrustProxyHeaders)
}

func TestLoad_InvalidEnvironmentValue(t *testing.T) {
	t.Setenv("JOBTRACKER_CONFIG_PATH", t.TempDir())
	t.Setenv("JOBTRACKER_PAGE_SIZE", "ten")

	_, err := Load()
	assert.ErrorContains(t, err, "JOBTRACKER_PAGE_SIZE")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := New()
		c.DatabaseURL = "postgres://localhost/jobs"
		c.SecretKey = testSecret
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing database", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: "database_url"},
		{name: "short secret", mutate: func(c *Config) { c.SecretKey = "short" }, wantErr: "secret_key"},
		{name: "access outlives refresh", mutate: func(c *Config) { c.AccessTokenTTL = c.RefreshTokenTTL }, wantErr: "access_token_ttl"},
		{name: "page size over max", mutate: func(c *Config) { c.PageSize = 500 }, wantErr: "page_size"},
		{name: "unknown zone", mutate: func(c *Config) { c.TimeZone = "Mars/Olympus" }, wantErr: "time_zone"},
		{name: "host local zone", mutate: func(c *Config) { c.TimeZone = "Local" }, wantErr: "IANA"},
		{name: "dev fallback without user", mutate: func(c *Config) {
			c.DevAuthFallback = true
			c.DevUsername = ""
		}, wantErr: "dev_username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLocation(t *testing.T) {
	c := New()
	assert.Equal(t, "America/Los_Angeles", c.Location().String())

	c.TimeZone = "Local"
	assert.Equal(t, "UTC", c.Location().String())

	c.TimeZone = "Mars/Olympus"
	assert.Equal(t, "UTC", c.Location().String())
}

func TestAttributes_MasksSecrets(t *testing.T) {
	c := New()
	c.DatabaseURL = "postgres://jobs:hunter2@db:5432/jobs"
	c.SecretKey = testSecret

	values := map[string]string{}
	for _, a := range c.Attributes() {
		values[a.Name] = a.Value
	}

	assert.Equal(t, "postgres://jobs:********@db:5432/jobs", values["database_url"])
	assert.Equal(t, "********", values["secret_key"])
	assert.Empty(t, values["google_client_secret"])
}
