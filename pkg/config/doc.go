// Package config provides configuration management for the job tracker.
//
// # Configuration Sources
//
// Values are resolved in order, later sources winning:
//
//   - Built-in defaults
//   - $JOBTRACKER_CONFIG_PATH/jobtracker.yml (default /etc/jobtracker)
//   - Environment variables
//
// Every attribute remembers which source it came from; see
// `jobtrackerctl configuration show`.
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string (required)
//   - JOBTRACKER_SECRET_KEY: HMAC key for issued tokens (required, >= 32 bytes)
//   - GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, GOOGLE_REDIRECT_URL: federated login
//   - JOBTRACKER_CORS_ALLOWED_ORIGINS: comma separated origins, "*" for any
//   - JOBTRACKER_ACCESS_TOKEN_TTL, JOBTRACKER_REFRESH_TOKEN_TTL: seconds
//   - JOBTRACKER_FOLLOWUP_DAYS: days before an applied application is stale
//   - JOBTRACKER_PAGE_SIZE, JOBTRACKER_MAX_PAGE_SIZE: list pagination
//   - JOBTRACKER_TIME_ZONE: zone used to decide what "today" is
//   - JOBTRACKER_DEV_AUTH_FALLBACK, JOBTRACKER_DEV_USERNAME: development only
//   - JOBTRACKER_AUTH_RATE_LIMIT: requests per second per client on auth endpoints
//   - JOBTRACKER_AUDIT_ENABLED: security audit log
//   - LOG_LEVEL, LOG_DEV: logging
package config
