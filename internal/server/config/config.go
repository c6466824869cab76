// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the classification API server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public HTTP endpoint.
//   - DatabaseDSN: sqlite file path (default) or PostgreSQL URL.
//   - LegacyJSONPath: deprecated flat-file user export, imported once.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - TokenValidity: bearer token (and session cookie) lifetime.
//   - CookieName / CookieSecure: session cookie settings; Secure belongs on in HTTPS deployments.
//   - DefaultQuotaLimit: metered-call allowance for new users.
//   - AdminEmail / AdminPassword: bootstrap admin seed; empty disables seeding.
//   - ClassifierEndpoint: remote inference service URL; empty disables the classify route.
//   - UploadDir: local spool for uploaded images when S3 is not configured.
//   - S3RootUser / S3RootPassword / S3Bucket / S3Region / S3BaseEndpoint: object storage settings.
type Config struct {
	EndpointAddrHTTP   string
	DatabaseDSN        string
	LegacyJSONPath     string
	SecretKey          string
	TokenValidity      time.Duration
	CookieName         string
	CookieSecure       bool
	DefaultQuotaLimit  int
	AdminEmail         string
	AdminPassword      string
	ClassifierEndpoint string
	UploadDir          string
	S3RootUser         string
	S3RootPassword     string
	S3Bucket           string
	S3Region           string
	S3BaseEndpoint     string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":3000"
	c.DatabaseDSN = "data/app.db"
	c.LegacyJSONPath = "data/db.json"
	c.SecretKey = "dev_secret_change_me"
	c.TokenValidity = 2 * time.Hour
	c.CookieName = "auth"
	c.CookieSecure = false
	c.DefaultQuotaLimit = 20
	c.AdminEmail = "admin@admin.com"
	c.AdminPassword = "111"
	c.ClassifierEndpoint = ""
	c.UploadDir = "data/uploads"
	c.S3RootUser = ""
	c.S3RootPassword = ""
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
