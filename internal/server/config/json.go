package config

import (
	"encoding/json"
	"os"

	"github.com/jbtolen/wastesort/internal/flagx"
	"github.com/jbtolen/wastesort/internal/timex"
)

// JsonConfig is the JSON-file shape of Config. Interval fields use
// timex.Duration so the file can say "2h" as well as integer nanoseconds.
// Values are copied into the runtime Config after unmarshalling; empty
// strings leave the current (default) value in place so a partial file is
// valid.
type JsonConfig struct {
	EndpointAddrHTTP   string         `json:"endpoint_addr_http"`
	DatabaseDSN        string         `json:"database_dsn"`
	LegacyJSONPath     string         `json:"legacy_json_path"`
	SecretKey          string         `json:"secret_key"`
	TokenValidity      timex.Duration `json:"token_validity"`
	CookieName         string         `json:"cookie_name"`
	CookieSecure       *bool          `json:"cookie_secure"`
	DefaultQuotaLimit  int            `json:"default_quota_limit"`
	AdminEmail         string         `json:"admin_email"`
	AdminPassword      string         `json:"admin_password"`
	ClassifierEndpoint string         `json:"classifier_endpoint"`
	UploadDir          string         `json:"upload_dir"`
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
}

// parseJson overlays configuration from the JSON file named by -c/-config.
// No file flag means nothing to load. An unreadable or invalid file panics:
// a half-applied explicit config is worse than refusing to start.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.LegacyJSONPath != "" {
		config.LegacyJSONPath = c.LegacyJSONPath
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenValidity.Duration != 0 {
		config.TokenValidity = c.TokenValidity.Duration
	}
	if c.CookieName != "" {
		config.CookieName = c.CookieName
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.DefaultQuotaLimit != 0 {
		config.DefaultQuotaLimit = c.DefaultQuotaLimit
	}
	if c.AdminEmail != "" {
		config.AdminEmail = c.AdminEmail
	}
	if c.AdminPassword != "" {
		config.AdminPassword = c.AdminPassword
	}
	if c.ClassifierEndpoint != "" {
		config.ClassifierEndpoint = c.ClassifierEndpoint
	}
	if c.UploadDir != "" {
		config.UploadDir = c.UploadDir
	}
	if c.S3RootUser != "" {
		config.S3RootUser = c.S3RootUser
	}
	if c.S3RootPassword != "" {
		config.S3RootPassword = c.S3RootPassword
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
}
