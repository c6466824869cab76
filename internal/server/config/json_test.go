package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_http":  "www.example:9000",
		"database_dsn":        "app.db",
		"legacy_json_path":    "old/db.json",
		"secret_key":          "my_secret_key",
		"token_validity":      "1h",
		"cookie_name":         "session",
		"cookie_secure":       true,
		"default_quota_limit": 7,
		"admin_email":         "root@example.com",
		"admin_password":      "hunter2",
		"classifier_endpoint": "http://model:7860/predict",
		"upload_dir":          "spool",
		"s3_root_user":        "user",
		"s3_root_password":    "password",
		"s3_bucket":           "bucket",
		"s3_region":           "region",
		"s3_base_endpoint":    "base_endpoint",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "app.db", cfg.DatabaseDSN)
		assert.Equal(t, "old/db.json", cfg.LegacyJSONPath)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 1*time.Hour, cfg.TokenValidity)
		assert.Equal(t, "session", cfg.CookieName)
		assert.True(t, cfg.CookieSecure)
		assert.Equal(t, 7, cfg.DefaultQuotaLimit)
		assert.Equal(t, "root@example.com", cfg.AdminEmail)
		assert.Equal(t, "hunter2", cfg.AdminPassword)
		assert.Equal(t, "http://model:7860/predict", cfg.ClassifierEndpoint)
		assert.Equal(t, "spool", cfg.UploadDir)
		assert.Equal(t, "user", cfg.S3RootUser)
		assert.Equal(t, "password", cfg.S3RootPassword)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "base_endpoint", cfg.S3BaseEndpoint)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddrHTTP:  "defaults:1234",
			DatabaseDSN:       "app.db",
			SecretKey:         "key",
			TokenValidity:     2 * time.Hour,
			CookieName:        "auth",
			DefaultQuotaLimit: 20,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
		assert.Equal(t, "app.db", cfg.DatabaseDSN)
		assert.Equal(t, "key", cfg.SecretKey)
		assert.Equal(t, 2*time.Hour, cfg.TokenValidity)
		assert.Equal(t, "auth", cfg.CookieName)
		assert.Equal(t, 20, cfg.DefaultQuotaLimit)
	})

	t.Run("partial file keeps untouched fields", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{
			"endpoint_addr_http": "other:8080",
		})
		os.Args = []string{"testbin", "-config", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "other:8080", cfg.EndpointAddrHTTP)
		assert.Equal(t, "data/app.db", cfg.DatabaseDSN)
		assert.Equal(t, 2*time.Hour, cfg.TokenValidity)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
