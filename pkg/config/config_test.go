package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BDeshi155/pdf-gpt/pkg/storage"
)

// TestGetEnv tests the getEnv helper function
func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns env value when set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when env not set",
			key:          "TEST_VAR_NOT_SET",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv(tt.key, tt.envValue)
				defer os.Unsetenv(tt.key)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestGetEnvBool tests the getEnvBool helper function
func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{"returns true for 'true'", "true", false, true},
		{"returns true for '1'", "1", false, true},
		{"returns false for 'false'", "false", true, false},
		{"returns default when unset", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				os.Setenv("TEST_BOOL", tt.envValue)
				defer os.Unsetenv("TEST_BOOL")
			}

			got := getEnvBool("TEST_BOOL", tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestGetEnvDuration tests the getEnvDuration helper function
func TestGetEnvDuration(t *testing.T) {
	os.Setenv("TEST_DURATION", "45s")
	defer os.Unsetenv("TEST_DURATION")

	if got := getEnvDuration("TEST_DURATION", time.Minute); got != 45*time.Second {
		t.Errorf("getEnvDuration() = %v, want 45s", got)
	}

	if got := getEnvDuration("TEST_DURATION_UNSET", time.Minute); got != time.Minute {
		t.Errorf("getEnvDuration() default = %v, want 1m", got)
	}

	// Invalid value falls back to default
	os.Setenv("TEST_DURATION_BAD", "eventually")
	defer os.Unsetenv("TEST_DURATION_BAD")
	if got := getEnvDuration("TEST_DURATION_BAD", time.Minute); got != time.Minute {
		t.Errorf("getEnvDuration() invalid = %v, want 1m", got)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	os.Setenv("PDFGPT_POSTGRES_URL", "postgres://localhost/pdfgpt_test")
	defer os.Unsetenv("PDFGPT_POSTGRES_URL")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.HealthPort)
	assert.Equal(t, "filesystem", cfg.Blob.Type)
	assert.Equal(t, 30*24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Session.RefreshInterval)
	assert.Equal(t, 15*time.Minute, cfg.Session.StalenessWindow)
	assert.Equal(t, "pdfgpt_session", cfg.Session.CookieName)
}

func validConfig() *Config {
	blob := storage.DefaultConfig()
	return &Config{
		Server:   ServerConfig{Port: "8080", HealthPort: "9090"},
		Database: DatabaseConfig{URL: "postgres://localhost/pdfgpt"},
		Blob:     blob,
		Session: SessionConfig{
			TTL:             30 * 24 * time.Hour,
			RefreshInterval: 5 * time.Minute,
			StalenessWindow: 15 * time.Minute,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing port", func(c *Config) { c.Server.Port = "" }, "server port"},
		{"same ports", func(c *Config) { c.Server.HealthPort = "8080" }, "must be different"},
		{"missing postgres", func(c *Config) { c.Database.URL = "" }, "postgres URL"},
		{"bad storage type", func(c *Config) { c.Blob.Type = "tape" }, "invalid storage type"},
		{"s3 without bucket", func(c *Config) { c.Blob.Type = "s3"; c.Blob.S3Bucket = "" }, "S3 bucket"},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }, "session TTL"},
		{"zero refresh", func(c *Config) { c.Session.RefreshInterval = 0 }, "refresh interval"},
		{"staleness below refresh", func(c *Config) { c.Session.StalenessWindow = time.Minute }, "staleness window"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
