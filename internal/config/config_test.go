package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		HTTP:      HTTPConfig{Port: "5000"},
		Store:     StoreConfig{Backend: BackendMongo, MongoURI: "mongodb://localhost:27017", Database: "club"},
		Auth:      AuthConfig{JWTSecret: "0123456789abcdef", TokenTTL: time.Hour, BcryptCost: 10},
		Bootstrap: BootstrapConfig{AdminID: "brahmastra01"},
		Log:       LogConfig{Level: "info"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errorString string
	}{
		{"valid", func(*Config) {}, ""},
		{"memory backend", func(c *Config) { c.Store = StoreConfig{Backend: BackendMemory} }, ""},
		{"non-numeric port", func(c *Config) { c.HTTP.Port = "abc" }, "invalid port 'abc': must be a number"},
		{"port out of range", func(c *Config) { c.HTTP.Port = "70000" }, "invalid port 70000: must be between 1 and 65535"},
		{"unknown backend", func(c *Config) { c.Store.Backend = "sqlite" }, "invalid store backend 'sqlite'"},
		{"bad mongo scheme", func(c *Config) { c.Store.MongoURI = "http://localhost" }, "invalid MONGODB_URI scheme 'http'"},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "JWT_SECRET must be at least 16 characters"},
		{"bad bcrypt cost", func(c *Config) { c.Auth.BcryptCost = 2 }, "invalid bcrypt cost 2"},
		{"bad amqp scheme", func(c *Config) { c.AMQP.URL = "http://broker"; c.AMQP.Exchange = "x" }, "invalid AMQP URL scheme 'http'"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level 'loud'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorString == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestConfig_ValidateReportsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = "abc"
	cfg.Auth.JWTSecret = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.HTTP.Port)
	assert.Equal(t, BackendMongo, cfg.Store.Backend)
	assert.Equal(t, 168*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "brahmastra01", cfg.Bootstrap.AdminID)
	assert.Equal(t, "0.0.0.0:5000", cfg.Addr())
}

func TestLoad_EnvFile(t *testing.T) {
	t.Setenv("PORT", "6000")
	for _, key := range []string{"JWT_SECRET", "STORE_BACKEND"} {
		prev, ok := os.LookupEnv(key)
		require.NoError(t, os.Unsetenv(key))
		t.Cleanup(func() {
			if ok {
				os.Setenv(key, prev)
			} else {
				os.Unsetenv(key)
			}
		})
	}

	path := filepath.Join(t.TempDir(), ".env")
	content := "JWT_SECRET=from-the-env-file-123\nSTORE_BACKEND=memory\nPORT=7000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-the-env-file-123", cfg.Auth.JWTSecret)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "6000", cfg.HTTP.Port, "process environment wins over the file")
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load("")
	assert.Error(t, err)
}
