package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/var/lib/pmemo"},
		Auth:   AuthConfig{TokenTTL: 24 * time.Hour},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty environment", func(c *Config) { c.App.Environment = "" }},
		{"unknown environment", func(c *Config) { c.App.Environment = "qa" }},
		{"unknown log level", func(c *Config) { c.Logger.Level = "verbose" }},
		{"empty data path", func(c *Config) { c.Data.BasePath = "" }},
		{"zero token TTL", func(c *Config) { c.Auth.TokenTTL = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGetConfigValue(t *testing.T) {
	t.Setenv("PMEMO_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "PMEMO_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "PMEMO_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "PMEMO_TEST_MISSING", "default"))
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t,
		[]string{"http://localhost:3000", "https://memo.example.com"},
		splitOrigins("http://localhost:3000, https://memo.example.com"))
	assert.Empty(t, splitOrigins(" , "))
}

func TestDataPaths(t *testing.T) {
	cfg := Config{Data: DataConfig{BasePath: "/var/lib/pmemo"}}
	assert.Equal(t, "/var/lib/pmemo/badger", cfg.BadgerPath())
	assert.Equal(t, "/var/lib/pmemo/search.bleve", cfg.SearchIndexPath())
}

func TestExpandPath(t *testing.T) {
	got, err := expandPath("", "/default/path")
	require.NoError(t, err)
	assert.Equal(t, "/default/path", got)

	got, err = expandPath("/already/absolute", "")
	require.NoError(t, err)
	assert.Equal(t, "/already/absolute", got)
}
