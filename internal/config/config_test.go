package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8888, cfg.Server.Port)
	assert.Equal(t, 15, cfg.Auth.AccessTokenMinutes)
	assert.Equal(t, 30, cfg.Auth.RefreshTokenDays)
	assert.Equal(t, 10, cfg.Auth.LoginRequestsPerMin)
	assert.Equal(t, "chat-room", cfg.Broadcast.Channel)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aulavirtual.toml")
	content := `
[server]
port = 9000

[auth]
jwt_secret = "test-secret"

[broadcast]
channel = "aula-chat"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "aula-chat", cfg.Broadcast.Channel)
	// Values not present in the file keep their defaults
	assert.Equal(t, 15, cfg.Auth.AccessTokenMinutes)
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aulavirtual.toml")

	require.NoError(t, InitConfig(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	// A second init must not clobber the existing file
	assert.Error(t, InitConfig(path))
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := LoadConfig("")
		require.NoError(t, err)
		cfg.Auth.JWTSecret = "secret"
		return cfg
	}

	t.Run("ValidConfigPasses", func(t *testing.T) {
		assert.NoError(t, Validate(valid()))
	})

	t.Run("MissingJWTSecret", func(t *testing.T) {
		cfg := valid()
		cfg.Auth.JWTSecret = ""
		assert.Error(t, Validate(cfg))
	})

	t.Run("PortOutOfRange", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Port = 70000
		assert.Error(t, Validate(cfg))
	})

	t.Run("EmptyBroadcastChannel", func(t *testing.T) {
		cfg := valid()
		cfg.Broadcast.Channel = ""
		assert.Error(t, Validate(cfg))
	})
}
