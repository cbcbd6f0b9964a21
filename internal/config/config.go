package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int `koanf:"port"`
	} `koanf:"server"`

	Auth struct {
		JWTSecret            string `koanf:"jwt_secret"`
		AccessTokenMinutes   int    `koanf:"access_token_minutes"`
		RefreshTokenDays     int    `koanf:"refresh_token_days"`
		LoginRequestsPerMin  int    `koanf:"login_requests_per_min"`
	} `koanf:"auth"`

	Broadcast struct {
		Channel string `koanf:"channel"`
	} `koanf:"broadcast"`
}

// LoadConfig loads the configuration from a file
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	// Set up default configuration
	k.Load(confmap.Provider(map[string]interface{}{
		"server.port":                 8888,
		"auth.access_token_minutes":   15,
		"auth.refresh_token_days":     30,
		"auth.login_requests_per_min": 10,
		"broadcast.channel":           "chat-room",
	}, "."), nil)

	// Load from TOML file if it exists
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		// Try to load from default locations
		defaultPaths := []string{"./aulavirtual.toml", "$HOME/.aulavirtual.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Load from environment variables with prefix AULAVIRTUAL_
	k.Load(env.Provider("AULAVIRTUAL_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(s), "_", ".", -1)
	}), nil)

	// Unmarshal into Config struct
	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

// InitConfig initializes a new configuration file
func InitConfig(configPath string) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# Aula Virtual Configuration

[server]
port = 8888

[auth]
jwt_secret = "change-me"
access_token_minutes = 15
refresh_token_days = 30
login_requests_per_min = 10

[broadcast]
channel = "chat-room"
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}

// Validate validates the configuration
func Validate(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", config.Server.Port)
	}

	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("auth jwt_secret is required")
	}

	if config.Auth.AccessTokenMinutes <= 0 {
		return fmt.Errorf("auth access_token_minutes must be positive")
	}

	if config.Auth.RefreshTokenDays <= 0 {
		return fmt.Errorf("auth refresh_token_days must be positive")
	}

	if config.Broadcast.Channel == "" {
		return fmt.Errorf("broadcast channel is required")
	}

	return nil
}
