package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort       string        `mapstructure:"HTTPPort"`
		Timeout        time.Duration `mapstructure:"HTTPTimeout"`
		ReadTimeout    time.Duration `mapstructure:"readTimeout"`
		IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
		AllowedOrigins []string      `mapstructure:"allowedOrigins"`
	} `mapstructure:"server"`
	Handlers struct {
		Prometheus struct {
			Enabled bool   `mapstructure:"enabled"`
			Port    string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host           string        `mapstructure:"host"`
			Password       string        `mapstructure:"password"`
			Port           string        `mapstructure:"port"`
			Username       string        `mapstructure:"username"`
			DB             string        `mapstructure:"db"`
			SSLMODE        string        `mapstructure:"SSLMODE"`
			MaxConns       int32         `mapstructure:"maxConns"`
			ConnectTimeout time.Duration `mapstructure:"connectTimeout"`
		} `mapstructure:"postgres"`
	} `mapstructure:"repositories"`
	Records struct {
		CacheTTL              time.Duration `mapstructure:"cacheTTL"`
		SearchCaseInsensitive bool          `mapstructure:"searchCaseInsensitive"`
	} `mapstructure:"records"`
	Events struct {
		Heartbeat        time.Duration `mapstructure:"heartbeat"`
		SubscriberBuffer int           `mapstructure:"subscriberBuffer"`
		WriteTimeout     time.Duration `mapstructure:"writeTimeout"`
	} `mapstructure:"events"`
}

// envBindings maps config keys onto the environment variables the service
// has always been deployed with.
var envBindings = map[string]string{
	"mode":                                 "APP_ENV",
	"server.HTTPPort":                      "HTTP_PORT",
	"repositories.postgres.host":           "DB_HOST",
	"repositories.postgres.port":           "DB_PORT",
	"repositories.postgres.username":       "DB_USER",
	"repositories.postgres.password":       "DB_PASS",
	"repositories.postgres.db":             "DB_NAME",
	"repositories.postgres.SSLMODE":        "DB_SSLMODE",
	"repositories.postgres.connectTimeout": "DB_CONNECT_TIMEOUT",
	"handlers.prometheus.port":             "METRICS_PORT",
	"records.searchCaseInsensitive":        "SEARCH_CASE_INSENSITIVE",
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	for key, env := range envBindings {
		if err = v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if config.Repositories.Postgres.MaxConns <= 0 {
		config.Repositories.Postgres.MaxConns = 10
	}
	if config.Repositories.Postgres.ConnectTimeout <= 0 {
		config.Repositories.Postgres.ConnectTimeout = 10 * time.Second
	}
	if config.Events.Heartbeat <= 0 {
		config.Events.Heartbeat = 15 * time.Second
	}
	if len(config.Server.AllowedOrigins) == 0 {
		config.Server.AllowedOrigins = []string{"*"}
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}
