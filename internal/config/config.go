package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	ServiceName  string
	Port         string
	Database     DatabaseConfig
	NatsURL      string
	OtelEndpoint string
}

type DatabaseConfig struct {
	Driver   string
	User     string
	Password string
	Host     string
	Port     string
	Name     string
	SSLMode  string
	DSN      string
}

// Load reads configuration from the environment. Call godotenv first if a
// .env file should be honoured.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVICE_NAME", "registration-service")
	v.SetDefault("APP_PORT", "8003")
	v.SetDefault("DB_DRIVER", "pgx")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{"DB_USER", "DB_PASSWORD", "DB_NAME", "DB_DSN", "NATS_URL", "OTEL_EXPORTER_OTLP_ENDPOINT"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := &Config{
		ServiceName: v.GetString("SERVICE_NAME"),
		Port:        v.GetString("APP_PORT"),
		Database: DatabaseConfig{
			Driver:   v.GetString("DB_DRIVER"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			DSN:      v.GetString("DB_DSN"),
		},
		NatsURL:      v.GetString("NATS_URL"),
		OtelEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	switch cfg.Database.Driver {
	case "pgx", "sqlite3":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	if cfg.Database.Driver == "sqlite3" && cfg.Database.DSN == "" {
		return nil, fmt.Errorf("DB_DSN is required when DB_DRIVER=sqlite3")
	}

	return cfg, nil
}

// URL returns the connection string handed to sql.Open.
func (c DatabaseConfig) URL() string {
	if c.DSN != "" {
		return c.DSN
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}
