package config

import (
	"fmt"
	"log"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `env:"APP_ENV" env-default:"development"`
	Port     string `env:"PORT" env-default:"8080"`
	GinMode  string `env:"GIN_MODE" env-default:"debug"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	DatabaseURL string `env:"DATABASE_URL" env-default:"host=localhost user=postgres password=postgres dbname=yamdb port=5432 sslmode=disable"`

	JWTSecret      string        `env:"JWT_SECRET" env-default:"secret_key_change_me"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" env-default:"24h"`

	CORSOrigins string `env:"CORS_ORIGINS" env-default:"*"`

	SMTP SMTPConfig
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     string `env:"SMTP_PORT"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	From     string `env:"SMTP_FROM" env-default:"yamdb@yamdb.com"`
}

// Enabled reports whether every setting needed to reach the SMTP server is present.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Port != "" && c.Username != "" && c.Password != "" && c.From != ""
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	var cfg Config
	unsetEmpty(reflect.TypeOf(cfg))
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	return &cfg, nil
}

// unsetEmpty drops variables that are set but blank, so "PORT=" in a .env
// file falls back to the default instead of failing to parse.
func unsetEmpty(t reflect.Type) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Type.Kind() == reflect.Struct && f.Tag.Get("env") == "" {
			unsetEmpty(f.Type)
			continue
		}
		name := f.Tag.Get("env")
		if v, ok := os.LookupEnv(name); ok && strings.TrimSpace(v) == "" {
			_ = os.Unsetenv(name)
		}
	}
}

// Origins splits CORSOrigins on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
