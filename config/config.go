package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the assistant.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Scrape    ScrapeConfig    `mapstructure:"scrape"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug                bool          `mapstructure:"debug"`
	LogLevel             string        `mapstructure:"log_level"`
	DefaultTimeout       time.Duration `mapstructure:"default_timeout"`
	MaxConcurrentQueries int           `mapstructure:"max_concurrent_queries"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Listen    string `mapstructure:"listen"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// LLMConfig contains LLM provider configuration.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // openai
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`

	CostPer1KInput  float64 `mapstructure:"cost_per_1k_input"`
	CostPer1KOutput float64 `mapstructure:"cost_per_1k_output"`
}

// SourcesConfig contains external retrieval source settings.
type SourcesConfig struct {
	WebSearch WebSearchConfig `mapstructure:"web_search"`
}

// WebSearchConfig contains web search API settings.
type WebSearchConfig struct {
	BraveAPIKey  string        `mapstructure:"brave_api_key"`
	SerperAPIKey string        `mapstructure:"serper_api_key"`
	MaxResults   int           `mapstructure:"max_results"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// ScrapeConfig contains university page scraping settings.
type ScrapeConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxChars    int           `mapstructure:"max_chars"`
	RefreshCron string        `mapstructure:"refresh_cron"`
}

// StorageConfig contains persistence settings.
type StorageConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains Postgres connection settings.
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// TelemetryConfig contains monitoring settings.
type TelemetryConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	CostTracking bool `mapstructure:"cost_tracking"`
}

// DSN builds a Postgres connection string from the configured fields.
func (p PostgresConfig) DSN() (string, error) {
	if p.URL != "" {
		return p.URL, nil
	}
	if p.Host == "" || p.DBName == "" {
		return "", fmt.Errorf("postgres not configured (storage.postgres.host/dbname or url)")
	}
	port := p.Port
	if port == 0 {
		port = 5432
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl), nil
}

// Addr returns the Redis host:port address.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LoadConfig loads configuration from an optional file plus environment
// variables. A missing config file is fine; defaults and env cover it.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gradscout")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("GRADSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	overrideFromEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.debug", false)
	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.default_timeout", "15s")
	v.SetDefault("general.max_concurrent_queries", 8)

	v.SetDefault("server.listen", ":10001")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.timeout", "30s")

	v.SetDefault("sources.web_search.max_results", 10)
	v.SetDefault("sources.web_search.timeout", "15s")

	v.SetDefault("scrape.enabled", true)
	v.SetDefault("scrape.timeout", "20s")
	v.SetDefault("scrape.max_chars", 20000)
	v.SetDefault("scrape.refresh_cron", "@daily")

	v.SetDefault("storage.postgres.port", 5432)
	v.SetDefault("storage.postgres.sslmode", "disable")
	v.SetDefault("storage.postgres.timeout", "5s")
	v.SetDefault("storage.redis.host", "")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.ttl", "10m")

	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.cost_tracking", true)
}

// overrideFromEnv maps well-known environment variables onto config keys so
// deployments keep secrets out of files.
func overrideFromEnv(v *viper.Viper) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		v.Set("llm.api_key", key)
	}
	if key := os.Getenv("BRAVE_SEARCH_KEY"); key != "" {
		v.Set("sources.web_search.brave_api_key", key)
	}
	if key := os.Getenv("SERPER_API_KEY"); key != "" {
		v.Set("sources.web_search.serper_api_key", key)
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		v.Set("server.jwt_secret", secret)
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		v.Set("storage.postgres.url", url)
	}
	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		v.Set("storage.postgres.host", host)
	}
	if port := os.Getenv("POSTGRES_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			v.Set("storage.postgres.port", p)
		}
	}
	if user := os.Getenv("POSTGRES_USER"); user != "" {
		v.Set("storage.postgres.user", user)
	}
	if pass := os.Getenv("POSTGRES_PASSWORD"); pass != "" {
		v.Set("storage.postgres.password", pass)
	}
	if db := os.Getenv("POSTGRES_DB"); db != "" {
		v.Set("storage.postgres.dbname", db)
	}

	if host := os.Getenv("REDIS_HOST"); host != "" {
		v.Set("storage.redis.host", host)
	}
	if port := os.Getenv("REDIS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			v.Set("storage.redis.port", p)
		}
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		v.Set("storage.redis.password", pass)
	}
}
