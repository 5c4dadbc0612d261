package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	ServerPort   string
	StoreBackend string
	DatabaseURL  string
	LogMode      string

	Redis struct {
		Addr     string
		Password string
		DB       int
		ItemTTL  time.Duration
	}
}

// Load reads configuration from the environment (and .env, if present). A config
// file, when given, supplies values that the environment does not override.
func Load(cfgFile string) (*Config, error) {
	// Load .env file if it exists (useful for local dev)
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("server_port", "8080")
	v.SetDefault("store_backend", BackendPostgres)
	v.SetDefault("log_mode", "development")
	v.SetDefault("redis_db", 0)
	v.SetDefault("item_cache_ttl", 5*time.Minute)
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	cfg := &Config{
		ServerPort:   v.GetString("server_port"),
		StoreBackend: v.GetString("store_backend"),
		DatabaseURL:  v.GetString("database_url"),
		LogMode:      v.GetString("log_mode"),
	}
	cfg.Redis.Addr = v.GetString("redis_addr")
	cfg.Redis.Password = v.GetString("redis_password")
	cfg.Redis.DB = v.GetInt("redis_db")
	cfg.Redis.ItemTTL = v.GetDuration("item_cache_ttl")

	switch cfg.StoreBackend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL must be set")
		}
	case BackendMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	if cfg.Redis.ItemTTL <= 0 {
		return nil, fmt.Errorf("ITEM_CACHE_TTL must be positive")
	}

	return cfg, nil
}
