package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string
	AllowedOrigin string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	DefaultVenue  string
}

// Load reads configuration from the environment with sane defaults.
// DATABASE_URL and REDIS_ADDR are empty by default, which selects the
// in-memory ledger and draft store.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGIN", "http://127.0.0.1:3000")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DEFAULT_VENUE", "spezia")

	return Config{
		Port:          v.GetString("PORT"),
		AllowedOrigin: v.GetString("ALLOWED_ORIGIN"),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		DefaultVenue:  v.GetString("DEFAULT_VENUE"),
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}
