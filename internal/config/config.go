package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr    string
	CORSOrigins []string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GeminiKey   string
	GeminiModel string
	AITimeout   time.Duration
	PromptsPath string

	JWTSecret string

	SessionTTL        time.Duration
	SessionMaxHistory int

	RateLimitPerMinute int

	LogLevel  string
	LogFormat string
}

// Load reads .env (if present), then CONFIG_PATH (if set), then the environment.
// Environment variables win over the file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		HTTPAddr:    v.GetString("http.addr"),
		CORSOrigins: v.GetStringSlice("http.cors_origins"),

		DBHost:     v.GetString("db.host"),
		DBPort:     v.GetInt("db.port"),
		DBUser:     v.GetString("db.user"),
		DBPassword: v.GetString("db.password"),
		DBName:     v.GetString("db.name"),
		DBSSLMode:  v.GetString("db.sslmode"),

		RedisAddr:     v.GetString("redis.addr"),
		RedisPassword: v.GetString("redis.password"),
		RedisDB:       v.GetInt("redis.db"),

		GeminiKey:   v.GetString("gemini.api_key"),
		GeminiModel: v.GetString("gemini.model"),
		AITimeout:   v.GetDuration("ai.timeout"),
		PromptsPath: v.GetString("ai.prompts_path"),

		JWTSecret: v.GetString("jwt.secret"),

		SessionTTL:        v.GetDuration("session.ttl"),
		SessionMaxHistory: v.GetInt("session.max_history"),

		RateLimitPerMinute: v.GetInt("ratelimit.per_minute"),

		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
	}

	if cfg.DBPort <= 0 {
		cfg.DBPort = 5432
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cors_origins", []string{"*"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.timeout", 60*time.Second)

	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.max_history", 200)

	v.SetDefault("ratelimit.per_minute", 30)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.GeminiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	return nil
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}
