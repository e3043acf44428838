package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	DBDriver    string // "postgres" or "sqlite"
	DatabaseURL string

	SessionSecret string
	SessionName   string
	CookieSecure  bool

	TeacherSecurityKey string
	RosterFile         string // optional JSON roster, overrides the embedded one

	TemplatesDir string
	StaticDir    string

	MealsCacheTTL      time.Duration
	NicknameMaxRetries int
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads the env file matching APP_ENV and builds the config from the environment.
// A missing env file is not an error; the process environment is used as is.
func Load() *Config {
	env := getEnv("APP_ENV", "development")
	envFile := ".env.local"
	if env == "production" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("No %s file found, reading env vars from system", envFile)
	}
	return FromEnv()
}

// FromEnv builds the config from the current process environment only.
func FromEnv() *Config {
	cfg := &Config{
		Port:     getEnv("PORT", "3000"),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=schoolhub port=5432 sslmode=disable TimeZone=Asia/Seoul"),

		SessionSecret: getEnv("SESSION_SECRET", "secret_key_change_me"),
		SessionName:   getEnv("SESSION_NAME", "schoolhub_session"),
		CookieSecure:  getEnv("COOKIE_SECURE", "false") == "true",

		TeacherSecurityKey: getEnv("TEACHER_SECURITY_KEY", "TCH-2025-SECURE"),
		RosterFile:         getEnv("ROSTER_FILE", ""),

		TemplatesDir: getEnv("TEMPLATES_DIR", "./web/templates"),
		StaticDir:    getEnv("STATIC_DIR", "./web/static"),
	}

	cfg.MealsCacheTTL = getDuration("MEALS_CACHE_TTL", 5*time.Minute)
	cfg.NicknameMaxRetries = getInt("NICKNAME_MAX_RETRIES", 5)
	if cfg.NicknameMaxRetries < 1 {
		cfg.NicknameMaxRetries = 1
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("WARNING: invalid %s=%q, using default %d", key, raw, fallback)
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("WARNING: invalid %s=%q, using default %s", key, raw, fallback)
		return fallback
	}
	return v
}
