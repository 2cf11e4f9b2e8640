package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the core runtime configuration. Feature-specific settings
// (cache, rate limiting, redis, notifications, TMDB) have their own loaders
// so that they can default independently.
type Config struct {
	Env    string // application environment (e.g. "dev", "prod")
	Port   string // HTTP port to listen on
	DBUser string
	DBPass string // database password (optional)
	DBHost string
	DBPort string
	DBName string

	// IDPSecret verifies sign-in assertions handed out by the identity provider.
	IDPSecret       string
	SessionTTLHours int
	SessionCookie   string
	CookieSecure    bool

	ScheduleTimezone      string // zone used to turn schedule inputs into calendar days
	AllowSameDaySchedules bool   // false rejects a second movie on an already scheduled day

	CORSOrigins []string
	SentryDSN   string
}

// Load reads a .env file when one exists and then builds Config from the
// environment. Required variables are enforced by must(); missing values
// terminate the process.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}

	return Config{
		Env:    must("APP_ENV"),
		Port:   must("APP_PORT"),
		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		IDPSecret:       must("IDP_SHARED_SECRET"),
		SessionTTLHours: envInt("SESSION_TTL_HOURS", 720),
		SessionCookie:   envStr("SESSION_COOKIE", "session_token"),
		CookieSecure:    envBool("SESSION_COOKIE_SECURE", true),

		ScheduleTimezone:      envStr("SCHEDULE_TIMEZONE", "UTC"),
		AllowSameDaySchedules: envBool("SCHEDULE_ALLOW_SAME_DAY", true),

		CORSOrigins: splitList(envStr("CORS_ORIGINS", "http://localhost:3000")),
		SentryDSN:   os.Getenv("SENTRY_DSN"),
	}
}

// must retrieves the value of a required environment variable and exits
// when it is unset or empty.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}
