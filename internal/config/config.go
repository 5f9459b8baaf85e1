package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the server reads from the environment.
type Config struct {
	Port    string
	BaseURL string

	MongoURI          string
	DBName            string
	MongoTransactions bool

	JWTSecret    string
	TokenExpiry  time.Duration
	CookieSecure bool

	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPPassword string
	SMTPTimeout  time.Duration

	CORSOrigins   []string
	UnverifiedTTL time.Duration

	AuthRateRequests int
	AuthRateWindow   time.Duration

	// TrustProxyHeaders keys rate limits on X-Forwarded-For. Enable only
	// behind a proxy that overwrites it.
	TrustProxyHeaders bool

	LogLevel string
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		BaseURL: strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:8080"), "/"),

		MongoURI:          getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:            getEnv("MONGO_DB", "threads"),
		MongoTransactions: getBool("MONGO_TRANSACTIONS", false),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		TokenExpiry:  getDuration("SESSION_TTL", 15*24*time.Hour),
		CookieSecure: getBool("COOKIE_SECURE", false),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPSender:   os.Getenv("SMTP_SENDER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPTimeout:  getDuration("SMTP_TIMEOUT", 10*time.Second),

		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		UnverifiedTTL: getDuration("UNVERIFIED_TTL", 24*time.Hour),

		AuthRateRequests: getInt("RATELIMIT_AUTH_REQUESTS", 5),
		AuthRateWindow:   time.Duration(getInt("RATELIMIT_AUTH_WINDOW_SEC", 60)) * time.Second,

		TrustProxyHeaders: getBool("TRUST_PROXY_HEADERS", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errMissing("JWT_SECRET")
	}
	if c.MongoURI == "" {
		return errMissing("MONGO_URI")
	}
	return nil
}

type missingError string

func (e missingError) Error() string { return "missing required setting " + string(e) }

func errMissing(key string) error { return missingError(key) }

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// getDuration accepts Go durations ("15m", "24h").
func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
