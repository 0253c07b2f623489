package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Environment struct {
	IsDevelopment bool
	Domain        string
	CookieSecure  bool
	Port          string

	DBDriver   string
	DBURL      string
	SQLitePath string

	AllowedOrigins []string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	GeminiAPIKey      string
	GeminiModel       string
	GenerationTimeout time.Duration

	ViewMinZoom    float64
	ViewMaxZoom    float64
	ViewSessionTTL time.Duration

	LogLevel string
}

var defaultOrigins = []string{"http://localhost:3000"}

// Load reads the environment. A missing COOKIE_DOMAIN means we're in development.
func Load() (*Environment, error) {
	domain := os.Getenv("COOKIE_DOMAIN")
	isDev := domain == ""
	if isDev {
		domain = "localhost"
	}

	dbURL := os.Getenv("DB_URL")
	driver := getEnv("DB_DRIVER", "sqlite")
	if os.Getenv("DB_DRIVER") == "" && dbURL != "" {
		driver = "postgres"
	}

	env := &Environment{
		IsDevelopment: isDev,
		Domain:        domain,
		CookieSecure:  !isDev,
		Port:          getEnv("PORT", "8080"),

		DBDriver:   driver,
		DBURL:      dbURL,
		SQLitePath: getEnv("SQLITE_PATH", "roadmaps.db"),

		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", defaultOrigins),

		JWTSecret:   os.Getenv("JWT_SECRET_KEY"),
		JWTIssuer:   getEnv("JWT_ISSUER", "roadmap-api"),
		JWTAudience: getEnv("JWT_AUDIENCE", "roadmap-web"),

		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		GenerationTimeout: getEnvDuration("GENERATION_TIMEOUT", 60*time.Second),

		ViewMinZoom:    getEnvFloat("VIEW_MIN_ZOOM", 0.3),
		ViewMaxZoom:    getEnvFloat("VIEW_MAX_ZOOM", 1.5),
		ViewSessionTTL: getEnvDuration("VIEW_SESSION_TTL", 2*time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := env.Validate(); err != nil {
		return nil, err
	}
	return env, nil
}

func (e *Environment) Validate() error {
	switch e.DBDriver {
	case "postgres":
		if e.DBURL == "" {
			return fmt.Errorf("DB_URL is required for the postgres driver")
		}
	case "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", e.DBDriver)
	}

	if e.ViewMinZoom <= 0 || e.ViewMinZoom > e.ViewMaxZoom {
		return fmt.Errorf("invalid zoom range [%v, %v]", e.ViewMinZoom, e.ViewMaxZoom)
	}

	if e.IsDevelopment {
		return nil
	}
	if e.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required outside development")
	}
	if e.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required outside development")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
