package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	City   string
	Budget int

	RentFactor           float64
	OpportunityThreshold float64
	ReferenceMethod      string
	ReferenceTTL         time.Duration

	ListingSource string
	ListingLimit  int
	SelectorsFile string

	GeoAPIURL      string
	DVFAPIURL      string
	SNCFAPIURL     string
	SNCFAPIKey     string
	DestinationLat float64
	DestinationLon float64

	HTTPTimeout    time.Duration
	HTTPRatePerSec float64

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	PagesToScrape  int
	ChromeBin      string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MongoURI string
	MongoDB  string

	RabbitMQURL   string
	RabbitMQQueue string

	CSVOutputPath string
	HTTPPort      int
	LogLevel      string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		City:   getEnv("CITY", "Bordeaux"),
		Budget: getEnvInt("BUDGET", 350000),

		RentFactor:           getEnvFloat("RENT_FACTOR", 0.006),
		OpportunityThreshold: getEnvFloat("OPPORTUNITY_THRESHOLD", 7.0),
		ReferenceMethod:      strings.ToLower(getEnv("REFERENCE_METHOD", "mean")),
		ReferenceTTL:         getEnvDuration("REFERENCE_TTL", 24*time.Hour),

		ListingSource: strings.ToLower(getEnv("LISTING_SOURCE", "demo")),
		ListingLimit:  getEnvInt("LISTING_LIMIT", 10),
		SelectorsFile: getEnv("SELECTORS_FILE", "./selectors.yaml"),

		GeoAPIURL:      getEnv("GEO_API_URL", "https://geo.api.gouv.fr"),
		DVFAPIURL:      getEnv("DVF_API_URL", "http://api.cquest.org/dvf"),
		SNCFAPIURL:     getEnv("SNCF_API_URL", "https://api.sncf.com/v1"),
		SNCFAPIKey:     getEnv("SNCF_API_KEY", ""),
		DestinationLat: getEnvFloat("DESTINATION_LAT", 48.8443),
		DestinationLon: getEnvFloat("DESTINATION_LON", 2.3744),

		HTTPTimeout:    getEnvDuration("HTTP_TIMEOUT", 15*time.Second),
		HTTPRatePerSec: getEnvFloat("HTTP_RATE_PER_SEC", 2),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 2),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 3000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		PagesToScrape:  getEnvInt("PAGES_TO_SCRAPE", 1),
		ChromeBin:      getEnv("CHROME_BIN", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "investimmo"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "investimmo"),
		PostgresDB:       getEnv("POSTGRES_DB", "investimmo"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MongoURI: getEnv("MONGO_URI", ""),
		MongoDB:  getEnv("MONGO_DB", "investimmo"),

		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),
		RabbitMQQueue: getEnv("RABBITMQ_QUEUE", "investimmo.opportunities"),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", ""),
		HTTPPort:      getEnvInt("HTTP_PORT", 8501),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(strings.Replace(val, ",", ".", 1), 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}
