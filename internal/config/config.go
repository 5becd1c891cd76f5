package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreBackendPostgres  = "postgres"
	StoreBackendFirestore = "firestore"

	AuthModeFirebase = "firebase"
	AuthModeHMAC     = "hmac"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Firestore FirestoreConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Discover  DiscoverConfig
	Gemini    GeminiConfig
	Logging   LoggingConfig
	Store     string
}

type ServerConfig struct {
	Host           string
	Port           int
	Env            string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type AuthConfig struct {
	Mode              string
	FirebaseProjectID string
	HMACSecret        string
}

type DiscoverConfig struct {
	CacheTTL   time.Duration
	RatePerMin int
	RateBurst  int
	Area       string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8000)
	v.SetDefault("ENV", "development")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")
	v.SetDefault("STORE_BACKEND", StoreBackendPostgres)
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("DISCOVER_CACHE_TTL", "30s")
	v.SetDefault("DISCOVER_RATE_PER_MIN", 20)
	v.SetDefault("DISCOVER_RATE_BURST", 5)
	v.SetDefault("DISCOVER_AREA", "Near McMaster University, Hamilton ON")
	v.SetDefault("AUTH_MODE", AuthModeFirebase)
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	return LoadFile(".env")
}

// LoadFile is Load with an explicit env file. Environment variables win over the file.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = v.ReadInConfig()

	return FromViper(v)
}

// FromViper builds a validated Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	config := &Config{
		Server: ServerConfig{
			Host:           v.GetString("SERVER_HOST"),
			Port:           v.GetInt("SERVER_PORT"),
			Env:            v.GetString("ENV"),
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   60 * time.Second,
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
		},
		Firestore: FirestoreConfig{
			ProjectID:    v.GetString("FIRESTORE_PROJECT_ID"),
			EmulatorHost: v.GetString("FIRESTORE_EMULATOR_HOST"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Auth: AuthConfig{
			Mode:              strings.ToLower(v.GetString("AUTH_MODE")),
			FirebaseProjectID: v.GetString("FIREBASE_PROJECT_ID"),
			HMACSecret:        v.GetString("AUTH_HMAC_SECRET"),
		},
		Discover: DiscoverConfig{
			CacheTTL:   v.GetDuration("DISCOVER_CACHE_TTL"),
			RatePerMin: v.GetInt("DISCOVER_RATE_PER_MIN"),
			RateBurst:  v.GetInt("DISCOVER_RATE_BURST"),
			Area:       v.GetString("DISCOVER_AREA"),
		},
		Gemini: GeminiConfig{
			APIKey: strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
			Model:  v.GetString("GEMINI_MODEL"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Store: strings.ToLower(v.GetString("STORE_BACKEND")),
	}

	// Firestore project falls back to the Firebase project
	if config.Firestore.ProjectID == "" {
		config.Firestore.ProjectID = config.Auth.FirebaseProjectID
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	switch c.Store {
	case StoreBackendPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
	case StoreBackendFirestore:
		if c.Firestore.ProjectID == "" {
			return fmt.Errorf("firestore project id is required")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.Store)
	}

	switch c.Auth.Mode {
	case AuthModeFirebase:
		if c.Auth.FirebaseProjectID == "" {
			return fmt.Errorf("firebase project id is required")
		}
	case AuthModeHMAC:
		if len(c.Auth.HMACSecret) < 32 {
			return fmt.Errorf("HMAC auth secret must be at least 32 characters")
		}
	default:
		return fmt.Errorf("unknown auth mode %q", c.Auth.Mode)
	}

	if c.Discover.RatePerMin <= 0 || c.Discover.RateBurst <= 0 {
		return fmt.Errorf("discover rate limit must be positive")
	}
	if c.Discover.CacheTTL < 0 {
		return fmt.Errorf("discover cache ttl must not be negative")
	}
	// redis keeps keys set with a zero expiration forever
	if c.Redis.Enabled && c.Discover.CacheTTL == 0 {
		return fmt.Errorf("discover cache ttl must be positive when redis is enabled")
	}
	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
