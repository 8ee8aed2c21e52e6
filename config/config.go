package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// GenerateAPIKey generates a secure random API key
func GenerateAPIKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// Config holds configuration for both the directory agent and the dashboard
type Config struct {
	// Agent server settings
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Authentication, shared by agent and dashboard
	APIKey    string
	JWTSecret string
	TokenTTL  time.Duration

	// Security
	AllowedOrigins []string
	RateLimitRPS   int

	// Process control
	ProtectedPIDs []int32
	ForceKill     bool

	// Dashboard
	DirectoryURL    string
	PollInterval    time.Duration
	RequestTimeout  time.Duration
	RefreshOnAction bool
	LogFile         string

	// Logging
	LogLevel string

	EnvFile string
}

// Load reads configuration from the environment and an optional .env file
func Load() (*Config, error) {
	envFile := getEnvFile()

	// Load .env file if it exists
	_ = godotenv.Load(envFile)

	cfg := &Config{
		Port:            getEnvInt("PORT", 8000),
		Host:            getEnv("HOST", "0.0.0.0"),
		ReadTimeout:     time.Duration(getEnvInt("READ_TIMEOUT_SECONDS", 30)) * time.Second,
		WriteTimeout:    time.Duration(getEnvInt("WRITE_TIMEOUT_SECONDS", 30)) * time.Second,
		APIKey:          getEnv("API_KEY", ""),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		TokenTTL:        time.Duration(getEnvInt("TOKEN_TTL_MINUTES", 60)) * time.Minute,
		AllowedOrigins:  getEnvSlice("ALLOWED_ORIGINS", []string{"*"}),
		RateLimitRPS:    getEnvInt("RATE_LIMIT_RPS", 100),
		ProtectedPIDs:   getEnvPIDs("PROTECTED_PIDS"),
		ForceKill:       getEnvBool("FORCE_KILL", true),
		DirectoryURL:    getEnv("DIRECTORY_URL", "http://localhost:8000"),
		PollInterval:    time.Duration(getEnvInt("POLL_INTERVAL_MS", 2000)) * time.Millisecond,
		RequestTimeout:  time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
		RefreshOnAction: getEnvBool("REFRESH_ON_ACTION", true),
		LogFile:         getEnv("LOG_FILE", "hivedeck-monitor.log"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		EnvFile:         envFile,
	}

	if cfg.APIKey == "" {
		return nil, errors.New("API_KEY is required (run 'hivedeck-monitor keygen --save' to create one)")
	}

	if cfg.JWTSecret == "" {
		// Use API key as fallback for JWT secret
		cfg.JWTSecret = cfg.APIKey
	}

	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL_MS must be positive, got %v", cfg.PollInterval)
	}

	return cfg, nil
}

// getEnvFile returns the path to the .env file
func getEnvFile() string {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		return envFile
	}

	if _, err := os.Stat(".env"); err == nil {
		return ".env"
	}

	// Fall back to the directory of the executable
	exe, err := os.Executable()
	if err == nil {
		envPath := filepath.Join(filepath.Dir(exe), ".env")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	return ".env"
}

// SaveAPIKey writes API_KEY to envFile, keeping other entries
func SaveAPIKey(envFile, apiKey string) error {
	return UpdateEnvFile(envFile, map[string]string{"API_KEY": apiKey})
}

// UpdateEnvFile updates or adds environment variables in a .env file
func UpdateEnvFile(envFile string, updates map[string]string) error {
	existing := map[string]string{}
	if _, err := os.Stat(envFile); err == nil {
		existing, err = godotenv.Read(envFile)
		if err != nil {
			return fmt.Errorf("failed to read .env file: %w", err)
		}
	}

	for key, value := range updates {
		existing[key] = value
	}

	if err := godotenv.Write(existing, envFile); err != nil {
		return fmt.Errorf("failed to write .env file: %w", err)
	}

	// godotenv writes 0644, the file holds a credential
	if err := os.Chmod(envFile, 0600); err != nil {
		return fmt.Errorf("failed to restrict .env file: %w", err)
	}

	return nil
}

// LoadWithDefaults loads config with defaults for testing
func LoadWithDefaults() *Config {
	return &Config{
		Port:            8000,
		Host:            "0.0.0.0",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		APIKey:          "test-api-key",
		JWTSecret:       "test-jwt-secret",
		TokenTTL:        time.Hour,
		AllowedOrigins:  []string{"*"},
		RateLimitRPS:    100,
		ForceKill:       true,
		DirectoryURL:    "http://localhost:8000",
		PollInterval:    2 * time.Second,
		RequestTimeout:  10 * time.Second,
		RefreshOnAction: true,
		LogFile:         "hivedeck-monitor.log",
		LogLevel:        "info",
	}
}

// Addr returns the server address string
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var out []string
		for _, v := range strings.Split(value, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
		return out
	}
	return defaultValue
}

// getEnvPIDs parses a comma separated pid list, skipping invalid entries
func getEnvPIDs(key string) []int32 {
	var pids []int32
	for _, v := range getEnvSlice(key, nil) {
		pid, err := strconv.ParseInt(v, 10, 32)
		if err != nil || pid <= 0 {
			continue
		}
		pids = append(pids, int32(pid))
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids
}
