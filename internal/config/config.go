package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds client configuration
type Config struct {
	APIBaseURL      string
	SocketURL       string
	StateDir        string
	CachePath       string
	RequestTimeout  time.Duration
	QRRotateEvery   time.Duration
	CacheMaxAge     time.Duration
	UploadMaxSize   int64
	DefaultCourseID string
}

// Load reads configuration from the environment with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	// ignore a missing .env; explicit env vars always win
	_ = godotenv.Load()

	stateDir := getEnv("CAMPUSBOARD_STATE_DIR", defaultStateDir())

	return &Config{
		APIBaseURL:      getEnv("CAMPUS_API_URL", "http://localhost:4000/api"),
		SocketURL:       getEnv("CAMPUS_SOCKET_URL", "ws://localhost:4000/socket"),
		StateDir:        stateDir,
		CachePath:       getEnv("CAMPUSBOARD_CACHE_PATH", filepath.Join(stateDir, "cache.db")),
		RequestTimeout:  getDuration("CAMPUS_REQUEST_TIMEOUT", 15*time.Second),
		QRRotateEvery:   getDuration("CAMPUS_QR_ROTATE_EVERY", 15*time.Second),
		CacheMaxAge:     getDuration("CAMPUS_CACHE_MAX_AGE", 30*24*time.Hour),
		UploadMaxSize:   5 * 1024 * 1024, // 5MB
		DefaultCourseID: getEnv("CAMPUS_COURSE_INSTANCE", ""),
	}
}

// defaultStateDir resolves the per-user state directory for tokens and cache
func defaultStateDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".campusboard"
	}
	return filepath.Join(base, "campusboard")
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration reads a duration environment variable, accepting either a
// Go duration string or a plain number of seconds
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
