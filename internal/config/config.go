package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	model "live-auction/internal/models"
	"live-auction/utils"
)

// Config holds the application configuration
type Config struct {
	Port         string
	Store        string // "memory" or "sqlite"
	SQLitePath   string
	KafkaBrokers []string // empty = single-instance, no relay
	KafkaTopic   string

	HeartbeatInterval time.Duration
	ResyncInterval    time.Duration
	SweepInterval     time.Duration

	// AuthTokens maps bearer tokens to verified users. Identity issuance is
	// an external collaborator; this is its hand-off point.
	AuthTokens map[string]model.User
}

// New creates a new configuration from environment variables
func New() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		utils.Debug("no .env file found, using environment only", nil)
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		Store:             getEnv("STORE", "memory"),
		SQLitePath:        getEnv("SQLITE_PATH", "./auctions.db"),
		KafkaBrokers:      splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "auction-events"),
		HeartbeatInterval: getDuration("HEARTBEAT_INTERVAL_SECONDS", 30),
		ResyncInterval:    getDuration("RESYNC_INTERVAL_SECONDS", 15),
		SweepInterval:     getDuration("SWEEP_INTERVAL_SECONDS", 60),
		AuthTokens:        parseTokens(getEnv("AUTH_TOKENS", "")),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultSeconds int) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return time.Duration(defaultSeconds) * time.Second
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		utils.Warn("invalid duration setting, using default", map[string]any{
			"key":   key,
			"value": raw,
		})
		return time.Duration(defaultSeconds) * time.Second
	}
	return time.Duration(secs) * time.Second
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseTokens reads "token:userID:username" triples separated by commas.
func parseTokens(raw string) map[string]model.User {
	tokens := make(map[string]model.User)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.SplitN(entry, ":", 3)
		if len(fields) < 2 {
			utils.Warn("skipping malformed auth token entry", map[string]any{"entry": entry})
			continue
		}
		u := model.User{UserID: fields[1]}
		if len(fields) == 3 {
			u.Username = fields[2]
		}
		tokens[fields[0]] = u
	}
	return tokens
}
