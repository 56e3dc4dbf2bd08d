package config

import (
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

type Config struct {
	ListenAddr string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	MongoURI string
	MongoDB  string

	JWTSecret string

	// Coordination knobs. Durations are parsed from seconds.
	ReconnectGrace    time.Duration
	ChallengeTTL      time.Duration
	InviteTTL         time.Duration
	TicketMaxAge      time.Duration
	SweepInterval     time.Duration
	PauseClockOnDrop  bool
	TerminalRetention time.Duration
}

func LoadConfig() *Config {
	return &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8000"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "gamehub"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "gamehub"),

		JWTSecret: getEnv("JWT_SECRET", "secret"),

		ReconnectGrace:    getEnvSeconds("RECONNECT_GRACE_SECONDS", 60),
		ChallengeTTL:      getEnvSeconds("CHALLENGE_TTL_SECONDS", 120),
		InviteTTL:         getEnvSeconds("INVITE_TTL_SECONDS", 900),
		TicketMaxAge:      getEnvSeconds("TICKET_MAX_AGE_SECONDS", 600),
		SweepInterval:     getEnvSeconds("SWEEP_INTERVAL_SECONDS", 30),
		PauseClockOnDrop:  getEnvBool("PAUSE_CLOCK_ON_DISCONNECT", true),
		TerminalRetention: getEnvSeconds("TERMINAL_RETENTION_SECONDS", 300),
	}
}

// getEnv reads an environment variable and returns its value or a default value
func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = defaultValue
		log.Printf("Environment variable %s not set, using default value: %s", key, defaultValue)
	}
	return value
}

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return time.Duration(defaultSeconds) * time.Second
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		log.Printf("Environment variable %s has invalid value %q, using default: %ds", key, raw, defaultSeconds)
		return time.Duration(defaultSeconds) * time.Second
	}
	return time.Duration(secs) * time.Second
}

func getEnvBool(key string, defaultValue bool) bool {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Environment variable %s has invalid value %q, using default: %v", key, raw, defaultValue)
		return defaultValue
	}
	return parsed
}
