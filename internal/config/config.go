package config

import (
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/joho/godotenv/autoload"

	"github.com/themilan1337/nerdie/internal/auth/identity"
)

// Config carries the runtime configuration of the client. Values come from
// the environment (a local .env is auto-loaded), with defaults matching the
// hosted deployment.
type Config struct {
	AuthServiceURL      string
	IngestionServiceURL string
	RagServiceURL       string

	GoogleClientID     string
	GoogleClientSecret string
	CallbackPort       int
	SignInStrategy     identity.Strategy

	DataDir              string
	StorageEncryptionKey string

	SignInRoute    string
	DashboardRoute string

	Port int
}

func Load() *Config {
	return &Config{
		AuthServiceURL:      getEnv("AUTH_SERVICE_URL", "https://auth.nerdie.lol"),
		IngestionServiceURL: getEnv("INGESTION_SERVICE_URL", "https://ingest.nerdie.lol"),
		RagServiceURL:       getEnv("RAG_SERVICE_URL", "https://rag.nerdie.lol"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		CallbackPort:       getEnvInt("OAUTH_CALLBACK_PORT", 53682),
		SignInStrategy:     identity.Strategy(getEnv("SIGN_IN_STRATEGY", string(identity.StrategyPopup))),

		DataDir:              getEnv("NERDIE_DATA_DIR", defaultDataDir()),
		StorageEncryptionKey: os.Getenv("STORAGE_ENCRYPTION_KEY"),

		SignInRoute:    "/auth",
		DashboardRoute: "/dashboard",

		Port: getEnvInt("PORT", 8080),
	}
}

// SessionStoragePath is the localStorage analogue backing the session trio.
func (c *Config) SessionStoragePath() string {
	return filepath.Join(c.DataDir, "session.json")
}

// PendingSignInPath parks a completed redirect sign-in until the next start.
func (c *Config) PendingSignInPath() string {
	return filepath.Join(c.DataDir, "pending_signin.json")
}

func (c *Config) ChatDatabasePath() string {
	return filepath.Join(c.DataDir, "chats.db")
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "nerdie")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}
