package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// Trakt (history/watchlist provider)
	TraktClientID     string
	TraktClientSecret string

	// TMDB (primary enrichment provider, required)
	TMDBAPIKey string

	// OMDB (secondary rating provider, optional — absence only degrades
	// rating fields, it never aborts a sync)
	OMDBAPIKey string

	// Sync tuning
	EnrichDelay     time.Duration // pause between enrichment calls
	EnrichBatchSize int           // items per re-enrichment batch

	// Server
	ServerPort string

	// Paths
	TokenFile    string // $CONFIG_DIR/token.json
	DatabaseFile string // $CONFIG_DIR/gowatcharr.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Setup viper FIRST to load .env file
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	// Set defaults
	viper.SetDefault("ENRICH_DELAY_MS", 250)
	viper.SetDefault("ENRICH_BATCH_SIZE", 5)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")

	// NOW read CONFIG_DIR from viper (which has loaded .env file)
	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "gowatcharr")
	} else {
		// Convert relative path to absolute path
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	// Create config directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	config := &Config{
		// Trakt
		TraktClientID:     viper.GetString("TRAKT_CLIENT_ID"),
		TraktClientSecret: viper.GetString("TRAKT_CLIENT_SECRET"),

		// Metadata providers
		TMDBAPIKey: viper.GetString("TMDB_API_KEY"),
		OMDBAPIKey: viper.GetString("OMDB_API_KEY"),

		// Sync tuning
		EnrichDelay:     time.Duration(viper.GetInt("ENRICH_DELAY_MS")) * time.Millisecond,
		EnrichBatchSize: viper.GetInt("ENRICH_BATCH_SIZE"),

		// Server
		ServerPort: viper.GetString("SERVER_PORT"),

		// Paths
		TokenFile:    filepath.Join(configDir, "token.json"),
		DatabaseFile: filepath.Join(configDir, "gowatcharr.db"),

		// Logging
		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	// Validate required fields
	if config.TraktClientID == "" {
		return nil, fmt.Errorf("TRAKT_CLIENT_ID is required")
	}
	if config.TraktClientSecret == "" {
		return nil, fmt.Errorf("TRAKT_CLIENT_SECRET is required")
	}
	if config.TMDBAPIKey == "" {
		return nil, fmt.Errorf("TMDB_API_KEY is required")
	}

	return config, nil
}
