package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/readkeeper/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "READKEEPER_"

// parseEnv loads the dotenv file and overlays READKEEPER_* variables.
// Variables already present in the environment win over the file. A file
// named with -e must exist; the implicit ./.env may be missing.
func parseEnv(cfg *Config) error {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			return err
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	cfg.ServerBaseURL = getEnv("SERVER_URL", cfg.ServerBaseURL)
	cfg.APIPrefix = getEnv("API_PREFIX", cfg.APIPrefix)
	cfg.ListenAddr = getEnv("LISTEN_ADDR", cfg.ListenAddr)
	cfg.DatabasePath = getEnv("DB_PATH", cfg.DatabasePath)
	cfg.CachePrefix = getEnv("CACHE_PREFIX", cfg.CachePrefix)
	cfg.CacheVersion = getEnv("CACHE_VERSION", cfg.CacheVersion)
	cfg.ManifestPath = getEnv("MANIFEST", cfg.ManifestPath)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	var err error
	if cfg.OnlineCheckInterval, err = getEnvDuration("ONLINE_CHECK_INTERVAL", cfg.OnlineCheckInterval); err != nil {
		return err
	}
	if cfg.ProgressPollInterval, err = getEnvDuration("PROGRESS_POLL_INTERVAL", cfg.ProgressPollInterval); err != nil {
		return err
	}
	if cfg.PositionSaveInterval, err = getEnvDuration("POSITION_SAVE_INTERVAL", cfg.PositionSaveInterval); err != nil {
		return err
	}
	if cfg.RequestTimeout, err = getEnvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return err
	}
	if v, ok := os.LookupEnv(envPrefix + "ANCHOR_OFFSET"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %sANCHOR_OFFSET: %w", envPrefix, err)
		}
		cfg.AnchorOffset = f
	}
	if v, ok := os.LookupEnv(envPrefix + "VIEW_CACHE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sVIEW_CACHE_SIZE: %w", envPrefix, err)
		}
		cfg.ViewCacheSize = n
	}
	if v, ok := os.LookupEnv(envPrefix + "HEADLESS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sHEADLESS: %w", envPrefix, err)
		}
		cfg.Headless = b
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(envPrefix + key); exists {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(envPrefix + key)
	if !exists {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s: %w", envPrefix, key, err)
	}
	return d, nil
}
