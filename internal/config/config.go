package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the nutrition engine host.
type Config struct {
	// Auth
	AuthToken string `toml:"auth_token"`

	// Dataset / retrieval
	ParquetURL   string `toml:"parquet_url"`
	DataDir      string `toml:"data_dir"`
	ParquetPath  string `toml:"parquet_path"`
	MetadataPath string `toml:"metadata_path"`

	// History persistence and reconciliation policy
	HistoryDBPath          string `toml:"history_db_path"`
	MaxHistoryEntries      int    `toml:"max_history_entries"`
	MergeWindowMinutes     int    `toml:"merge_window_minutes"`
	DuplicateWindowMinutes int    `toml:"duplicate_window_minutes"`

	// Server
	Port string `toml:"port"`
}

// Load reads configuration from environment variables, then overlays an
// optional TOML file named by CONFIG_FILE. Env values win so deployment
// overrides stay possible with a checked-in config file.
func Load() *Config {
	dataDir := getEnv("DATA_DIR", "./data")

	cfg := &Config{
		AuthToken:              getEnv("AUTH_TOKEN", "super-secret-token"),
		ParquetURL:             getEnv("PARQUET_URL", "https://huggingface.co/datasets/openfoodfacts/product-database/resolve/main/product-database.parquet"),
		DataDir:                dataDir,
		ParquetPath:            getEnv("PARQUET_PATH", filepath.Join(dataDir, "product-database.parquet")),
		MetadataPath:           getEnv("METADATA_PATH", filepath.Join(dataDir, "metadata.json")),
		HistoryDBPath:          getEnv("HISTORY_DB_PATH", filepath.Join(dataDir, "history.db")),
		MaxHistoryEntries:      getEnvInt("MAX_HISTORY_ENTRIES", 100),
		MergeWindowMinutes:     getEnvInt("MERGE_WINDOW_MINUTES", 10),
		DuplicateWindowMinutes: getEnvInt("DUPLICATE_WINDOW_MINUTES", 60),
		Port:                   getEnv("PORT", "8080"),
	}

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		if err := cfg.overlayFile(file); err != nil {
			// A bad overlay file must not prevent startup with env config.
			fmt.Fprintf(os.Stderr, "warning: ignoring config file %s: %v\n", file, err)
		}
	}

	return cfg
}

// overlayFile applies values from a TOML file. File values apply only
// where the corresponding environment variable was not set, so env keeps
// the highest precedence.
func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fileCfg Config
	if err := toml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	overlayString(&c.AuthToken, fileCfg.AuthToken, "AUTH_TOKEN")
	overlayString(&c.ParquetURL, fileCfg.ParquetURL, "PARQUET_URL")
	overlayString(&c.DataDir, fileCfg.DataDir, "DATA_DIR")
	overlayString(&c.ParquetPath, fileCfg.ParquetPath, "PARQUET_PATH")
	overlayString(&c.MetadataPath, fileCfg.MetadataPath, "METADATA_PATH")
	overlayString(&c.HistoryDBPath, fileCfg.HistoryDBPath, "HISTORY_DB_PATH")
	overlayInt(&c.MaxHistoryEntries, fileCfg.MaxHistoryEntries, "MAX_HISTORY_ENTRIES")
	overlayInt(&c.MergeWindowMinutes, fileCfg.MergeWindowMinutes, "MERGE_WINDOW_MINUTES")
	overlayInt(&c.DuplicateWindowMinutes, fileCfg.DuplicateWindowMinutes, "DUPLICATE_WINDOW_MINUTES")
	overlayString(&c.Port, fileCfg.Port, "PORT")
	return nil
}

// MergeWindow returns the short dedup window as a duration.
func (c *Config) MergeWindow() time.Duration {
	return time.Duration(c.MergeWindowMinutes) * time.Minute
}

// DuplicateWindow returns the long dedup window as a duration.
func (c *Config) DuplicateWindow() time.Duration {
	return time.Duration(c.DuplicateWindowMinutes) * time.Minute
}

func overlayString(dst *string, fileValue, envKey string) {
	if fileValue != "" && os.Getenv(envKey) == "" {
		*dst = fileValue
	}
}

func overlayInt(dst *int, fileValue int, envKey string) {
	if fileValue != 0 && os.Getenv(envKey) == "" {
		*dst = fileValue
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
