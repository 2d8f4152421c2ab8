package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Clark-Hu/cinescope/internal/tmdb"
)

// FileName is the optional config file looked up in the working directory
// when no explicit path is given.
const FileName = "cinescope"

// Config captures all runtime configuration. Each field maps to the
// environment variable of the same name in upper case; cinescope.yaml may
// set the same keys in lower case.
type Config struct {
	Port                string `mapstructure:"port"`
	DBURL               string `mapstructure:"db_url"`
	TMDBAPIKey          string `mapstructure:"tmdb_api_key"`
	TMDBBaseURL         string `mapstructure:"tmdb_base_url"`
	TMDBImageBaseURL    string `mapstructure:"tmdb_image_base_url"`
	TMDBLanguage        string `mapstructure:"tmdb_language"`
	TMDBTimeoutSecs     int    `mapstructure:"tmdb_timeout_secs"`
	ReadTimeoutSecs     int    `mapstructure:"server_read_timeout"`
	WriteTimeoutSecs    int    `mapstructure:"server_write_timeout"`
	IdleTimeoutSecs     int    `mapstructure:"server_idle_timeout"`
	DBMaxConns          int    `mapstructure:"db_max_conns"`
	DBMinConns          int    `mapstructure:"db_min_conns"`
	DBMaxIdleSecs       int    `mapstructure:"db_max_conn_idle_secs"`
	DBMaxLifeSecs       int    `mapstructure:"db_max_conn_lifetime_secs"`
	DBConnTimeoutSecs   int    `mapstructure:"db_conn_timeout_secs"`
	DBStatementCache    int    `mapstructure:"db_statement_cache_capacity"`
	SessionTTLHours     int    `mapstructure:"session_ttl_hours"`
	SessionSweepMinutes int    `mapstructure:"session_sweep_minutes"`
	BcryptCost          int    `mapstructure:"bcrypt_cost"`
	LocalDBPath         string `mapstructure:"local_db_path"`
}

var defaults = map[string]any{
	"port":                        "8080",
	"db_url":                      "",
	"tmdb_api_key":                "",
	"tmdb_base_url":               tmdb.DefaultBaseURL,
	"tmdb_image_base_url":         tmdb.DefaultImageBaseURL,
	"tmdb_language":               tmdb.DefaultLanguage,
	"tmdb_timeout_secs":           10,
	"server_read_timeout":         15,
	"server_write_timeout":        15,
	"server_idle_timeout":         60,
	"db_max_conns":                20,
	"db_min_conns":                2,
	"db_max_conn_idle_secs":       300,
	"db_max_conn_lifetime_secs":   3600,
	"db_conn_timeout_secs":        10,
	"db_statement_cache_capacity": 256,
	"session_ttl_hours":           168,
	"session_sweep_minutes":       60,
	"bcrypt_cost":                 10,
	"local_db_path":               "",
}

// Load reads configuration from the environment and, when present, a
// config file. path selects the file explicitly; an empty path looks for
// cinescope.yaml in the working directory and ignores its absence.
// Environment variables win over the file.
func Load(path string) (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.TMDBAPIKey = strings.TrimSpace(cfg.TMDBAPIKey)
	if cfg.LocalDBPath == "" {
		cfg.LocalDBPath = defaultLocalDBPath()
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.TMDBAPIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is required")
	}
	if c.TMDBTimeoutSecs <= 0 {
		return fmt.Errorf("TMDB_TIMEOUT_SECS must be positive")
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if c.DBMaxConns > 0 && c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if c.DBStatementCache < 0 {
		return fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}
	if c.SessionTTLHours <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive")
	}
	if c.SessionSweepMinutes < 0 {
		return fmt.Errorf("SESSION_SWEEP_MINUTES must be non-negative")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	return nil
}

func (c Config) TMDBTimeout() time.Duration {
	return time.Duration(c.TMDBTimeoutSecs) * time.Second
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c Config) SessionSweepInterval() time.Duration {
	return time.Duration(c.SessionSweepMinutes) * time.Minute
}

func defaultLocalDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "cinescope", "cinescope.db")
}
