package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Import   ImportConfig   `mapstructure:"import"`
	Clients  ClientsConfig  `mapstructure:"clients"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// StorageConfig holds file storage configuration
type StorageConfig struct {
	ArchiveDir string `mapstructure:"archive_dir"`
	ReportDir  string `mapstructure:"report_dir"`
}

// ImportConfig holds the heuristic thresholds used while parsing invoice
// documents. The plausibility bounds reject extraction noise (a "190 hour"
// day is a misread table cell, not a shift); they are configuration rather
// than constants because they also reject some legitimate edge cases.
type ImportConfig struct {
	MaxPages           int     `mapstructure:"max_pages"`
	MaxDayHours        float64 `mapstructure:"max_day_hours"`
	MaxCommuteKm       float64 `mapstructure:"max_commute_km"`
	HourlyRateMin      float64 `mapstructure:"hourly_rate_min"`
	HourlyRateMax      float64 `mapstructure:"hourly_rate_max"`
	StandbyRateMax     float64 `mapstructure:"standby_rate_max"`
	WindowPastMonths   int     `mapstructure:"window_past_months"`
	WindowFutureMonths int     `mapstructure:"window_future_months"`
}

// ClientsConfig holds the static fallback data used when a parsed client
// name has no match in the registry. The source business never centralized
// this; keep it editable without touching parser code.
type ClientsConfig struct {
	DefaultRate       float64            `mapstructure:"default_rate"`
	DefaultKm         float64            `mapstructure:"default_km"`
	CityDistances     map[string]float64 `mapstructure:"city_distances"`
	CityRates         map[string]float64 `mapstructure:"city_rates"`
	AfterHoursMarkers []string           `mapstructure:"after_hours_markers"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("database.path", "data/waarneemadmin.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")

	viper.SetDefault("storage.archive_dir", "archive")
	viper.SetDefault("storage.report_dir", "reports")

	viper.SetDefault("import.max_pages", 3)
	viper.SetDefault("import.max_day_hours", 16)
	viper.SetDefault("import.max_commute_km", 400)
	viper.SetDefault("import.hourly_rate_min", 40)
	viper.SetDefault("import.hourly_rate_max", 150)
	viper.SetDefault("import.standby_rate_max", 15)
	viper.SetDefault("import.window_past_months", 24)
	viper.SetDefault("import.window_future_months", 12)

	viper.SetDefault("clients.default_rate", 77.50)
	viper.SetDefault("clients.default_km", 30)
	viper.SetDefault("clients.after_hours_markers", []string{
		"huisartsenpost", "spoedpost", "dienstenstructuur", "anw", "hap",
	})
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Import.MaxPages <= 0 {
		return fmt.Errorf("import.max_pages must be positive")
	}
	if c.Import.MaxDayHours <= 0 || c.Import.MaxDayHours > 24 {
		return fmt.Errorf("import.max_day_hours must be in (0,24]")
	}
	if c.Import.HourlyRateMin >= c.Import.HourlyRateMax {
		return fmt.Errorf("import.hourly_rate_min must be below hourly_rate_max")
	}
	return nil
}
