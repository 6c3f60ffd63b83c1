package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Reports   ReportsConfig   `mapstructure:"reports"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Server    ServerConfig    `mapstructure:"server"`
}

// DatabaseConfig holds activity-ledger storage settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging-related settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ReportsConfig holds report output settings.
type ReportsConfig struct {
	Dir  string `mapstructure:"dir"`
	Auto bool   `mapstructure:"auto"`
}

// AnalysisConfig holds detector thresholds and data retention.
type AnalysisConfig struct {
	RetentionDays          int   `mapstructure:"retention_days"`
	ColdFileDays           int   `mapstructure:"cold_file_days"`
	SmallFileKB            int64 `mapstructure:"small_file_kb"`
	MicroClutterFiles      int   `mapstructure:"micro_clutter_files"`
	ContextSwitchesPerHour int   `mapstructure:"context_switches_per_hour"`
	DuplicateWindowHours   int   `mapstructure:"duplicate_window_hours"`
	OrphanInactiveDays     int   `mapstructure:"orphan_inactive_days"`
	OrphanMinFiles         int   `mapstructure:"orphan_min_files"`
}

// SchedulerConfig holds periodic analysis settings.
type SchedulerConfig struct {
	IntervalHours int `mapstructure:"interval_hours"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

// dataDir returns the default state directory, falling back to a relative
// directory when the home directory is unknown.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".attnmon"
	}
	return filepath.Join(home, ".attnmon")
}

// Load reads configuration from the specified file path.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	dir := dataDir()

	// Set defaults
	v.SetDefault("database.path", filepath.Join(dir, "attnmon.db"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("reports.dir", filepath.Join(dir, "reports"))
	v.SetDefault("reports.auto", true)
	v.SetDefault("analysis.retention_days", 90)
	v.SetDefault("analysis.cold_file_days", 7)
	v.SetDefault("analysis.small_file_kb", 50)
	v.SetDefault("analysis.micro_clutter_files", 50)
	v.SetDefault("analysis.context_switches_per_hour", 10)
	v.SetDefault("analysis.duplicate_window_hours", 24)
	v.SetDefault("analysis.orphan_inactive_days", 30)
	v.SetDefault("analysis.orphan_min_files", 5)
	v.SetDefault("scheduler.interval_hours", 24)
	v.SetDefault("server.listen", "127.0.0.1:7180")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("attnmon")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.config/attnmon")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK if using defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Reports.Dir == "" {
		return fmt.Errorf("reports.dir is required")
	}

	if c.Analysis.RetentionDays < 1 {
		return fmt.Errorf("analysis.retention_days must be at least 1")
	}
	if c.Analysis.ColdFileDays < 1 {
		return fmt.Errorf("analysis.cold_file_days must be at least 1")
	}
	if c.Analysis.SmallFileKB < 1 {
		return fmt.Errorf("analysis.small_file_kb must be at least 1")
	}
	if c.Analysis.MicroClutterFiles < 1 {
		return fmt.Errorf("analysis.micro_clutter_files must be at least 1")
	}
	if c.Analysis.ContextSwitchesPerHour < 1 {
		return fmt.Errorf("analysis.context_switches_per_hour must be at least 1")
	}
	if c.Analysis.DuplicateWindowHours < 1 {
		return fmt.Errorf("analysis.duplicate_window_hours must be at least 1")
	}
	if c.Analysis.OrphanInactiveDays < 1 {
		return fmt.Errorf("analysis.orphan_inactive_days must be at least 1")
	}
	if c.Analysis.OrphanMinFiles < 1 {
		return fmt.Errorf("analysis.orphan_min_files must be at least 1")
	}

	if c.Scheduler.IntervalHours < 1 {
		return fmt.Errorf("scheduler.interval_hours must be at least 1")
	}

	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}

	return nil
}

// Default returns a default configuration suitable for testing or initial setup.
func Default() *Config {
	dir := dataDir()
	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(dir, "attnmon.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Reports: ReportsConfig{
			Dir:  filepath.Join(dir, "reports"),
			Auto: true,
		},
		Analysis: AnalysisConfig{
			RetentionDays:          90,
			ColdFileDays:           7,
			SmallFileKB:            50,
			MicroClutterFiles:      50,
			ContextSwitchesPerHour: 10,
			DuplicateWindowHours:   24,
			OrphanInactiveDays:     30,
			OrphanMinFiles:         5,
		},
		Scheduler: SchedulerConfig{
			IntervalHours: 24,
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:7180",
		},
	}
}
