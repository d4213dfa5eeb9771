// Package config provides Viper-based configuration loading for the battle simulator.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers accepted by StorageConfig.Driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// StorageConfig selects the roster backend.
type StorageConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `mapstructure:"driver"`
	// SQLitePath is the database file for the sqlite driver; ":memory:" is allowed.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// BattleConfig holds the tunable battle rules.
type BattleConfig struct {
	MaxPartySize int `mapstructure:"max_party_size"`
	// Seed fixes the RNG for reproducible runs; 0 draws from crypto/rand.
	Seed uint64 `mapstructure:"seed"`
	// CritChance is the percentage chance (0-100) of a critical hit.
	CritChance         int     `mapstructure:"crit_chance"`
	BaseXPReward       float64 `mapstructure:"base_xp_reward"`
	MaxDifficultyBonus float64 `mapstructure:"max_difficulty_bonus"`
	// MaxExchanges caps a single pairing before it is declared a stalemate.
	MaxExchanges int `mapstructure:"max_exchanges"`
}

// ContentConfig locates the YAML and Lua content.
type ContentConfig struct {
	SpeciesDir             string `mapstructure:"species_dir"`
	TrainersDir            string `mapstructure:"trainers_dir"`
	ScriptsDir             string `mapstructure:"scripts_dir"`
	ScriptInstructionLimit int    `mapstructure:"script_instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Battle   BattleConfig   `mapstructure:"battle"`
	Content  ContentConfig  `mapstructure:"content"`
}

// Validate checks all configuration invariants. The database section is only
// checked when the postgres driver is selected.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Driver == DriverPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateBattle(c.Battle); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Driver {
	case DriverPostgres:
		return nil
	case DriverSQLite:
		if strings.TrimSpace(s.SQLitePath) == "" {
			return errors.New("storage.sqlite_path must not be empty for the sqlite driver")
		}
		return nil
	default:
		return fmt.Errorf("storage.driver must be one of [postgres, sqlite], got %q", s.Driver)
	}
}

func validateBattle(b BattleConfig) error {
	var errs []string
	if b.MaxPartySize < 1 || b.MaxPartySize > 6 {
		errs = append(errs, fmt.Sprintf("battle.max_party_size must be 1-6, got %d", b.MaxPartySize))
	}
	if b.CritChance < 0 || b.CritChance > 100 {
		errs = append(errs, fmt.Sprintf("battle.crit_chance must be 0-100, got %d", b.CritChance))
	}
	if b.BaseXPReward < 0 {
		errs = append(errs, fmt.Sprintf("battle.base_xp_reward must be >= 0, got %g", b.BaseXPReward))
	}
	if b.MaxDifficultyBonus < 1 {
		errs = append(errs, fmt.Sprintf("battle.max_difficulty_bonus must be >= 1, got %g", b.MaxDifficultyBonus))
	}
	if b.MaxExchanges < 1 {
		errs = append(errs, fmt.Sprintf("battle.max_exchanges must be >= 1, got %d", b.MaxExchanges))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	var errs []string
	if c.SpeciesDir == "" {
		errs = append(errs, "content.species_dir must not be empty")
	}
	if c.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("content.script_instruction_limit must be >= 0, got %d", c.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and CATCHEMALL_ environment
// overrides applied, ready for a config file or direct use.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("CATCHEMALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "catchemall")
	v.SetDefault("database.password", "catchemall")
	v.SetDefault("database.name", "catchemall")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.sqlite_path", "data/roster.db")

	v.SetDefault("battle.max_party_size", 6)
	v.SetDefault("battle.seed", 0)
	v.SetDefault("battle.crit_chance", 2)
	v.SetDefault("battle.base_xp_reward", 15)
	v.SetDefault("battle.max_difficulty_bonus", 2.5)
	v.SetDefault("battle.max_exchanges", 10_000)

	v.SetDefault("content.species_dir", "content/species")
	v.SetDefault("content.trainers_dir", "content/trainers")
	v.SetDefault("content.scripts_dir", "content/scripts")
	v.SetDefault("content.script_instruction_limit", 100_000)
}
