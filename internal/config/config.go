// Package config assembles runtime settings from built-in defaults, an
// optional TOML file, a .env file and QQTIME_* environment variables, in
// that order of precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/tomwugdgz/qqtime/internal/ledger"
	"github.com/tomwugdgz/qqtime/internal/model"
)

const DefaultFile = "qqtime.toml"

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
	Bank     BankConfig     `toml:"bank"`
	Limits   ledger.Limits  `toml:"limits"`
	Backup   BackupConfig   `toml:"backup"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type BankConfig struct {
	Timezone string         `toml:"timezone"`
	AgeGroup model.AgeGroup `toml:"age_group"`
}

// BackupConfig schedules local backups while serving. An empty Dir
// disables them.
type BackupConfig struct {
	Dir      string `toml:"dir"`
	Interval string `toml:"interval"`
	Keep     int    `toml:"keep"`
	// Passphrase is read from QQTIME_BACKUP_PASSPHRASE only, never the file.
	Passphrase string `toml:"-"`
}

func Default() Config {
	return Config{
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{Path: "qqtime.db"},
		Log:      LogConfig{Level: "info", Format: "text"},
		Bank:     BankConfig{Timezone: "Local"},
		Limits:   ledger.DefaultLimits(),
		Backup:   BackupConfig{Interval: "24h", Keep: 14},
	}
}

// Load reads path (or QQTIME_CONFIG, or DefaultFile) when it exists, then
// applies environment overrides. A missing file is not an error unless it
// was named explicitly.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p := os.Getenv("QQTIME_CONFIG"); p != "" {
			path, explicit = p, true
		} else {
			path = DefaultFile
		}
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Server.Port, "QQTIME_PORT")
	setString(&cfg.Database.Path, "QQTIME_DB_PATH")
	setString(&cfg.Log.Level, "QQTIME_LOG_LEVEL")
	setString(&cfg.Log.Format, "QQTIME_LOG_FORMAT")
	setString(&cfg.Bank.Timezone, "QQTIME_TIMEZONE")
	setString(&cfg.Backup.Dir, "QQTIME_BACKUP_DIR")
	setString(&cfg.Backup.Interval, "QQTIME_BACKUP_INTERVAL")
	setString(&cfg.Backup.Passphrase, "QQTIME_BACKUP_PASSPHRASE")
	if v := os.Getenv("QQTIME_AGE_GROUP"); v != "" {
		cfg.Bank.AgeGroup = model.AgeGroup(v)
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"QQTIME_MAX_BANK_HOURS", &cfg.Limits.MaxBankHours},
		{"QQTIME_MAX_SINGLE_PLAY_HOURS", &cfg.Limits.MaxSinglePlayHours},
		{"QQTIME_MAX_EARN_MINUTES", &cfg.Limits.MaxEarnMinutes},
		{"QQTIME_MAX_PENALTY_MINUTES", &cfg.Limits.MaxPenaltyMinutes},
		{"QQTIME_CASH_RATE_MINUTES", &cfg.Limits.CashRateMinutes},
		{"QQTIME_CASH_RATE_AMOUNT", &cfg.Limits.CashRateAmount},
		{"QQTIME_BACKUP_KEEP", &cfg.Backup.Keep},
	}
	for _, e := range ints {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}
		*e.dst = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c Config) Validate() error {
	if err := c.Limits.Validate(); err != nil {
		return fmt.Errorf("limits: %w", err)
	}
	if c.Bank.AgeGroup != "" && !c.Bank.AgeGroup.Valid() {
		return fmt.Errorf("bank.age_group %q: must be one of 3-6, 7-12, 13-16", c.Bank.AgeGroup)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.BackupInterval(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q: must be text or json", c.Log.Format)
	}
	return nil
}

// Location resolves the timezone used for day bucketing and CSV times.
func (c Config) Location() (*time.Location, error) {
	if c.Bank.Timezone == "" || c.Bank.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Bank.Timezone)
	if err != nil {
		return nil, fmt.Errorf("bank.timezone: %w", err)
	}
	return loc, nil
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	return ":" + c.Server.Port
}

// BackupInterval parses Backup.Interval; empty means no schedule.
func (c Config) BackupInterval() (time.Duration, error) {
	if c.Backup.Interval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Backup.Interval)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("backup.interval %q: must be a duration such as 24h", c.Backup.Interval)
	}
	return d, nil
}
