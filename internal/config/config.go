package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database   DatabaseConfig
	Thresholds ThresholdConfig
	Partners   PartnerConfig
	Import     ImportConfig
	Upcoming   UpcomingConfig
	Auth       AuthConfig
	Log        LogConfig
	UI         UIConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// ThresholdConfig holds dashboard alert levels. Utilization values are ratios (0.7 = 70%).
type ThresholdConfig struct {
	CashWarning        float64 `mapstructure:"cash_warning"`
	CashDanger         float64 `mapstructure:"cash_danger"`
	UtilizationWarning float64 `mapstructure:"utilization_warning"`
	UtilizationDanger  float64 `mapstructure:"utilization_danger"`
}

// PartnerConfig holds display labels for the two fixed draw partners.
type PartnerConfig struct {
	A string
	B string
}

// ImportConfig describes the partner draw spreadsheet layout.
type ImportConfig struct {
	Sheet        string
	FallbackDate string `mapstructure:"fallback_date"`
	HeaderRows   int    `mapstructure:"header_rows"`
	Katie        ColumnRoles
	Mark         ColumnRoles
}

// ColumnRoles maps each field of one partner's block to a zero-based column.
// -1 means the block has no such column.
type ColumnRoles struct {
	Date            int
	Description     int
	Amount          int
	Notes           int
	FallbackDateCol int `mapstructure:"fallback_date_col"`
}

// UpcomingConfig holds the payment window.
type UpcomingConfig struct {
	WindowDays int `mapstructure:"window_days"`
}

// AuthConfig holds the shared-secret gate settings.
type AuthConfig struct {
	PasswordEnv string `mapstructure:"password_env"`
	Password    string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
	File  string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
	Timezone       string
}

func setDefaults(v *viper.Viper) {
	home := os.Getenv("HOME")
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "liquidity", "liquidity.db"))

	v.SetDefault("thresholds.cash_warning", 50000)
	v.SetDefault("thresholds.cash_danger", 20000)
	v.SetDefault("thresholds.utilization_warning", 0.70)
	v.SetDefault("thresholds.utilization_danger", 0.90)

	v.SetDefault("partners.a", "Mark")
	v.SetDefault("partners.b", "Katie")

	v.SetDefault("import.sheet", "Draw 2025")
	v.SetDefault("import.fallback_date", "2024-01-01")
	v.SetDefault("import.header_rows", 1)
	v.SetDefault("import.katie.date", 0)
	v.SetDefault("import.katie.description", 1)
	v.SetDefault("import.katie.amount", 2)
	v.SetDefault("import.katie.notes", 3)
	v.SetDefault("import.katie.fallback_date_col", -1)
	v.SetDefault("import.mark.date", 5)
	v.SetDefault("import.mark.description", 6)
	v.SetDefault("import.mark.amount", 7)
	v.SetDefault("import.mark.notes", -1)
	v.SetDefault("import.mark.fallback_date_col", 0)

	v.SetDefault("upcoming.window_days", 7)

	v.SetDefault("auth.password_env", "LIQUIDITY_PASSWORD")
	v.SetDefault("auth.password", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(home, ".local", "state", "liquidity", "liquidity.log"))

	v.SetDefault("ui.currency_symbol", "$")
	v.SetDefault("ui.timezone", "Local")
}

// Load reads configuration from file and env. Env var overrides use prefix LIQUIDITY_.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("LIQUIDITY_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "liquidity"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("LIQUIDITY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing default config file is fine; an explicit one must exist
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks threshold ordering and the import layout.
func (c Config) Validate() error {
	t := c.Thresholds
	if t.UtilizationWarning < 0 || t.UtilizationDanger < 0 || t.CashWarning < 0 || t.CashDanger < 0 {
		return fmt.Errorf("thresholds: values must be non-negative")
	}
	if t.UtilizationWarning >= t.UtilizationDanger {
		return fmt.Errorf("thresholds: utilization_warning (%.2f) must be below utilization_danger (%.2f)", t.UtilizationWarning, t.UtilizationDanger)
	}
	if t.CashDanger >= t.CashWarning {
		return fmt.Errorf("thresholds: cash_danger (%.0f) must be below cash_warning (%.0f)", t.CashDanger, t.CashWarning)
	}
	if strings.TrimSpace(c.Partners.A) == "" || strings.TrimSpace(c.Partners.B) == "" {
		return fmt.Errorf("partners: both labels are required")
	}
	if _, err := time.Parse(time.DateOnly, c.Import.FallbackDate); err != nil {
		return fmt.Errorf("import: fallback_date %q: %w", c.Import.FallbackDate, err)
	}
	if c.Import.HeaderRows < 0 {
		return fmt.Errorf("import: header_rows must be non-negative")
	}
	if err := c.Import.Katie.validate("katie"); err != nil {
		return err
	}
	if err := c.Import.Mark.validate("mark"); err != nil {
		return err
	}
	if c.Upcoming.WindowDays < 0 {
		return fmt.Errorf("upcoming: window_days must be non-negative")
	}
	return nil
}

func (r ColumnRoles) validate(name string) error {
	if r.Description < 0 || r.Amount < 0 {
		return fmt.Errorf("import.%s: description and amount columns are required", name)
	}
	seen := map[int]string{}
	for role, col := range map[string]int{"date": r.Date, "description": r.Description, "amount": r.Amount, "notes": r.Notes} {
		if col < 0 {
			continue
		}
		if other, dup := seen[col]; dup {
			return fmt.Errorf("import.%s: %s and %s share column %d", name, role, other, col)
		}
		seen[col] = role
	}
	return nil
}

// Location resolves the configured timezone, falling back to local time.
func (c Config) Location() *time.Location {
	if c.UI.Timezone == "" || strings.EqualFold(c.UI.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.UI.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Save writes the provided config to disk, creating the config directory if needed.
// The gate password is never written; prefer the env var or the secrets store.
func Save(cfg Config) error {
	path := os.Getenv("LIQUIDITY_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "liquidity", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("thresholds.cash_warning", cfg.Thresholds.CashWarning)
	v.Set("thresholds.cash_danger", cfg.Thresholds.CashDanger)
	v.Set("thresholds.utilization_warning", cfg.Thresholds.UtilizationWarning)
	v.Set("thresholds.utilization_danger", cfg.Thresholds.UtilizationDanger)
	v.Set("partners.a", cfg.Partners.A)
	v.Set("partners.b", cfg.Partners.B)
	v.Set("import.sheet", cfg.Import.Sheet)
	v.Set("import.fallback_date", cfg.Import.FallbackDate)
	v.Set("import.header_rows", cfg.Import.HeaderRows)
	setRoles(v, "import.katie", cfg.Import.Katie)
	setRoles(v, "import.mark", cfg.Import.Mark)
	v.Set("upcoming.window_days", cfg.Upcoming.WindowDays)
	v.Set("auth.password_env", cfg.Auth.PasswordEnv)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.file", cfg.Log.File)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("ui.timezone", cfg.UI.Timezone)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func setRoles(v *viper.Viper, prefix string, r ColumnRoles) {
	v.Set(prefix+".date", r.Date)
	v.Set(prefix+".description", r.Description)
	v.Set(prefix+".amount", r.Amount)
	v.Set(prefix+".notes", r.Notes)
	v.Set(prefix+".fallback_date_col", r.FallbackDateCol)
}
