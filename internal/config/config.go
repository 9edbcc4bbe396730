package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Veraticus/thrift/internal/common"
	"github.com/Veraticus/thrift/internal/llm"
	"github.com/Veraticus/thrift/internal/model"
	"github.com/Veraticus/thrift/internal/plaid"
	"github.com/Veraticus/thrift/internal/sheets"
)

// EnvPrefix is prepended to every environment override, e.g. THRIFT_LLM_PROVIDER.
const EnvPrefix = "THRIFT"

// Settings is the typed view of the loaded configuration.
type Settings struct {
	Plaid    PlaidSettings
	Sheets   SheetsSettings
	Database DatabaseSettings
	Logging  LoggingSettings
	User     UserSettings
	LLM      LLMSettings
}

// DatabaseSettings configures the SQLite store.
type DatabaseSettings struct {
	Path string
}

// LoggingSettings configures the global slog handler.
type LoggingSettings struct {
	Level  string
	Format string
}

// LLMSettings configures the completion provider.
type LLMSettings struct {
	Provider   string
	APIKey     string
	Model      string
	BaseURL    string
	CachePath  string
	MaxRetries int
	MaxTokens  int
	RateLimit  int
	RetryDelay time.Duration
	CacheTTL   time.Duration
}

// UserSettings is the profile of the single local user.
type UserSettings struct {
	ID             string
	Name           string
	BudgetMode     string
	Language       string
	BaselineIncome float64
	FlexibleBudget float64
}

// PlaidSettings configures bank sync.
type PlaidSettings struct {
	ClientID    string
	Secret      string
	Environment string
	AccessToken string
}

// SheetsSettings configures report export.
type SheetsSettings struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TokenFile          string
}

// Dir returns the directory holding the config file, database and caches.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "thrift")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".thrift"
	}
	return filepath.Join(home, ".config", "thrift")
}

// SetDefaults registers the default value of every known key.
func SetDefaults(v *viper.Viper) {
	dir := Dir()

	v.SetDefault("database.path", filepath.Join(dir, "thrift.db"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("llm.provider", "none")
	v.SetDefault("llm.max_retries", 1)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.retry_delay", time.Second)
	v.SetDefault("llm.cache_ttl", 24*time.Hour)
	v.SetDefault("llm.cache_path", filepath.Join(dir, "completions.db"))
	v.SetDefault("llm.rate_limit", 60)

	v.SetDefault("user.id", "local")
	v.SetDefault("user.budget_mode", string(model.BudgetModeAuto))

	v.SetDefault("plaid.environment", "sandbox")

	v.SetDefault("sheets.spreadsheet_name", sheets.DefaultSpreadsheetName)
	v.SetDefault("sheets.token_file", filepath.Join(dir, "sheets_token.json"))
}

// Init loads .env, then the config file, then environment overrides into v.
// A missing .env or config file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	if err := LoadEnvFile(".env"); err != nil {
		return err
	}

	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(ExpandPath(cfgFile))
	} else {
		v.AddConfigPath(Dir())
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	return nil
}

// LoadEnvFile loads KEY=value pairs from path without overriding variables
// that are already set.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads the typed settings out of v.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		Database: DatabaseSettings{Path: ExpandPath(v.GetString("database.path"))},
		Logging: LoggingSettings{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		LLM: LLMSettings{
			Provider:   strings.ToLower(v.GetString("llm.provider")),
			APIKey:     v.GetString("llm.api_key"),
			Model:      v.GetString("llm.model"),
			BaseURL:    v.GetString("llm.base_url"),
			CachePath:  ExpandPath(v.GetString("llm.cache_path")),
			MaxRetries: v.GetInt("llm.max_retries"),
			MaxTokens:  v.GetInt("llm.max_tokens"),
			RateLimit:  v.GetInt("llm.rate_limit"),
			RetryDelay: v.GetDuration("llm.retry_delay"),
			CacheTTL:   v.GetDuration("llm.cache_ttl"),
		},
		User: UserSettings{
			ID:             v.GetString("user.id"),
			Name:           v.GetString("user.name"),
			BudgetMode:     strings.ToLower(v.GetString("user.budget_mode")),
			Language:       v.GetString("user.language"),
			BaselineIncome: v.GetFloat64("user.baseline_income"),
			FlexibleBudget: v.GetFloat64("user.flexible_budget"),
		},
		Plaid: PlaidSettings{
			ClientID:    v.GetString("plaid.client_id"),
			Secret:      v.GetString("plaid.secret"),
			Environment: v.GetString("plaid.environment"),
			AccessToken: v.GetString("plaid.access_token"),
		},
		Sheets: SheetsSettings{
			ClientID:           v.GetString("sheets.client_id"),
			ClientSecret:       v.GetString("sheets.client_secret"),
			RefreshToken:       v.GetString("sheets.refresh_token"),
			ServiceAccountPath: ExpandPath(v.GetString("sheets.service_account_path")),
			SpreadsheetID:      v.GetString("sheets.spreadsheet_id"),
			SpreadsheetName:    v.GetString("sheets.spreadsheet_name"),
			TokenFile:          ExpandPath(v.GetString("sheets.token_file")),
		},
	}

	if s.LLM.APIKey == "" {
		s.LLM.APIKey = providerKey(s.LLM.Provider)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func providerKey(provider string) string {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "gemini":
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			return key
		}
		return os.Getenv("GOOGLE_API_KEY")
	default:
		return ""
	}
}

// Validate checks the settings that can be checked without contacting anything.
func (s *Settings) Validate() error {
	if s.Database.Path == "" {
		return fmt.Errorf("%w: database.path", common.ErrMissingConfig)
	}
	if strings.TrimSpace(s.User.ID) == "" {
		return fmt.Errorf("%w: user.id", common.ErrMissingConfig)
	}

	switch model.BudgetMode(s.User.BudgetMode) {
	case model.BudgetModeAuto, model.BudgetModeManual:
	default:
		return fmt.Errorf("%w: user.budget_mode must be auto or manual, got %q", common.ErrInvalidConfig, s.User.BudgetMode)
	}
	if s.User.BaselineIncome < 0 || s.User.FlexibleBudget < 0 {
		return fmt.Errorf("%w: user income and budget cannot be negative", common.ErrInvalidConfig)
	}

	switch s.LLM.Provider {
	case "", "none", "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("%w: unsupported llm.provider %q", common.ErrInvalidConfig, s.LLM.Provider)
	}
	if s.LLM.MaxRetries < 0 {
		return fmt.Errorf("%w: llm.max_retries cannot be negative", common.ErrInvalidConfig)
	}

	return nil
}

// LLMConfig converts the settings into the completion layer's configuration.
func (s *Settings) LLMConfig() llm.Config {
	return llm.Config{
		Provider:   s.LLM.Provider,
		APIKey:     s.LLM.APIKey,
		Model:      s.LLM.Model,
		BaseURL:    s.LLM.BaseURL,
		CachePath:  s.LLM.CachePath,
		MaxRetries: s.LLM.MaxRetries,
		RetryDelay: s.LLM.RetryDelay,
		CacheTTL:   s.LLM.CacheTTL,
		RateLimit:  s.LLM.RateLimit,
		MaxTokens:  s.LLM.MaxTokens,
	}
}

// Profile returns the configured user profile.
func (s *Settings) Profile() *model.User {
	return &model.User{
		ID:             s.User.ID,
		Name:           s.User.Name,
		BudgetMode:     model.BudgetMode(s.User.BudgetMode),
		Language:       s.User.Language,
		BaselineIncome: s.User.BaselineIncome,
		FlexibleBudget: s.User.FlexibleBudget,
	}
}

// PlaidConfig converts the settings into the Plaid client's configuration,
// falling back to the PLAID_* variables Plaid's own tooling uses.
func (s *Settings) PlaidConfig() plaid.Config {
	cfg := plaid.Config{
		ClientID:    s.Plaid.ClientID,
		Secret:      s.Plaid.Secret,
		Environment: s.Plaid.Environment,
		AccessToken: s.Plaid.AccessToken,
	}
	if cfg.ClientID == "" {
		cfg.ClientID = os.Getenv("PLAID_CLIENT_ID")
	}
	if cfg.Secret == "" {
		cfg.Secret = os.Getenv("PLAID_SECRET")
	}
	if cfg.AccessToken == "" {
		cfg.AccessToken = os.Getenv("PLAID_ACCESS_TOKEN")
	}
	return cfg
}

// SheetsConfig converts the settings into the Sheets writer's configuration.
// Missing values fall back to the GOOGLE_SHEETS_* variables, and a refresh
// token saved by the consent flow is used when none is configured.
func (s *Settings) SheetsConfig() sheets.Config {
	cfg := sheets.DefaultConfig()
	cfg.ClientID = firstNonEmpty(s.Sheets.ClientID, os.Getenv("GOOGLE_SHEETS_CLIENT_ID"))
	cfg.ClientSecret = firstNonEmpty(s.Sheets.ClientSecret, os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET"))
	cfg.RefreshToken = firstNonEmpty(s.Sheets.RefreshToken, os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN"))
	cfg.ServiceAccountPath = firstNonEmpty(s.Sheets.ServiceAccountPath, ExpandPath(os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")))
	cfg.SpreadsheetID = firstNonEmpty(s.Sheets.SpreadsheetID, os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"))
	cfg.SpreadsheetName = firstNonEmpty(s.Sheets.SpreadsheetName, cfg.SpreadsheetName)
	cfg.TokenFile = s.Sheets.TokenFile
	if cfg.ServiceAccountPath == "" {
		cfg.RefreshToken = sheets.RefreshToken(cfg)
	}
	return cfg
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
