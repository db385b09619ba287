package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/viper"
)

// Account is a single upstream service account from the accounts file.
// TOTPSecret is optional; accounts without one can only log in when the
// upstream does not demand a second factor.
type Account struct {
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	TOTPSecret string `mapstructure:"totpSecret"`
}

type Config struct {
	AppEnv         string
	Port           string
	LogLevel       string
	LogFormat      string
	UpstreamAPIURL string
	UpstreamWSURL  string
	AccountsFile   string
	Accounts       []Account
}

const (
	defaultUpstreamAPIURL = "https://api.vrchat.cloud/api/1"
	defaultUpstreamWSURL  = "wss://vrchat.com"
	defaultAccountsFile   = "accounts.json"
)

// ErrNoAccountsFile indicates the accounts file does not exist. The proxy
// still starts, with an empty registry.
var ErrNoAccountsFile = errors.New("accounts file not found")

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "text"),
		UpstreamAPIURL: getEnv("UPSTREAM_API_URL", defaultUpstreamAPIURL),
		UpstreamWSURL:  getEnv("UPSTREAM_WS_URL", defaultUpstreamWSURL),
		AccountsFile:   getEnv("ACCOUNTS_FILE", defaultAccountsFile),
	}

	if _, err := url.Parse(cfg.UpstreamAPIURL); err != nil {
		return nil, fmt.Errorf("UPSTREAM_API_URL is not a valid URL: %w", err)
	}
	if _, err := url.Parse(cfg.UpstreamWSURL); err != nil {
		return nil, fmt.Errorf("UPSTREAM_WS_URL is not a valid URL: %w", err)
	}

	return cfg, nil
}

// LoadAccounts reads the accounts file into cfg.Accounts. A missing file
// returns ErrNoAccountsFile and leaves the registry empty; a malformed file
// is a hard error.
func LoadAccounts(cfg *Config) error {
	if _, err := os.Stat(cfg.AccountsFile); os.IsNotExist(err) {
		return ErrNoAccountsFile
	}

	v := viper.New()
	v.SetConfigFile(cfg.AccountsFile)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read accounts file: %w", err)
	}

	var accounts []Account
	if err := v.UnmarshalKey("accounts", &accounts); err != nil {
		return fmt.Errorf("parse accounts file: %w", err)
	}

	for i, account := range accounts {
		if account.Username == "" {
			return fmt.Errorf("account %d has no username", i)
		}
		if account.Password == "" {
			return fmt.Errorf("account %q has no password", account.Username)
		}
	}

	cfg.Accounts = accounts
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
