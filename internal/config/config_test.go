package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "https://api.vrchat.cloud/api/1", cfg.UpstreamAPIURL)
	assert.Equal(t, "wss://vrchat.com", cfg.UpstreamWSURL)
	assert.Equal(t, "accounts.json", cfg.AccountsFile)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("UPSTREAM_API_URL", "http://localhost:4567/api/1")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "http://localhost:4567/api/1", cfg.UpstreamAPIURL)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadAccounts_MissingFileIsNotFatal(t *testing.T) {
	cfg := &Config{AccountsFile: filepath.Join(t.TempDir(), "nope.json")}

	err := LoadAccounts(cfg)
	assert.ErrorIs(t, err, ErrNoAccountsFile)
	assert.Empty(t, cfg.Accounts)
}

func TestLoadAccounts_ReadsAccountList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	data := `{
		"accounts": [
			{"username": "alice", "password": "hunter2", "totpSecret": "JBSW Y3DP EHPK 3PXP"},
			{"username": "bob", "password": "swordfish"}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg := &Config{AccountsFile: path}
	require.NoError(t, LoadAccounts(cfg))

	require.Len(t, cfg.Accounts, 2)
	assert.Equal(t, "alice", cfg.Accounts[0].Username)
	assert.Equal(t, "JBSW Y3DP EHPK 3PXP", cfg.Accounts[0].TOTPSecret)
	assert.Equal(t, "bob", cfg.Accounts[1].Username)
	assert.Empty(t, cfg.Accounts[1].TOTPSecret)
}

func TestLoadAccounts_RejectsMissingUsername(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	data := `{"accounts": [{"password": "hunter2"}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg := &Config{AccountsFile: path}
	err := LoadAccounts(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no username")
}

func TestLoadAccounts_RejectsMissingPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	data := `{"accounts": [{"username": "alice"}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg := &Config{AccountsFile: path}
	err := LoadAccounts(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no password")
}
