package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sshfwd/sshfwd/internal/config"
)

func TestInit_WritesLoadableConfig(t *testing.T) {
	dir := t.TempDir()
	rule := &config.Rule{
		Name:          "db",
		LocalPort:     5432,
		RemoteAddress: "db.internal:5432",
		SSHHost:       "bastion.example.com",
		SSHUser:       "ops",
	}

	require.NoError(t, Init(InitOptions{Dir: dir, Rule: rule}))

	path := filepath.Join(dir, config.ConfigFileName)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, config.Validate(cfg))

	require.Len(t, cfg.Forwards, 1)
	got := cfg.Forwards[0]
	assert.Equal(t, "db", got.Name)
	assert.Equal(t, 5432, got.LocalPort)
	assert.Equal(t, "db.internal:5432", got.RemoteAddress)
	assert.Equal(t, "bastion.example.com", got.SSHHost)
	// Defaults were applied before writing.
	assert.Equal(t, config.DefaultLocalBind, got.LocalBind)
	assert.Equal(t, config.DefaultSSHPort, got.SSHPort)
}

func TestInit_OverwriteReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0644))

	rule := &config.Rule{
		Name:          "cache",
		LocalPort:     6379,
		RemoteAddress: "cache.internal:6379",
		SSHHost:       "bastion",
		SSHUser:       "ops",
	}
	require.NoError(t, Init(InitOptions{Dir: dir, Rule: rule, Overwrite: true}))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Forwards, 1)
	assert.Equal(t, "cache", cfg.Forwards[0].Name)
}
