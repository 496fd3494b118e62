// Package config resolves server settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Environment variables read by FromEnv.
const (
	EnvDataRoot     = "WORKSYNC_DATA_ROOT"
	EnvAutoSync     = "WORKSYNC_AUTO_SYNC"
	EnvSyncDebounce = "WORKSYNC_SYNC_DEBOUNCE"
	EnvSyncCommand  = "WORKSYNC_SYNC_COMMAND"
	EnvAuditLog     = "WORKSYNC_AUDIT_LOG"
)

// Config holds resolved server settings.
type Config struct {
	// DataRoot is the directory holding config.yaml, projects/ and the vault.
	DataRoot string
	// AutoSync regenerates the vault after each committed mutation.
	AutoSync bool
	// SyncDebounce is the quiet window before an automatic regeneration runs.
	SyncDebounce time.Duration
	// SyncCommand overrides the regeneration command. Empty means the
	// server invokes its own binary's sync subcommand.
	SyncCommand string
	// AuditLog enables the SQLite activity log under DataRoot.
	AuditLog bool
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for anything unset or unparsable.
func FromEnv() Config {
	cfg := Config{
		DataRoot:     defaultDataRoot(),
		AutoSync:     true,
		SyncDebounce: 2 * time.Second,
		AuditLog:     true,
	}

	if v := os.Getenv(EnvDataRoot); v != "" {
		cfg.DataRoot = v
	}
	if v := os.Getenv(EnvAutoSync); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AutoSync = b
		}
	}
	if v := os.Getenv(EnvSyncDebounce); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SyncDebounce = d
		}
	}
	cfg.SyncCommand = os.Getenv(EnvSyncCommand)
	if v := os.Getenv(EnvAuditLog); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AuditLog = b
		}
	}

	return cfg
}

func defaultDataRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".worksync"
	}
	return filepath.Join(home, ".worksync")
}
