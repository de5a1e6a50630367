package trader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"alpaca-trade-bot-go/internal/config"
)

// Preflight verifies the fatal startup requirements before any cycle runs:
// broker credentials must be present and the database directory writable.
// Anything it rejects would otherwise fail mid-cycle, after orders may
// already have been placed.
func Preflight(cfg config.Config) error {
	if cfg.Alpaca.ApiKey == "" || cfg.Alpaca.SecretKey == "" {
		return errors.New("alpaca api credentials are not configured")
	}

	dsn := cfg.Database.DSN
	if dsn == "" {
		return errors.New("database dsn is not configured")
	}
	if strings.Contains(dsn, ":memory:") {
		return nil
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".preflight-*")
	if err != nil {
		return fmt.Errorf("database directory %s is not writable: %w", dir, err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)

	return nil
}
