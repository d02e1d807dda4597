package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// pvEnv lists the variables that override pv's config file.
var pvEnv = []string{
	"PV_STATE_DIR",
	"PV_STORAGE_BACKEND",
	"PV_FEED_URL",
	"PV_FEED_TIMEOUT",
	"PV_LOG_LEVEL",
}

// EnsureHomeDirs creates pv's state and config directories under homeDir.
func EnsureHomeDirs(homeDir string) error {
	for _, dir := range []string{
		filepath.Join(homeDir, ".local", "state", "pv"),
		filepath.Join(homeDir, ".config", "pv"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// SetupTestHome points HOME at a fresh directory and unsets the PV_*
// overrides so tests see only their own config.
func SetupTestHome(t testing.TB) string {
	t.Helper()

	homeDir := t.TempDir()
	if err := EnsureHomeDirs(homeDir); err != nil {
		t.Fatalf("setup home dir: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, name := range pvEnv {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	return homeDir
}
