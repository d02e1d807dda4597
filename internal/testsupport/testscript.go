package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

var (
	buildOnce sync.Once
	pvPath    string
	buildErr  error
)

// BuildPV builds the pv binary once and returns its path.
func BuildPV(t testing.TB) string {
	t.Helper()

	buildOnce.Do(func() {
		moduleRoot, err := findModuleRoot()
		if err != nil {
			buildErr = err
			return
		}

		binDir, err := os.MkdirTemp("", "pv-bin-")
		if err != nil {
			buildErr = err
			return
		}

		pvPath = filepath.Join(binDir, "pv")
		cmd := exec.Command("go", "build", "-o", pvPath, "./cmd/pv")
		cmd.Dir = moduleRoot
		output, err := cmd.CombinedOutput()
		if err != nil {
			buildErr = fmt.Errorf("build pv: %w: %s", err, strings.TrimSpace(string(output)))
		}
	})

	if buildErr != nil {
		t.Fatalf("%v", buildErr)
	}

	return pvPath
}

// SetupScriptEnv configures common environment variables for testscript.
// It sets PV to the built binary, HOME to a fresh directory, and starts a
// feed server whose base URL is in FEED. PV_FEED_URL points at its /feed.
func SetupScriptEnv(t testing.TB, env *testscript.Env) error {
	t.Helper()

	env.Setenv("PV", BuildPV(t))

	homeDir := filepath.Join(env.WorkDir, "home")
	if err := EnsureHomeDirs(homeDir); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)
	env.Setenv("PV_STATE_DIR", "")
	env.Setenv("PV_LOG_LEVEL", "")
	env.Setenv("NO_COLOR", "1")

	server := NewFeedServer()
	env.Defer(server.Close)
	env.Setenv("FEED", server.URL)
	env.Setenv("PV_FEED_URL", server.URL+"/feed")
	return nil
}

// CmdEnvSet stores the trimmed contents of a file in an env var.
func CmdEnvSet(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("envset does not support negation")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: envset VAR FILE")
	}

	value := strings.TrimSpace(ts.ReadFile(args[1]))
	ts.Setenv(args[0], value)
}

// CmdTaskID finds a task by text in `pv tasks list --json` output and
// stores its id in an env var.
func CmdTaskID(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("taskid does not support negation")
	}
	if len(args) != 3 {
		ts.Fatalf("usage: taskid FILE TEXT VAR")
	}

	var items []struct {
		ID   int64  `json:"id"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(ts.ReadFile(args[0])), &items); err != nil {
		ts.Fatalf("parse task list: %v", err)
	}

	for _, item := range items {
		if item.Text == args[1] {
			ts.Setenv(args[2], strconv.FormatInt(item.ID, 10))
			return
		}
	}

	ts.Fatalf("task with text %q not found", args[1])
}

func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find module root (go.mod)")
		}
		dir = parent
	}
}
