package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultStateDirUsesHome(t *testing.T) {
	t.Setenv("HOME", filepath.Join("/tmp", "test-home"))

	dir, err := DefaultStateDir()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	expected := filepath.Join("/tmp", "test-home", ".local", "state", "pv")
	if dir != expected {
		t.Fatalf("expected %s, got %s", expected, dir)
	}
}

func TestDefaultConfigPathUsesHome(t *testing.T) {
	t.Setenv("HOME", filepath.Join("/tmp", "test-home"))

	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	expected := filepath.Join("/tmp", "test-home", ".config", "pv", "config.toml")
	if path != expected {
		t.Fatalf("expected %s, got %s", expected, path)
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", filepath.Join("/tmp", "test-home"))

	cases := []struct {
		input string
		want  string
	}{
		{input: "~", want: filepath.Join("/tmp", "test-home")},
		{input: "~/state/pv", want: filepath.Join("/tmp", "test-home", "state", "pv")},
		{input: "/var/lib/pv", want: "/var/lib/pv"},
		{input: "relative/~/dir", want: "relative/~/dir"},
	}

	for _, tc := range cases {
		got, err := ExpandHome(tc.input)
		if err != nil {
			t.Fatalf("ExpandHome(%q) failed: %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("ExpandHome(%q) = %q, expected %q", tc.input, got, tc.want)
		}
	}
}

func TestResolveWithDefault(t *testing.T) {
	t.Run("returns override when provided", func(t *testing.T) {
		result, err := ResolveWithDefault("/custom/path", DefaultStateDir)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result != "/custom/path" {
			t.Fatalf("expected /custom/path, got %s", result)
		}
	})

	t.Run("calls default function when override is empty", func(t *testing.T) {
		t.Setenv("HOME", filepath.Join("/tmp", "test-home"))

		result, err := ResolveWithDefault("", DefaultStateDir)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		expected := filepath.Join("/tmp", "test-home", ".local", "state", "pv")
		if result != expected {
			t.Fatalf("expected %s, got %s", expected, result)
		}
	})

	t.Run("propagates error from default function", func(t *testing.T) {
		errorFn := func() (string, error) {
			return "", os.ErrNotExist
		}

		_, err := ResolveWithDefault("", errorFn)
		if err != os.ErrNotExist {
			t.Fatalf("expected os.ErrNotExist, got %v", err)
		}
	})
}
