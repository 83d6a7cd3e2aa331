package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/kong"

	"github.com/scipunch/packard/config"
)

func parseArgs(t *testing.T, argv ...string) cli {
	t.Helper()
	var args cli
	parser, err := kong.New(&args, kong.Vars{
		"config_path":   "/tmp/packard/config.toml",
		"default_count": "8",
	})
	if err != nil {
		t.Fatalf("Failed to build parser: %v", err)
	}
	if _, err := parser.Parse(argv); err != nil {
		t.Fatalf("Failed to parse %v: %v", argv, err)
	}
	return args
}

func TestCLI_Flags(t *testing.T) {
	args := parseArgs(t, "-c", "3", "-s", "300", "-l", "tech", "--timeout", "5s", "-v")

	o := args.overrides()
	if o.Count == nil || *o.Count != 3 {
		t.Errorf("Expected count 3, got %v", o.Count)
	}
	if o.SkipAmount == nil || *o.SkipAmount != 300 {
		t.Errorf("Expected skip 300, got %v", o.SkipAmount)
	}
	if o.SelectedList != "tech" {
		t.Errorf("Expected list tech, got %q", o.SelectedList)
	}
	if o.Timeout == nil || *o.Timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", o.Timeout)
	}
	if !args.Verbose {
		t.Error("Expected verbose")
	}
}

func TestCLI_Defaults(t *testing.T) {
	args := parseArgs(t)

	if args.Config != "/tmp/packard/config.toml" {
		t.Errorf("Expected default config path, got %q", args.Config)
	}
	o := args.overrides()
	if o.Count != nil || o.SkipAmount != nil || o.Timeout != nil || o.SelectedList != "" {
		t.Errorf("Expected no overrides, got %+v", o)
	}
}

func TestLoadConfig_FirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "packard", "config.toml")

	conf, err := loadConfig(path, path)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected default config to be written: %v", err)
	}

	if _, err := conf.Resolve(config.Overrides{}); !errors.Is(err, config.ErrNoListSelected) {
		t.Errorf("Expected ErrNoListSelected on first run, got %v", err)
	}

	// the written file must read back to the same unresolvable defaults
	again, err := loadConfig(path, path)
	if err != nil {
		t.Fatalf("Second loadConfig failed: %v", err)
	}
	if _, err := again.Resolve(config.Overrides{}); !errors.Is(err, config.ErrNoListSelected) {
		t.Errorf("Expected ErrNoListSelected after reload, got %v", err)
	}
}

func TestLoadConfig_MissingCustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")

	_, err := loadConfig(path, filepath.Join(dir, "default.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Expected ErrNotExist for a missing custom config, got %v", err)
	}
	if _, statErr := os.Stat(path); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("Custom config must not be created, stat returned %v", statErr)
	}
}
