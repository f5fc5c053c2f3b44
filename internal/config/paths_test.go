package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigDirXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-config", "claude-agent") {
		t.Errorf("dir = %q", dir)
	}
}

func TestConfigDirHomeFallback(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/tmp/home")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	want := filepath.Join("/tmp/home", ".config", "claude-agent")
	if dir != want {
		t.Errorf("dir = %q, want %q", dir, want)
	}
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	path, err := GlobalConfigPath()
	if err != nil {
		t.Fatalf("GlobalConfigPath: %v", err)
	}
	if !strings.HasSuffix(path, filepath.Join("claude-agent", "config.toml")) {
		t.Errorf("path = %q", path)
	}
}

func TestDataDirXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg-data", "claude-agent") {
		t.Errorf("dir = %q", dir)
	}
}

func TestDataDirHomeFallback(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", "/tmp/home")
	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir: %v", err)
	}
	want := filepath.Join("/tmp/home", ".local", "share", "claude-agent")
	if dir != want {
		t.Errorf("dir = %q, want %q", dir, want)
	}
}
