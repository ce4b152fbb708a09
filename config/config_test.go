package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8082 {
		t.Errorf("Server.Port = %d, want 8082", cfg.Server.Port)
	}
	if cfg.API.ClobURL != "https://clob.polymarket.com" {
		t.Errorf("ClobURL = %q", cfg.API.ClobURL)
	}
	if cfg.Watcher.PollIntervalSecs != 30 {
		t.Errorf("Watcher.PollIntervalSecs = %d, want 30", cfg.Watcher.PollIntervalSecs)
	}
	if cfg.Executor.CopyWindowMins != 10 {
		t.Errorf("Executor.CopyWindowMins = %d, want 10", cfg.Executor.CopyWindowMins)
	}
	if cfg.Executor.FillWaitSecs != 5 {
		t.Errorf("Executor.FillWaitSecs = %d, want 5", cfg.Executor.FillWaitSecs)
	}
	if cfg.Executor.MaxErrorMsgLength != 500 {
		t.Errorf("Executor.MaxErrorMsgLength = %d, want 500", cfg.Executor.MaxErrorMsgLength)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("server:\n  port: 9090\nwatcher:\n  poll_interval_seconds: 5\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Watcher.PollIntervalSecs != 5 {
		t.Errorf("Watcher.PollIntervalSecs = %d, want 5", cfg.Watcher.PollIntervalSecs)
	}
	// Unset fields fall back to defaults
	if cfg.Watcher.IdleIntervalSecs != 60 {
		t.Errorf("Watcher.IdleIntervalSecs = %d, want 60", cfg.Watcher.IdleIntervalSecs)
	}
	if cfg.API.GammaURL != "https://gamma-api.polymarket.com" {
		t.Errorf("GammaURL = %q", cfg.API.GammaURL)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CLOB_API_URL", "http://localhost:9000")
	t.Setenv("WATCHER_POLL_INTERVAL", "7")
	t.Setenv("EXECUTOR_POLL_INTERVAL", "garbage")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.API.ClobURL != "http://localhost:9000" {
		t.Errorf("ClobURL = %q, want env override", cfg.API.ClobURL)
	}
	if cfg.Watcher.PollIntervalSecs != 7 {
		t.Errorf("Watcher.PollIntervalSecs = %d, want 7", cfg.Watcher.PollIntervalSecs)
	}
	// Unparseable values are ignored
	if cfg.Executor.PollIntervalSecs != 10 {
		t.Errorf("Executor.PollIntervalSecs = %d, want default 10", cfg.Executor.PollIntervalSecs)
	}
}
