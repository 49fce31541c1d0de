package main

import (
	"path/filepath"
	"strings"
	"testing"

	"clipforge/internal/config"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "clipforge", "config.toml")

	out := mustRunCommand(t, "config", "init", "--path", target)
	if !strings.Contains(out, target) {
		t.Fatalf("init output should name the written file: %s", out)
	}

	if _, _, exists, err := config.Load(target); err != nil {
		t.Fatalf("written sample failed to load: %v", err)
	} else if !exists {
		t.Fatal("sample config file was not created")
	}
}

func TestConfigInitRefusesExistingFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	mustRunCommand(t, "config", "init", "--path", target)

	if _, err := runCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected an error when the config already exists")
	}

	mustRunCommand(t, "config", "init", "--path", target, "--overwrite")
}

func TestConfigValidateWithExplicitPath(t *testing.T) {
	configPath := writeTestConfig(t, nil)

	out := mustRunCommand(t, "--config", configPath, "config", "validate")
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected validate output: %s", out)
	}
	if !strings.Contains(out, configPath) {
		t.Fatalf("validate should report the config path: %s", out)
	}
}

func TestConfigShowRedactsAPIKey(t *testing.T) {
	configPath := writeTestConfig(t, func(cfg *config.Config) {
		cfg.AI.APIKey = "super-secret"
	})

	out := mustRunCommand(t, "--config", configPath, "config", "show")
	if strings.Contains(out, "super-secret") {
		t.Fatalf("api key leaked into show output: %s", out)
	}
	if !strings.Contains(out, "[redacted]") {
		t.Fatalf("show should mark the redacted key: %s", out)
	}
}
