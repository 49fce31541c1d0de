package testsupport

import (
	"path/filepath"
	"testing"

	"clipforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkspaceDir = filepath.Join(base, "workspace")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Render.InterJobDelaySeconds = 0
	cfg.Workflow.QueuePollInterval = 1

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithCaptions enables captions with the given style on the test config.
func WithCaptions(style string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Captions.Enabled = true
		cfg.Captions.Style = style
	}
}

// WithDubbing enables dubbing toward the given language on the test config.
func WithDubbing(language string, foreignOnly bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Dubbing.Enabled = true
		cfg.Dubbing.Language = language
		cfg.Dubbing.ForeignOnly = foreignOnly
	}
}
