package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkspaceDir string `toml:"workspace_dir"`
	OutputDir    string `toml:"output_dir"`
	LogDir       string `toml:"log_dir"`
}

// Tools names the external binaries the pipeline shells out to.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// AI contains connection settings for the remote AI service used for
// transcription, translation, speech synthesis, and frame analysis.
type AI struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Template describes the branded template image and its target region, the
// placeholder rectangle source video is composited into. Region coordinates
// are in template pixel space.
type Template struct {
	Path         string `toml:"path"`
	RegionX      int    `toml:"region_x"`
	RegionY      int    `toml:"region_y"`
	RegionWidth  int    `toml:"region_width"`
	RegionHeight int    `toml:"region_height"`
}

// Render contains compositing and encoding settings.
type Render struct {
	// FitMode is one of "cover", "contain", or "fill".
	FitMode        string  `toml:"fit_mode"`
	FPS            float64 `toml:"fps"`
	MaxQuality     bool    `toml:"max_quality"`
	NormalizeAudio bool    `toml:"normalize_audio"`
	Watermark      string  `toml:"watermark"`
	// InterJobDelaySeconds lets the host reclaim decoder resources between jobs.
	InterJobDelaySeconds int `toml:"inter_job_delay_seconds"`
}

// Framing contains AI content-framing settings.
type Framing struct {
	AIEnabled bool `toml:"ai_enabled"`
}

// Captions contains burned-in caption settings.
type Captions struct {
	Enabled bool `toml:"enabled"`
	// Style is one of "top", "center", or "bottom".
	Style string `toml:"style"`
	// Language is the caption language, or "original" for no translation.
	Language string `toml:"language"`
}

// Dubbing contains translated voice dubbing settings.
type Dubbing struct {
	Enabled  bool   `toml:"enabled"`
	Language string `toml:"language"`
	// ForeignOnly skips dubbing when the source already speaks the target
	// language family.
	ForeignOnly bool   `toml:"foreign_only"`
	VoiceGender string `toml:"voice_gender"`
}

// Convert contains delivery-format conversion settings.
type Convert struct {
	Enabled bool `toml:"enabled"`
	// Format is the delivery container extension, e.g. "mp4".
	Format string `toml:"format"`
}

// Archive contains zip packaging ceilings.
type Archive struct {
	MaxEntries int   `toml:"max_entries"`
	MaxMiB     int64 `toml:"max_mib"`
}

// Workflow contains batch loop timing.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for clipforge.
//
// Configuration sections by subsystem:
//   - Paths: workspace, output, and log directories
//   - Tools: ffmpeg/ffprobe binary names
//   - AI: remote AI service connection
//   - Template: branded template image and target region
//   - Render: fit mode, fps, watermark, quality knobs
//   - Framing: AI-positioned framing toggle
//   - Captions: burned-in caption style and language
//   - Dubbing: translated voice dubbing and foreign-only gate
//   - Convert: optional delivery-format conversion
//   - Archive: zip chunk ceilings
//   - Workflow: batch loop intervals
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Tools    Tools    `toml:"tools"`
	AI       AI       `toml:"ai"`
	Template Template `toml:"template"`
	Render   Render   `toml:"render"`
	Framing  Framing  `toml:"framing"`
	Captions Captions `toml:"captions"`
	Dubbing  Dubbing  `toml:"dubbing"`
	Convert  Convert  `toml:"convert"`
	Archive  Archive  `toml:"archive"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/clipforge/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("clipforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for pipeline operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkspaceDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name.
func (c *Config) FFmpegBinary() string {
	if strings.TrimSpace(c.Tools.FFmpeg) != "" {
		return c.Tools.FFmpeg
	}
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name.
func (c *Config) FFprobeBinary() string {
	if strings.TrimSpace(c.Tools.FFprobe) != "" {
		return c.Tools.FFprobe
	}
	return "ffprobe"
}

// ArchiveMaxBytes returns the archive byte ceiling.
func (c *Config) ArchiveMaxBytes() int64 {
	return c.Archive.MaxMiB * 1024 * 1024
}

// WriteSample writes the embedded sample configuration to the given path.
func WriteSample(path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// ExpandPath resolves ~ prefixes and returns a cleaned absolute path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
