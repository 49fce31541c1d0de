package config

import (
	"fmt"
	"strings"

	"clipforge/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRender()
	c.normalizeCaptions()
	c.normalizeDubbing()
	c.normalizeConvert()
	c.normalizeArchive()
	c.normalizeWorkflow()
	c.normalizeLogging()
	c.normalizeAI()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkspaceDir, err = ExpandPath(c.Paths.WorkspaceDir); err != nil {
		return fmt.Errorf("paths.workspace_dir: %w", err)
	}
	if c.Paths.OutputDir, err = ExpandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Template.Path) != "" {
		if c.Template.Path, err = ExpandPath(c.Template.Path); err != nil {
			return fmt.Errorf("template.path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeRender() {
	c.Render.FitMode = strings.ToLower(strings.TrimSpace(c.Render.FitMode))
	if c.Render.FitMode == "" {
		c.Render.FitMode = defaultFitMode
	}
	if c.Render.FPS <= 0 {
		c.Render.FPS = defaultFPS
	}
	if c.Render.InterJobDelaySeconds < 0 {
		c.Render.InterJobDelaySeconds = 0
	}
	c.Render.Watermark = strings.TrimSpace(c.Render.Watermark)
}

func (c *Config) normalizeCaptions() {
	c.Captions.Style = strings.ToLower(strings.TrimSpace(c.Captions.Style))
	if c.Captions.Style == "" {
		c.Captions.Style = defaultCaptionStyle
	}
	c.Captions.Language = strings.TrimSpace(c.Captions.Language)
	if c.Captions.Language == "" {
		c.Captions.Language = defaultCaptionLanguage
	} else if strings.EqualFold(c.Captions.Language, "original") {
		c.Captions.Language = defaultCaptionLanguage
	} else {
		c.Captions.Language = language.Normalize(c.Captions.Language)
	}
}

func (c *Config) normalizeDubbing() {
	c.Dubbing.Language = language.Normalize(c.Dubbing.Language)
	c.Dubbing.VoiceGender = strings.ToLower(strings.TrimSpace(c.Dubbing.VoiceGender))
	if c.Dubbing.VoiceGender == "" {
		c.Dubbing.VoiceGender = defaultDubbingVoiceGender
	}
}

func (c *Config) normalizeConvert() {
	c.Convert.Format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Convert.Format), "."))
	if c.Convert.Format == "" {
		c.Convert.Format = defaultConvertFormat
	}
}

func (c *Config) normalizeArchive() {
	if c.Archive.MaxEntries <= 0 {
		c.Archive.MaxEntries = defaultArchiveMaxEntries
	}
	if c.Archive.MaxMiB <= 0 {
		c.Archive.MaxMiB = defaultArchiveMaxMiB
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeAI() {
	c.AI.BaseURL = strings.TrimRight(strings.TrimSpace(c.AI.BaseURL), "/")
	c.AI.APIKey = strings.TrimSpace(c.AI.APIKey)
	if c.AI.TimeoutSeconds <= 0 {
		c.AI.TimeoutSeconds = defaultAITimeoutSeconds
	}
}
