package config

import (
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateDubbing(); err != nil {
		return err
	}
	if err := c.validateTemplate(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRender() error {
	switch c.Render.FitMode {
	case "cover", "contain", "fill":
	default:
		return fmt.Errorf("render.fit_mode must be cover, contain, or fill (got %q)", c.Render.FitMode)
	}
	if c.Render.FPS > 120 {
		return fmt.Errorf("render.fps %g exceeds supported maximum of 120", c.Render.FPS)
	}
	return nil
}

func (c *Config) validateCaptions() error {
	switch c.Captions.Style {
	case "top", "center", "bottom":
	default:
		return fmt.Errorf("captions.style must be top, center, or bottom (got %q)", c.Captions.Style)
	}
	return nil
}

func (c *Config) validateDubbing() error {
	if c.Dubbing.Enabled && strings.TrimSpace(c.Dubbing.Language) == "" {
		return fmt.Errorf("dubbing.language is required when dubbing is enabled")
	}
	switch c.Dubbing.VoiceGender {
	case "female", "male", "neutral":
	default:
		return fmt.Errorf("dubbing.voice_gender must be female, male, or neutral (got %q)", c.Dubbing.VoiceGender)
	}
	return nil
}

func (c *Config) validateTemplate() error {
	if strings.TrimSpace(c.Template.Path) == "" {
		return nil
	}
	if c.Template.RegionWidth <= 0 || c.Template.RegionHeight <= 0 {
		return fmt.Errorf("template.region_width and template.region_height must be positive")
	}
	if c.Template.RegionX < 0 || c.Template.RegionY < 0 {
		return fmt.Errorf("template.region_x and template.region_y must be non-negative")
	}
	return nil
}

func (c *Config) validateArchive() error {
	if c.Archive.MaxEntries <= 0 {
		return fmt.Errorf("archive.max_entries must be positive")
	}
	if c.Archive.MaxMiB <= 0 {
		return fmt.Errorf("archive.max_mib must be positive")
	}
	return nil
}
