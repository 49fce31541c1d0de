package ffmpeg

import (
	"context"
	"fmt"
	"strings"
)

// ExtractFrameArgs builds arguments grabbing a single frame at the given
// offset as a PNG, the input the frame-analysis service expects.
func ExtractFrameArgs(source, dest string, atSeconds float64) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", fmt.Sprintf("%.3f", atSeconds),
		"-i", source,
		"-frames:v", "1",
		"-c:v", "png",
		dest,
	}
}

// ExtractFrame grabs one representative frame from the source as a PNG file.
func ExtractFrame(ctx context.Context, run Runner, binary, source, dest string, atSeconds float64) error {
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("extract frame: source required")
	}
	if run == nil {
		run = Run
	}
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	if err := run(ctx, binary, ExtractFrameArgs(source, dest, atSeconds)...); err != nil {
		return fmt.Errorf("ffmpeg extract frame: %w", err)
	}
	return nil
}
