// Package convert re-encodes a finished container into a widely-compatible
// delivery format.
package convert

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"clipforge/internal/logging"
	"clipforge/internal/media/ffmpeg"
	"clipforge/internal/services"
)

// Converter performs full re-encodes. A remux is not enough: source
// containers may carry codecs the delivery format does not support.
type Converter struct {
	binary string
	run    ffmpeg.Runner
	logger *slog.Logger
}

// New constructs a converter invoking the given ffmpeg binary.
func New(binary string, logger *slog.Logger) *Converter {
	return &Converter{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "convert"),
	}
}

// Args builds the re-encode argument list.
func Args(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-preset", "veryfast",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		dest,
	}
}

// DestPath derives the converted file path next to the source, swapping the
// extension for the target format.
func DestPath(source, format string) string {
	format = strings.TrimPrefix(strings.TrimSpace(format), ".")
	if format == "" {
		format = "mp4"
	}
	base := strings.TrimSuffix(source, filepath.Ext(source))
	return base + "." + format
}

// Convert re-encodes source into dest. Cancellation aborts the encode
// promptly and removes the partial output; any other failure also removes
// the partial output so the caller can fall back to distributing the
// original container.
func (c *Converter) Convert(ctx context.Context, source, dest string) error {
	const stage = "converting"
	if strings.TrimSpace(source) == "" || strings.TrimSpace(dest) == "" {
		return services.Wrap(services.ErrConfiguration, stage, "convert", "source and destination required", nil)
	}

	run := c.run
	if run == nil {
		run = ffmpeg.Run
	}
	if err := run(ctx, c.binary, Args(source, dest)...); err != nil {
		_ = os.Remove(dest)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return services.Wrap(services.ErrMedia, stage, "re-encode", "conversion failed", err)
	}
	return nil
}
