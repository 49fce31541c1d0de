package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// EncodeOptions configures the raw-frame encode pipe.
type EncodeOptions struct {
	Width  int
	Height int
	FPS    float64
	// AudioPath is the audio input mapped into the output. Empty produces a
	// silent video track only.
	AudioPath      string
	NormalizeAudio bool
	Dest           string
	// Conservative selects a widely-compatible codec profile at a lower
	// bitrate, used when validation of a previous encode failed.
	Conservative bool
	MaxQuality   bool
}

// WriterArgs builds the ffmpeg argument list for the encode pipe.
func WriterArgs(opts EncodeOptions) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", fmt.Sprintf("%g", opts.FPS),
		"-i", "-",
	}
	if opts.AudioPath != "" {
		args = append(args, "-i", opts.AudioPath)
	}
	args = append(args, "-map", "0:v")
	if opts.AudioPath != "" {
		args = append(args, "-map", "1:a:0", "-shortest")
		if opts.NormalizeAudio {
			args = append(args, "-af", "loudnorm=I=-16:TP=-1.5:LRA=11")
		}
		args = append(args, "-c:a", "aac", "-b:a", "192k")
	}
	args = append(args, "-c:v", "libx264", "-pix_fmt", "yuv420p")
	switch {
	case opts.Conservative:
		args = append(args, "-profile:v", "baseline", "-level", "3.1", "-preset", "medium", "-crf", "26")
	case opts.MaxQuality:
		args = append(args, "-preset", "slow", "-crf", "18")
	default:
		args = append(args, "-preset", "veryfast", "-crf", "23")
	}
	args = append(args, "-movflags", "+faststart", opts.Dest)
	return args
}

// FrameWriter consumes composited RGBA frames and encodes them into the
// destination container, muxing in the configured audio input.
type FrameWriter struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stderr    bytes.Buffer
	frameSize int
	closed    bool
}

// NewFrameWriter spawns ffmpeg consuming raw frames on stdin.
func NewFrameWriter(ctx context.Context, binary string, opts EncodeOptions) (*FrameWriter, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("frame writer: invalid dimensions %dx%d", opts.Width, opts.Height)
	}
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("frame writer: invalid fps %g", opts.FPS)
	}
	if strings.TrimSpace(opts.Dest) == "" {
		return nil, fmt.Errorf("frame writer: destination required")
	}
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, binary, WriterArgs(opts)...) //nolint:gosec
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("frame writer: stdin pipe: %w", err)
	}

	writer := &FrameWriter{
		cmd:       cmd,
		stdin:     stdin,
		frameSize: opts.Width * opts.Height * 4,
	}
	cmd.Stderr = &writer.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("frame writer: start ffmpeg: %w", err)
	}
	return writer, nil
}

// WriteFrame submits one RGBA frame to the encoder.
func (w *FrameWriter) WriteFrame(frame []byte) error {
	if len(frame) != w.frameSize {
		return fmt.Errorf("frame writer: frame size %d, want %d", len(frame), w.frameSize)
	}
	if _, err := w.stdin.Write(frame); err != nil {
		return fmt.Errorf("frame writer: write frame: %w", err)
	}
	return nil
}

// Close finishes the encode: the frame stream is closed and the encoder is
// allowed to flush. Returns any encoder failure with its stderr tail.
func (w *FrameWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	_ = w.stdin.Close()
	if err := w.cmd.Wait(); err != nil {
		return fmt.Errorf("frame writer: ffmpeg: %w: %s", err, strings.TrimSpace(w.stderr.String()))
	}
	return nil
}

// Abort terminates the encoder without flushing. Used on cancellation so a
// partial output is never left referenced.
func (w *FrameWriter) Abort() {
	if w.closed {
		return
	}
	w.closed = true
	_ = w.stdin.Close()
	if w.cmd.Process != nil {
		_ = w.cmd.Process.Kill()
	}
	_ = w.cmd.Wait()
}
