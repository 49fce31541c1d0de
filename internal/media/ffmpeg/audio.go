package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external command. Replaceable in tests.
type Runner func(ctx context.Context, name string, args ...string) error

// Run executes a command and returns its combined output on failure. The
// default Runner.
func Run(ctx context.Context, name string, args ...string) error {
	if strings.TrimSpace(name) == "" {
		name = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// ExtractAudioArgs builds arguments extracting the first audio stream as a
// mono 16kHz WAV, the input format the transcription service expects.
func ExtractAudioArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn", "-sn", "-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
}

// ExtractAudio extracts the first audio stream from a source file as a mono
// 16kHz WAV suitable for transcription.
func ExtractAudio(ctx context.Context, run Runner, binary, source, dest string) error {
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("extract audio: source required")
	}
	if run == nil {
		run = Run
	}
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	if err := run(ctx, binary, ExtractAudioArgs(source, dest)...); err != nil {
		return fmt.Errorf("ffmpeg extract: %w", err)
	}
	return nil
}

// DecodeAudioArgs builds arguments decoding arbitrary compressed audio into a
// stereo 44.1kHz WAV the encode pipe can map directly.
func DecodeAudioArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-ac", "2",
		"-ar", "44100",
		"-c:a", "pcm_s16le",
		dest,
	}
}

// DecodeAudio decodes a compressed audio file (synthesized dub output) into a
// PCM WAV buffer file.
func DecodeAudio(ctx context.Context, run Runner, binary, source, dest string) error {
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("decode audio: source required")
	}
	if run == nil {
		run = Run
	}
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	if err := run(ctx, binary, DecodeAudioArgs(source, dest)...); err != nil {
		return fmt.Errorf("ffmpeg decode audio: %w", err)
	}
	return nil
}
