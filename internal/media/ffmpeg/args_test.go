package ffmpeg

import (
	"context"
	"strings"
	"testing"
)

func TestReaderArgsForcesRateAndSize(t *testing.T) {
	args := strings.Join(ReaderArgs("/tmp/in.mp4", 1080, 1920, 30), " ")
	if !strings.Contains(args, "scale=1080:1920,fps=30") {
		t.Fatalf("missing scale/fps filter: %s", args)
	}
	if !strings.Contains(args, "-pix_fmt rgba") {
		t.Fatalf("expected rgba output: %s", args)
	}
	if !strings.Contains(args, "-an") {
		t.Fatalf("decode pipe must drop audio: %s", args)
	}
}

func TestWriterArgsAudioMapping(t *testing.T) {
	opts := EncodeOptions{Width: 1080, Height: 1920, FPS: 30, AudioPath: "/tmp/dub.wav", Dest: "/tmp/out.mp4"}
	args := strings.Join(WriterArgs(opts), " ")
	if !strings.Contains(args, "-map 0:v") || !strings.Contains(args, "-map 1:a:0") {
		t.Fatalf("expected video and audio mapping: %s", args)
	}
	if strings.Contains(args, "loudnorm") {
		t.Fatalf("loudnorm should be off by default: %s", args)
	}

	opts.NormalizeAudio = true
	args = strings.Join(WriterArgs(opts), " ")
	if !strings.Contains(args, "loudnorm") {
		t.Fatalf("expected loudnorm filter: %s", args)
	}
}

func TestWriterArgsConservativeProfile(t *testing.T) {
	opts := EncodeOptions{Width: 720, Height: 1280, FPS: 24, Dest: "/tmp/out.mp4", Conservative: true}
	args := strings.Join(WriterArgs(opts), " ")
	if !strings.Contains(args, "-profile:v baseline") {
		t.Fatalf("expected baseline profile for conservative retry: %s", args)
	}
	if strings.Contains(args, "-map 1:a:0") {
		t.Fatalf("no audio input configured, should not map audio: %s", args)
	}
}

func TestExtractAudioUsesRunner(t *testing.T) {
	var gotName string
	var gotArgs []string
	run := func(ctx context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		return nil
	}
	if err := ExtractAudio(context.Background(), run, "ffmpeg", "/tmp/in.mp4", "/tmp/out.wav"); err != nil {
		t.Fatalf("ExtractAudio: %v", err)
	}
	if gotName != "ffmpeg" {
		t.Fatalf("unexpected binary: %s", gotName)
	}
	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "-ar 16000") || !strings.Contains(joined, "-ac 1") {
		t.Fatalf("expected mono 16kHz extraction: %s", joined)
	}
}
