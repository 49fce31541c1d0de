package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipforge/internal/logging"
	"clipforge/internal/services"
)

func TestArgsFullReencode(t *testing.T) {
	args := Args("in.webm", "out.mp4")
	joined := strings.Join(args, " ")
	for _, want := range []string{"-c:v libx264", "-c:a aac", "out.mp4"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args missing %q: %v", want, args)
		}
	}
	// A remux flag would defeat the purpose.
	if strings.Contains(joined, "-c copy") || strings.Contains(joined, "-c:v copy") {
		t.Fatalf("conversion must re-encode, not remux: %v", args)
	}
}

func TestDestPath(t *testing.T) {
	if got := DestPath("/out/video.webm", "mp4"); got != "/out/video.mp4" {
		t.Fatalf("DestPath = %q", got)
	}
	if got := DestPath("/out/video.mkv", ""); got != "/out/video.mp4" {
		t.Fatalf("empty format should default to mp4, got %q", got)
	}
	if got := DestPath("/out/video.mkv", ".webm"); got != "/out/video.webm" {
		t.Fatalf("DestPath = %q", got)
	}
}

func TestConvertRemovesPartialOutputOnFailure(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.mp4")

	c := New("ffmpeg", logging.NewNop())
	c.run = func(ctx context.Context, name string, args ...string) error {
		if err := os.WriteFile(dest, []byte("partial"), 0o644); err != nil {
			t.Fatal(err)
		}
		return errors.New("unsupported codec")
	}

	err := c.Convert(context.Background(), "in.webm", dest)
	if !errors.Is(err, services.ErrMedia) {
		t.Fatalf("expected media error, got %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Fatal("partial output must be removed on failure")
	}
}

func TestConvertCancellationIsDistinct(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.mp4")
	ctx, cancel := context.WithCancel(context.Background())

	c := New("ffmpeg", logging.NewNop())
	c.run = func(ctx context.Context, name string, args ...string) error {
		cancel()
		return errors.New("killed")
	}

	err := c.Convert(ctx, "in.webm", dest)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, services.ErrMedia) {
		t.Fatal("cancellation must not be reported as a media error")
	}
}

func TestConvertRequiresPaths(t *testing.T) {
	c := New("ffmpeg", logging.NewNop())
	if err := c.Convert(context.Background(), "", "out.mp4"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
