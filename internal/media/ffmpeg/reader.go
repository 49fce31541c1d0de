package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// FrameReader streams raw RGBA frames decoded from a source video at a fixed
// output size and frame rate. Frames are delivered in presentation order.
type FrameReader struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	buf    []byte
	width  int
	height int
	closed bool
}

// ReaderArgs builds the ffmpeg argument list for a raw RGBA decode pipe.
func ReaderArgs(source string, width, height int, fps float64) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vf", fmt.Sprintf("scale=%d:%d,fps=%g", width, height, fps),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-an", "-sn", "-dn",
		"-",
	}
}

// NewFrameReader spawns ffmpeg decoding the source into an RGBA frame stream.
func NewFrameReader(ctx context.Context, binary, source string, width, height int, fps float64) (*FrameReader, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("frame reader: invalid dimensions %dx%d", width, height)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("frame reader: invalid fps %g", fps)
	}
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, binary, ReaderArgs(source, width, height, fps)...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("frame reader: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("frame reader: start ffmpeg: %w", err)
	}

	return &FrameReader{
		cmd:    cmd,
		stdout: stdout,
		buf:    make([]byte, width*height*4),
		width:  width,
		height: height,
	}, nil
}

// Next returns the next decoded frame as tightly packed RGBA bytes. The
// returned slice is reused between calls; callers must not retain it. Returns
// io.EOF when the source is exhausted.
func (r *FrameReader) Next() ([]byte, error) {
	if r.closed {
		return nil, io.EOF
	}
	if _, err := io.ReadFull(r.stdout, r.buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("frame reader: read frame: %w", err)
	}
	return r.buf, nil
}

// Width returns the output frame width in pixels.
func (r *FrameReader) Width() int { return r.width }

// Height returns the output frame height in pixels.
func (r *FrameReader) Height() int { return r.height }

// Close terminates the decode process and releases the pipe. Safe to call on
// every exit path, including after Next returned an error.
func (r *FrameReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	_ = r.stdout.Close()
	if r.cmd.Process != nil {
		_ = r.cmd.Process.Kill()
	}
	_ = r.cmd.Wait()
	return nil
}
