package render

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"os"

	"clipforge/internal/compositor"
	"clipforge/internal/logging"
	"clipforge/internal/media/ffmpeg"
	"clipforge/internal/services"
)

// ProgressFunc receives the render phase's completion fraction in [0,1].
type ProgressFunc func(fraction float64)

// Options fixes one render pass.
type Options struct {
	Source       string
	SourceWidth  int
	SourceHeight int
	FPS          float64
	// Duration drives progress mapping only; the frame stream itself decides
	// when the source is exhausted.
	Duration float64
	// AudioPath is the audio input muxed into the output: the source
	// container itself in original-audio mode, or a decoded dub WAV in
	// dubbed-audio mode. Empty produces a silent video track.
	AudioPath      string
	NormalizeAudio bool
	MaxQuality     bool
	// Conservative re-encodes with a widely-compatible profile after a
	// failed validation.
	Conservative bool
	Dest         string
}

type frameSource interface {
	Next() ([]byte, error)
	Close() error
}

type frameSink interface {
	WriteFrame(frame []byte) error
	Close() error
	Abort()
}

// Recorder encodes composited output for one job at a time.
type Recorder struct {
	binary string
	logger *slog.Logger

	// Injectable for tests.
	newSource func(ctx context.Context, binary, source string, width, height int, fps float64) (frameSource, error)
	newSink   func(ctx context.Context, binary string, opts ffmpeg.EncodeOptions) (frameSink, error)
}

// NewRecorder constructs a recorder invoking the given ffmpeg binary.
func NewRecorder(binary string, logger *slog.Logger) *Recorder {
	return &Recorder{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "render"),
		newSource: func(ctx context.Context, binary, source string, width, height int, fps float64) (frameSource, error) {
			return ffmpeg.NewFrameReader(ctx, binary, source, width, height, fps)
		},
		newSink: func(ctx context.Context, binary string, opts ffmpeg.EncodeOptions) (frameSink, error) {
			return ffmpeg.NewFrameWriter(ctx, binary, opts)
		},
	}
}

// Render decodes the source, composites every frame, and encodes the result
// into opts.Dest. On any failure or cancellation the destination file is
// removed and all media resources are released before returning.
func (r *Recorder) Render(ctx context.Context, comp *compositor.Compositor, canvasW, canvasH int, opts Options, progress ProgressFunc) error {
	const stage = "rendering"

	source, err := r.newSource(ctx, r.binary, opts.Source, opts.SourceWidth, opts.SourceHeight, opts.FPS)
	if err != nil {
		return services.Wrap(services.ErrMedia, stage, "open source", "", err)
	}
	defer source.Close()

	sink, err := r.newSink(ctx, r.binary, ffmpeg.EncodeOptions{
		Width:          canvasW,
		Height:         canvasH,
		FPS:            opts.FPS,
		AudioPath:      opts.AudioPath,
		NormalizeAudio: opts.NormalizeAudio,
		Dest:           opts.Dest,
		Conservative:   opts.Conservative,
		MaxQuality:     opts.MaxQuality,
	})
	if err != nil {
		return services.Wrap(services.ErrMedia, stage, "open encoder", "", err)
	}

	if err := r.renderFrames(ctx, comp, source, sink, opts, progress); err != nil {
		sink.Abort()
		_ = os.Remove(opts.Dest)
		if services.IsCancellation(err) {
			return err
		}
		return services.Wrap(services.ErrMedia, stage, "encode", "", err)
	}

	if err := sink.Close(); err != nil {
		_ = os.Remove(opts.Dest)
		return services.Wrap(services.ErrMedia, stage, "finalize encode", "", err)
	}
	if progress != nil {
		progress(1)
	}
	return nil
}

func (r *Recorder) renderFrames(ctx context.Context, comp *compositor.Compositor, source frameSource, sink frameSink, opts Options, progress ProgressFunc) error {
	frame := &image.RGBA{
		Stride: opts.SourceWidth * 4,
		Rect:   image.Rect(0, 0, opts.SourceWidth, opts.SourceHeight),
	}

	// Report at most once per second of output so progress updates stay
	// cheap.
	reportEvery := int(opts.FPS)
	if reportEvery < 1 {
		reportEvery = 1
	}

	for frameIndex := 0; ; frameIndex++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		pixels, err := source.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		frame.Pix = pixels

		t := float64(frameIndex) / opts.FPS
		composited := comp.ComposeFrame(frame, t)
		if err := sink.WriteFrame(composited.Pix); err != nil {
			return err
		}

		if progress != nil && opts.Duration > 0 && frameIndex%reportEvery == 0 {
			fraction := t / opts.Duration
			if fraction > 1 {
				fraction = 1
			}
			progress(fraction)
		}
	}
}
