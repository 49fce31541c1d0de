package fluidity

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"time"

	"clipforge/internal/compositor"
	"clipforge/internal/logging"
	"clipforge/internal/media/ffmpeg"
	"clipforge/internal/services"
)

// Default trial length. A few seconds is enough to see sustained compositing
// cost without delaying the batch noticeably.
const defaultTrialSeconds = 3

type frameSource interface {
	Next() ([]byte, error)
	Close() error
}

// TrialOptions configures one trial render.
type TrialOptions struct {
	Source       string
	SourceWidth  int
	SourceHeight int
	FPS          float64
	// Seconds bounds the trial length; zero uses the default.
	Seconds int
}

// Estimator times a short full-resolution trial render of a sample video.
type Estimator struct {
	binary string
	logger *slog.Logger

	// Injectable for tests.
	now       func() time.Time
	newSource func(ctx context.Context, binary, source string, width, height int, fps float64) (frameSource, error)
}

// NewEstimator constructs an estimator invoking the given ffmpeg binary.
func NewEstimator(binary string, logger *slog.Logger) *Estimator {
	return &Estimator{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "fluidity"),
		now:    time.Now,
		newSource: func(ctx context.Context, binary, source string, width, height int, fps float64) (frameSource, error) {
			return ffmpeg.NewFrameReader(ctx, binary, source, width, height, fps)
		},
	}
}

// Trial composites frames from the sample source at full target resolution,
// measuring delivery intervals against the nominal frame period, and returns
// the recommendation for the batch.
func (e *Estimator) Trial(ctx context.Context, comp *compositor.Compositor, opts TrialOptions) (Recommendation, error) {
	const stage = "rendering"
	if opts.FPS <= 0 {
		opts.FPS = 30
	}
	seconds := opts.Seconds
	if seconds <= 0 {
		seconds = defaultTrialSeconds
	}
	maxFrames := int(opts.FPS) * seconds
	expected := time.Duration(float64(time.Second) / opts.FPS)

	source, err := e.newSource(ctx, e.binary, opts.Source, opts.SourceWidth, opts.SourceHeight, opts.FPS)
	if err != nil {
		return Recommendation{}, services.Wrap(services.ErrMedia, stage, "open trial source", "", err)
	}
	defer source.Close()

	frame := &image.RGBA{
		Stride: opts.SourceWidth * 4,
		Rect:   image.Rect(0, 0, opts.SourceWidth, opts.SourceHeight),
	}

	var sample Sample
	last := e.now()
	for i := 0; i < maxFrames; i++ {
		if err := ctx.Err(); err != nil {
			return Recommendation{}, err
		}
		pixels, err := source.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Recommendation{}, services.Wrap(services.ErrMedia, stage, "trial decode", "", err)
		}
		frame.Pix = pixels
		comp.ComposeFrame(frame, float64(i)/opts.FPS)

		now := e.now()
		if i > 0 {
			sample.Observe(now.Sub(last), expected)
		}
		last = now
	}

	rec := Recommend(sample.DropRate(), opts.FPS)
	e.logger.Info("fluidity trial complete",
		logging.Int("rendered", sample.Rendered),
		logging.Int("dropped", sample.Dropped),
		logging.Float64("drop_rate", sample.DropRate()),
		logging.String("quality", rec.Quality),
		logging.Float64("recommended_fps", rec.FPS),
		logging.String("recommended_resolution", rec.Resolution),
	)
	return rec, nil
}
