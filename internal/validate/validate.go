// Package validate confirms a produced container is genuinely decodable end
// to end, not just superficially well-formed.
package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"clipforge/internal/logging"
	"clipforge/internal/media/ffprobe"
	"clipforge/internal/services"
)

// Seek checkpoints as fractions of the container duration.
var checkpoints = []float64{0.25, 0.50, 0.75}

// positionTolerance is the allowed distance, in seconds, between the
// requested seek position and the decoded frame's reported timestamp.
const positionTolerance = 1.0

// Validator seek-checks finished containers.
type Validator struct {
	ffprobeBinary string
	logger        *slog.Logger

	// Injectable for tests.
	inspect   func(ctx context.Context, binary, path string) (ffprobe.Result, error)
	seekFrame func(ctx context.Context, binary, path string, target float64) (float64, error)
}

// New constructs a validator invoking the given ffprobe binary.
func New(ffprobeBinary string, logger *slog.Logger) *Validator {
	return &Validator{
		ffprobeBinary: ffprobeBinary,
		logger:        logging.NewComponentLogger(logger, "validate"),
		inspect:       ffprobe.Inspect,
		seekFrame:     seekDecodeFrame,
	}
}

// Validate loads the container's metadata, then seeks to 25%, 50%, and 75%
// of the duration, requiring a decodable frame within tolerance of each
// position. The first failing checkpoint short-circuits the rest. On
// failure the caller's fallback is a conservative-profile re-encode.
func (v *Validator) Validate(ctx context.Context, path string) error {
	const stage = "validating"

	meta, err := v.inspect(ctx, v.ffprobeBinary, path)
	if err != nil {
		return services.Wrap(services.ErrValidation, stage, "load metadata", "container is unreadable", err)
	}
	duration := meta.DurationSeconds()
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
		return services.Wrap(services.ErrValidation, stage, "load metadata",
			fmt.Sprintf("container reports invalid duration %v", meta.Format.Duration), nil)
	}
	if meta.VideoStream() == nil {
		return services.Wrap(services.ErrValidation, stage, "load metadata", "container has no video stream", nil)
	}

	for _, fraction := range checkpoints {
		if err := ctx.Err(); err != nil {
			return err
		}
		target := duration * fraction
		position, err := v.seekFrame(ctx, v.ffprobeBinary, path, target)
		if err != nil {
			return services.Wrap(services.ErrValidation, stage, "seek check",
				fmt.Sprintf("decode failed at %.0f%% (%.2fs)", fraction*100, target), err)
		}
		if math.Abs(position-target) > positionTolerance {
			return services.Wrap(services.ErrValidation, stage, "seek check",
				fmt.Sprintf("frame at %.0f%% landed at %.2fs, requested %.2fs", fraction*100, position, target), nil)
		}
	}
	return nil
}

// seekDecodeFrame decodes forward from the target and returns the timestamp
// of the first frame landing at or after it. ffprobe's interval seek starts
// at the sync sample at or before the target, so the lead-in frames between
// that keyframe and the target are decoded and skipped, not reported; with
// sparse keyframes the first decoded frame can sit many seconds early.
func seekDecodeFrame(ctx context.Context, binary, path string, target float64) (float64, error) {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	args := []string{
		"-v", "error",
		"-hide_banner",
		"-select_streams", "v:0",
		"-read_intervals", fmt.Sprintf("%.3f%%+2", target),
		"-show_entries", "frame=pts_time,best_effort_timestamp_time",
		"-of", "json",
		"--", path,
	}
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe seek: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return firstFrameAtOrAfter(output, target)
}

// firstFrameAtOrAfter scans decoded frames in order for the first one at or
// after target. When decoding stops short of the target the last decoded
// timestamp is returned, so the caller's tolerance check rejects the gap.
func firstFrameAtOrAfter(output []byte, target float64) (float64, error) {
	var decoded struct {
		Frames []struct {
			PtsTime           string `json:"pts_time"`
			BestEffortTimeStr string `json:"best_effort_timestamp_time"`
		} `json:"frames"`
	}
	if err := json.Unmarshal(output, &decoded); err != nil {
		return 0, fmt.Errorf("ffprobe seek parse: %w", err)
	}
	if len(decoded.Frames) == 0 {
		return 0, fmt.Errorf("no decodable frame at %.2fs", target)
	}

	last := math.NaN()
	for _, frame := range decoded.Frames {
		for _, raw := range []string{frame.BestEffortTimeStr, frame.PtsTime} {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}
			position, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			if position >= target {
				return position, nil
			}
			last = position
			break
		}
	}
	if math.IsNaN(last) {
		return 0, fmt.Errorf("frames at %.2fs carry no timestamps", target)
	}
	return last, nil
}
