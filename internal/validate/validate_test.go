package validate

import (
	"context"
	"errors"
	"testing"

	"clipforge/internal/logging"
	"clipforge/internal/media/ffprobe"
	"clipforge/internal/services"
)

func metaWithDuration(duration string) ffprobe.Result {
	return ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "video", Width: 1080, Height: 1920}},
		Format:  ffprobe.Format{Duration: duration},
	}
}

func newTestValidator(meta ffprobe.Result, metaErr error, seek func(target float64) (float64, error)) *Validator {
	v := New("ffprobe", logging.NewNop())
	v.inspect = func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return meta, metaErr
	}
	v.seekFrame = func(ctx context.Context, binary, path string, target float64) (float64, error) {
		return seek(target)
	}
	return v
}

func TestValidatePassesWithAccurateSeeks(t *testing.T) {
	var targets []float64
	v := newTestValidator(metaWithDuration("40.0"), nil, func(target float64) (float64, error) {
		targets = append(targets, target)
		return target + 0.2, nil
	})
	if err := v.Validate(context.Background(), "out.mp4"); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	want := []float64{10, 20, 30}
	if len(targets) != 3 {
		t.Fatalf("seeks = %v, want three checkpoints", targets)
	}
	for i, target := range targets {
		if target != want[i] {
			t.Fatalf("checkpoint %d at %gs, want %gs", i, target, want[i])
		}
	}
}

func TestValidateRejectsInvalidDuration(t *testing.T) {
	for _, duration := range []string{"", "0", "-3", "not-a-number"} {
		v := newTestValidator(metaWithDuration(duration), nil, func(target float64) (float64, error) {
			t.Fatal("seek must not run when metadata is invalid")
			return 0, nil
		})
		if err := v.Validate(context.Background(), "out.mp4"); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("duration %q: expected validation error, got %v", duration, err)
		}
	}
}

func TestValidateFailsFastAtFirstBadCheckpoint(t *testing.T) {
	seeks := 0
	v := newTestValidator(metaWithDuration("40.0"), nil, func(target float64) (float64, error) {
		seeks++
		return 0, errors.New("decoder error")
	})
	err := v.Validate(context.Background(), "out.mp4")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if seeks != 1 {
		t.Fatalf("seeks = %d, validation must short-circuit after the first failure", seeks)
	}
}

func TestValidateRejectsPositionOutsideTolerance(t *testing.T) {
	v := newTestValidator(metaWithDuration("40.0"), nil, func(target float64) (float64, error) {
		return target + 5, nil
	})
	if err := v.Validate(context.Background(), "out.mp4"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidateRejectsUnreadableContainer(t *testing.T) {
	v := newTestValidator(ffprobe.Result{}, errors.New("moov atom not found"), nil)
	if err := v.Validate(context.Background(), "truncated.mp4"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

// A checkpoint seek lands on the keyframe before the target, so the decoded
// frame list starts well before the requested position. The lead-in frames
// must be skipped: only the first frame at or after the target counts.
func TestFirstFrameAtOrAfterSkipsKeyframeLeadIn(t *testing.T) {
	// Keyframe at 8.333s, target 15.0s: roughly 8.3s keyint at 30fps.
	output := []byte(`{"frames":[
		{"pts_time":"8.333333","best_effort_timestamp_time":"8.333333"},
		{"pts_time":"14.933333","best_effort_timestamp_time":"14.933333"},
		{"pts_time":"14.966667","best_effort_timestamp_time":"14.966667"},
		{"pts_time":"15.000000","best_effort_timestamp_time":"15.000000"},
		{"pts_time":"15.033333","best_effort_timestamp_time":"15.033333"}
	]}`)
	position, err := firstFrameAtOrAfter(output, 15.0)
	if err != nil {
		t.Fatalf("firstFrameAtOrAfter: %v", err)
	}
	if position != 15.0 {
		t.Fatalf("position = %g, want the first frame at or after 15.0", position)
	}
}

func TestFirstFrameAtOrAfterReportsShortDecode(t *testing.T) {
	// Decoding stops before reaching the target; the last decoded timestamp
	// comes back so the tolerance check can reject the gap.
	output := []byte(`{"frames":[
		{"pts_time":"8.333333","best_effort_timestamp_time":"8.333333"},
		{"pts_time":"8.366667","best_effort_timestamp_time":"8.366667"}
	]}`)
	position, err := firstFrameAtOrAfter(output, 15.0)
	if err != nil {
		t.Fatalf("firstFrameAtOrAfter: %v", err)
	}
	if position != 8.366667 {
		t.Fatalf("position = %g, want the last decoded timestamp", position)
	}
}

func TestFirstFrameAtOrAfterFallsBackToPtsTime(t *testing.T) {
	output := []byte(`{"frames":[
		{"pts_time":"9.9"},
		{"pts_time":"10.1"}
	]}`)
	position, err := firstFrameAtOrAfter(output, 10.0)
	if err != nil {
		t.Fatalf("firstFrameAtOrAfter: %v", err)
	}
	if position != 10.1 {
		t.Fatalf("position = %g, want 10.1", position)
	}
}

func TestFirstFrameAtOrAfterRejectsEmptyDecode(t *testing.T) {
	if _, err := firstFrameAtOrAfter([]byte(`{"frames":[]}`), 10.0); err == nil {
		t.Fatal("expected error when no frames decode")
	}
	if _, err := firstFrameAtOrAfter([]byte(`not json`), 10.0); err == nil {
		t.Fatal("expected error for malformed output")
	}
}

func TestValidateRejectsMissingVideoStream(t *testing.T) {
	meta := ffprobe.Result{Format: ffprobe.Format{Duration: "12.0"}}
	v := newTestValidator(meta, nil, func(target float64) (float64, error) {
		t.Fatal("seek must not run without a video stream")
		return 0, nil
	})
	if err := v.Validate(context.Background(), "audio-only.mp4"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
