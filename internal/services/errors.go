package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalTool marks failures of spawned processes (ffmpeg, ffprobe).
	ErrExternalTool = errors.New("external tool error")
	// ErrValidation marks outputs that failed playability validation.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks unusable settings discovered at runtime.
	ErrConfiguration = errors.New("configuration error")
	// ErrMedia marks unreadable or undecodable source material. Terminal for
	// the owning job only; the batch continues.
	ErrMedia = errors.New("media error")
	// ErrTransient marks remote-service failures (rate limit, quota, malformed
	// payload). Callers recover with documented defaults instead of failing.
	ErrTransient = errors.New("transient failure")
	// ErrTimeout marks operations that exceeded their deadline.
	ErrTimeout = errors.New("timeout")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsRecoverable reports whether an error should be absorbed with a documented
// default rather than failing the job.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsCancellation reports whether an error represents a user-initiated cancel.
// Cancellation is a distinct outcome, never reported as a job failure.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

// UserMessage extracts a message suitable for surfacing to the user, stripping
// the sentinel prefix when present.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	text := err.Error()
	for _, marker := range []error{ErrExternalTool, ErrValidation, ErrConfiguration, ErrMedia, ErrTransient, ErrTimeout} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(text, prefix) {
			return strings.TrimPrefix(text, prefix)
		}
	}
	return text
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
