package framing

import (
	"context"
	"log/slog"

	"clipforge/internal/logging"
	"clipforge/internal/services/aikit"
)

// Analyzer resolves content bounds and a crop anchor for a source video from
// one representative frame.
type Analyzer struct {
	client *aikit.Client
	logger *slog.Logger
}

// NewAnalyzer constructs an analyzer. A nil client disables remote analysis;
// every call then returns the defaults.
func NewAnalyzer(client *aikit.Client, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		client: client,
		logger: logging.NewComponentLogger(logger, "framing"),
	}
}

// Analyze submits a representative frame (PNG bytes) and returns bounds and
// anchor. Never returns an error: any remote failure, rate limit, or
// malformed response substitutes the documented defaults so the pipeline is
// never blocked on analysis.
func (a *Analyzer) Analyze(ctx context.Context, framePNG []byte) (Bounds, Anchor) {
	bounds := DefaultBounds()
	anchor := DefaultAnchor()
	if a == nil || a.client == nil || !a.client.Enabled() {
		return bounds, anchor
	}

	analysis, err := a.client.AnalyzeFrame(ctx, framePNG)
	if err != nil {
		a.logger.Warn("frame analysis unavailable, using default framing",
			logging.Error(err),
			logging.String(logging.FieldEventType, "framing_fallback"),
			logging.String(logging.FieldImpact, "video framed with top-centered defaults"),
		)
		return bounds, anchor
	}

	if analysis.ContentBounds != nil {
		candidate := Bounds{
			X:      analysis.ContentBounds.X,
			Y:      analysis.ContentBounds.Y,
			Width:  analysis.ContentBounds.Width,
			Height: analysis.ContentBounds.Height,
		}
		if candidate.Valid() {
			bounds = candidate
		}
	}

	// Anchor preference: explicit crop suggestion, then detected face, then
	// general content focus.
	switch {
	case analysis.SuggestedCrop != nil:
		anchor = Anchor{X: analysis.SuggestedCrop.X, Y: analysis.SuggestedCrop.Y}.Clamped()
	case analysis.HasFace && analysis.FacePosition != nil:
		anchor = Anchor{X: analysis.FacePosition.X, Y: analysis.FacePosition.Y}.Clamped()
	case analysis.ContentFocus != nil:
		anchor = Anchor{X: analysis.ContentFocus.X, Y: analysis.ContentFocus.Y}.Clamped()
	}

	return bounds, anchor
}
