package aikit

import (
	"context"
	"encoding/base64"

	"clipforge/internal/services"
)

type analyzeRequest struct {
	Image  string `json:"image"`
	Format string `json:"format"`
}

// AnalyzeFrame sends one representative frame (PNG bytes) for content
// analysis: face detection, content focus, suggested crop anchor, and the
// content bounds excluding letterboxing.
func (c *Client) AnalyzeFrame(ctx context.Context, image []byte) (FrameAnalysis, error) {
	const stage = "analyzing"
	if len(image) == 0 {
		return FrameAnalysis{}, services.Wrap(services.ErrConfiguration, stage, "request", "image required", nil)
	}
	body, err := c.post(ctx, stage, "/v1/analyze-frame", analyzeRequest{
		Image:  base64.StdEncoding.EncodeToString(image),
		Format: "png",
	})
	if err != nil {
		return FrameAnalysis{}, err
	}
	result, err := decodeFrameAnalysis(body)
	if err != nil {
		return FrameAnalysis{}, services.Wrap(services.ErrTransient, stage, "decode response", "", err)
	}
	return result, nil
}

// decodeFrameAnalysis tries candidate response schemas in priority order:
//  1. flat object with camelCase keys
//  2. analysis envelope: {"analysis":{...}}
func decodeFrameAnalysis(body []byte) (FrameAnalysis, error) {
	type wire struct {
		HasFace       *bool  `json:"hasFace"`
		FacePosition  *Point `json:"facePosition"`
		ContentFocus  *Point `json:"contentFocus"`
		SuggestedCrop *Point `json:"suggestedCrop"`
		ContentBounds *Rect  `json:"contentBounds"`
	}
	convert := func(w wire) (FrameAnalysis, bool) {
		if w.HasFace == nil && w.ContentBounds == nil && w.SuggestedCrop == nil && w.ContentFocus == nil {
			return FrameAnalysis{}, false
		}
		out := FrameAnalysis{
			FacePosition:  w.FacePosition,
			ContentFocus:  w.ContentFocus,
			SuggestedCrop: w.SuggestedCrop,
			ContentBounds: w.ContentBounds,
		}
		if w.HasFace != nil {
			out.HasFace = *w.HasFace
		}
		return out, true
	}

	flat := func(raw []byte) (FrameAnalysis, bool) {
		var w wire
		if err := strictUnmarshal(raw, &w); err != nil {
			return FrameAnalysis{}, false
		}
		return convert(w)
	}
	envelope := func(raw []byte) (FrameAnalysis, bool) {
		var wrapper struct {
			Analysis wire `json:"analysis"`
		}
		if err := strictUnmarshal(raw, &wrapper); err != nil {
			return FrameAnalysis{}, false
		}
		return convert(wrapper.Analysis)
	}

	for _, candidate := range []func([]byte) (FrameAnalysis, bool){flat, envelope} {
		if out, ok := candidate(body); ok {
			return out, nil
		}
	}
	return FrameAnalysis{}, errUnrecognizedSchema
}
