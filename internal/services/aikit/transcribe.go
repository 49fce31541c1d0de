package aikit

import (
	"context"
	"encoding/base64"
	"strings"

	"clipforge/internal/services"
)

type transcribeRequest struct {
	Audio  string `json:"audio"`
	Format string `json:"format"`
}

// Transcribe sends extracted audio (WAV bytes) for transcription with
// word-level timings and language detection.
func (c *Client) Transcribe(ctx context.Context, audio []byte) (Transcription, error) {
	const stage = "transcribing"
	if len(audio) == 0 {
		return Transcription{}, services.Wrap(services.ErrConfiguration, stage, "request", "audio required", nil)
	}
	body, err := c.post(ctx, stage, "/v1/transcribe", transcribeRequest{
		Audio:  base64.StdEncoding.EncodeToString(audio),
		Format: "wav",
	})
	if err != nil {
		return Transcription{}, err
	}
	result, err := decodeTranscription(body)
	if err != nil {
		return Transcription{}, services.Wrap(services.ErrTransient, stage, "decode response", "", err)
	}
	result.DetectedLanguage = strings.TrimSpace(result.DetectedLanguage)
	return result, nil
}

// decodeTranscription tries candidate response schemas in priority order:
//  1. flat object: {"text","words","detectedLanguage"}
//  2. result envelope: {"result":{...}}
//  3. segment list: {"segments":[{"text","words"}],"language"}
func decodeTranscription(body []byte) (Transcription, error) {
	flat := func(raw []byte) (Transcription, bool) {
		var out Transcription
		if err := strictUnmarshal(raw, &out); err != nil {
			return Transcription{}, false
		}
		if strings.TrimSpace(out.Text) == "" && len(out.Words) == 0 {
			return Transcription{}, false
		}
		return out, true
	}
	envelope := func(raw []byte) (Transcription, bool) {
		var wrapper struct {
			Result Transcription `json:"result"`
		}
		if err := strictUnmarshal(raw, &wrapper); err != nil {
			return Transcription{}, false
		}
		if strings.TrimSpace(wrapper.Result.Text) == "" && len(wrapper.Result.Words) == 0 {
			return Transcription{}, false
		}
		return wrapper.Result, true
	}
	segments := func(raw []byte) (Transcription, bool) {
		var wrapper struct {
			Segments []struct {
				Text  string `json:"text"`
				Words []Word `json:"words"`
			} `json:"segments"`
			Language string `json:"language"`
		}
		if err := strictUnmarshal(raw, &wrapper); err != nil {
			return Transcription{}, false
		}
		if len(wrapper.Segments) == 0 {
			return Transcription{}, false
		}
		var out Transcription
		var parts []string
		for _, segment := range wrapper.Segments {
			if text := strings.TrimSpace(segment.Text); text != "" {
				parts = append(parts, text)
			}
			out.Words = append(out.Words, segment.Words...)
		}
		out.Text = strings.Join(parts, " ")
		out.DetectedLanguage = wrapper.Language
		if out.Text == "" && len(out.Words) == 0 {
			return Transcription{}, false
		}
		return out, true
	}

	for _, candidate := range []func([]byte) (Transcription, bool){flat, envelope, segments} {
		if out, ok := candidate(body); ok {
			return out, nil
		}
	}
	return Transcription{}, errUnrecognizedSchema
}
