package aikit

import (
	"context"
	"encoding/base64"
	"strings"

	"clipforge/internal/services"
)

type synthesizeRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
	VoiceGender    string `json:"voiceGender"`
}

// Synthesize requests spoken audio for the given text.
func (c *Client) Synthesize(ctx context.Context, text, targetLanguage, voiceGender string) (Synthesis, error) {
	const stage = "dubbing"
	text = strings.TrimSpace(text)
	if text == "" {
		return Synthesis{}, services.Wrap(services.ErrConfiguration, stage, "request", "text required", nil)
	}
	body, err := c.post(ctx, stage, "/v1/synthesize", synthesizeRequest{
		Text:           text,
		TargetLanguage: targetLanguage,
		VoiceGender:    voiceGender,
	})
	if err != nil {
		return Synthesis{}, err
	}
	result, err := decodeSynthesis(body)
	if err != nil {
		return Synthesis{}, services.Wrap(services.ErrTransient, stage, "decode response", "", err)
	}
	return result, nil
}

// decodeSynthesis tries candidate response schemas in priority order:
//  1. {"audio": base64, "format", "voiceUsed"}
//  2. {"audioContent": base64, "format"}
func decodeSynthesis(body []byte) (Synthesis, error) {
	decodeAudio := func(encoded string) ([]byte, bool) {
		encoded = strings.TrimSpace(encoded)
		if encoded == "" {
			return nil, false
		}
		audio, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil || len(audio) == 0 {
			return nil, false
		}
		return audio, true
	}

	primary := func(raw []byte) (Synthesis, bool) {
		var wrapper struct {
			Audio     string `json:"audio"`
			Format    string `json:"format"`
			VoiceUsed string `json:"voiceUsed"`
		}
		if err := strictUnmarshal(raw, &wrapper); err != nil {
			return Synthesis{}, false
		}
		audio, ok := decodeAudio(wrapper.Audio)
		if !ok {
			return Synthesis{}, false
		}
		return Synthesis{AudioBytes: audio, Format: normalizeAudioFormat(wrapper.Format), VoiceUsed: wrapper.VoiceUsed}, true
	}
	alternate := func(raw []byte) (Synthesis, bool) {
		var wrapper struct {
			AudioContent string `json:"audioContent"`
			Format       string `json:"format"`
			Voice        string `json:"voice"`
		}
		if err := strictUnmarshal(raw, &wrapper); err != nil {
			return Synthesis{}, false
		}
		audio, ok := decodeAudio(wrapper.AudioContent)
		if !ok {
			return Synthesis{}, false
		}
		return Synthesis{AudioBytes: audio, Format: normalizeAudioFormat(wrapper.Format), VoiceUsed: wrapper.Voice}, true
	}

	for _, candidate := range []func([]byte) (Synthesis, bool){primary, alternate} {
		if out, ok := candidate(body); ok {
			return out, nil
		}
	}
	return Synthesis{}, errUnrecognizedSchema
}

func normalizeAudioFormat(format string) string {
	format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	if format == "" {
		return "mp3"
	}
	return format
}
