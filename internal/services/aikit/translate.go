package aikit

import (
	"context"
	"strings"

	"clipforge/internal/services"
)

type translateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
}

// Translate sends text for translation into the target language.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (Translation, error) {
	const stage = "translating"
	text = strings.TrimSpace(text)
	if text == "" {
		return Translation{}, services.Wrap(services.ErrConfiguration, stage, "request", "text required", nil)
	}
	if strings.TrimSpace(targetLanguage) == "" {
		return Translation{}, services.Wrap(services.ErrConfiguration, stage, "request", "target language required", nil)
	}
	body, err := c.post(ctx, stage, "/v1/translate", translateRequest{
		Text:           text,
		TargetLanguage: targetLanguage,
	})
	if err != nil {
		return Translation{}, err
	}
	result, err := decodeTranslation(body)
	if err != nil {
		return Translation{}, services.Wrap(services.ErrTransient, stage, "decode response", "", err)
	}
	return result, nil
}

// decodeTranslation tries candidate response schemas in priority order:
//  1. flat object: {"translatedText","words"}
//  2. alternate key: {"translation"}
//  3. result envelope: {"result":{...}}
func decodeTranslation(body []byte) (Translation, error) {
	flat := func(raw []byte) (Translation, bool) {
		var out Translation
		if err := strictUnmarshal(raw, &out); err != nil {
			return Translation{}, false
		}
		if strings.TrimSpace(out.TranslatedText) == "" {
			return Translation{}, false
		}
		return out, true
	}
	alternate := func(raw []byte) (Translation, bool) {
		var wrapper struct {
			Translation string `json:"translation"`
			Words       []Word `json:"words"`
		}
		if err := strictUnmarshal(raw, &wrapper); err != nil {
			return Translation{}, false
		}
		if strings.TrimSpace(wrapper.Translation) == "" {
			return Translation{}, false
		}
		return Translation{TranslatedText: wrapper.Translation, Words: wrapper.Words}, true
	}
	envelope := func(raw []byte) (Translation, bool) {
		var wrapper struct {
			Result Translation `json:"result"`
		}
		if err := strictUnmarshal(raw, &wrapper); err != nil {
			return Translation{}, false
		}
		if strings.TrimSpace(wrapper.Result.TranslatedText) == "" {
			return Translation{}, false
		}
		return wrapper.Result, true
	}

	for _, candidate := range []func([]byte) (Translation, bool){flat, alternate, envelope} {
		if out, ok := candidate(body); ok {
			return out, nil
		}
	}
	return Translation{}, errUnrecognizedSchema
}
