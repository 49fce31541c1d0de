package captions

import (
	"strings"

	"clipforge/internal/services/aikit"
)

// Style positions the caption line relative to the target region.
type Style string

const (
	StyleTop    Style = "top"
	StyleCenter Style = "center"
	StyleBottom Style = "bottom"
)

// Word is one caption word with timing in seconds.
type Word struct {
	Text  string
	Start float64
	End   float64
}

// Track is an ordered, non-overlapping sequence of caption words. Immutable
// once built.
type Track struct {
	words []Word
	style Style
}

// NewTrack builds a track verbatim from a transcription. Word order follows
// the transcription; overlapping timings are clipped so each word ends no
// later than the next one starts.
func NewTrack(transcription aikit.Transcription, style Style) *Track {
	words := make([]Word, 0, len(transcription.Words))
	for _, w := range transcription.Words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		words = append(words, Word{Text: text, Start: w.Start, End: w.End})
	}
	clipOverlaps(words)
	return &Track{words: words, style: normalizeStyle(style)}
}

// NewTranslatedTrack builds a track from translated text. Word-level timings
// from the source cannot be trusted after translation (word counts differ),
// so the original total duration is divided evenly across the translated
// words, in order.
func NewTranslatedTrack(translatedText string, originalDuration float64, style Style) *Track {
	fields := strings.Fields(translatedText)
	track := &Track{style: normalizeStyle(style)}
	if len(fields) == 0 {
		return track
	}
	if originalDuration <= 0 {
		// Without a source span there is nothing to divide; give each word a
		// nominal second so non-empty text still yields a renderable track.
		originalDuration = float64(len(fields))
	}
	per := originalDuration / float64(len(fields))
	track.words = make([]Word, len(fields))
	for i, text := range fields {
		track.words[i] = Word{
			Text:  text,
			Start: float64(i) * per,
			End:   float64(i+1) * per,
		}
	}
	return track
}

// Words returns a copy of the track's words.
func (t *Track) Words() []Word {
	out := make([]Word, len(t.words))
	copy(out, t.words)
	return out
}

// Len reports the number of words in the track.
func (t *Track) Len() int { return len(t.words) }

// Style reports the track's configured position style.
func (t *Track) Style() Style { return t.style }

func clipOverlaps(words []Word) {
	for i := range words {
		if words[i].End < words[i].Start {
			words[i].End = words[i].Start
		}
		if i+1 < len(words) && words[i].End > words[i+1].Start {
			words[i].End = words[i+1].Start
		}
	}
}

func normalizeStyle(style Style) Style {
	switch style {
	case StyleTop, StyleCenter, StyleBottom:
		return style
	default:
		return StyleBottom
	}
}
