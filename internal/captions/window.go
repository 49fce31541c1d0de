package captions

// Display window constants. The extended tail and the 2-before/4-after
// context are empirically chosen UX values; keep them stable.
const (
	tailFactor    = 1.3
	contextBefore = 2
	contextAfter  = 4
)

// Window is the set of words to render at one playback instant. Current
// indexes into Words and identifies the highlighted word.
type Window struct {
	Words   []Word
	Current int
}

// WindowAt resolves the render window for playback time t. The current word
// is the one whose [start, end*1.3] span (clipped so it never overlaps the
// next word's start) contains t; when no word matches, ok is false and
// nothing should be drawn.
func (tr *Track) WindowAt(t float64) (Window, bool) {
	idx := -1
	for i, w := range tr.words {
		end := w.End * tailFactor
		if i+1 < len(tr.words) && end > tr.words[i+1].Start {
			end = tr.words[i+1].Start
		}
		if t >= w.Start && t < end {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Window{}, false
	}

	lo := idx - contextBefore
	if lo < 0 {
		lo = 0
	}
	hi := idx + contextAfter + 1
	if hi > len(tr.words) {
		hi = len(tr.words)
	}

	window := Window{
		Words:   make([]Word, hi-lo),
		Current: idx - lo,
	}
	copy(window.Words, tr.words[lo:hi])
	return window, true
}
