package fluidity

import (
	"math"
	"time"
)

// Resolution tiers for the recommendation table.
const (
	ResolutionOriginal = "original"
	Resolution720      = "720"
	Resolution480      = "480"
)

// Recommendation is the encode configuration suggested for subsequent jobs
// in the batch.
type Recommendation struct {
	FPS        float64
	Resolution string
	Quality    string
}

// Sample accumulates frame delivery measurements from a trial render.
type Sample struct {
	Rendered int
	Dropped  int
}

// Observe classifies one inter-frame interval. An interval more than 1.5x
// the expected frame period counts as floor(ratio)-1 dropped frames.
func (s *Sample) Observe(interval, expected time.Duration) {
	s.Rendered++
	if expected <= 0 || interval <= 0 {
		return
	}
	ratio := float64(interval) / float64(expected)
	if ratio > 1.5 {
		s.Dropped += int(math.Floor(ratio)) - 1
	}
}

// DropRate reports dropped / (rendered + dropped), in [0,1].
func (s Sample) DropRate() float64 {
	total := s.Rendered + s.Dropped
	if total == 0 {
		return 0
	}
	return float64(s.Dropped) / float64(total)
}

// Recommend maps a measured drop rate to the encode settings for the rest of
// the batch.
func Recommend(dropRate, sourceFPS float64) Recommendation {
	if sourceFPS <= 0 {
		sourceFPS = 30
	}
	switch {
	case dropRate < 0.03:
		return Recommendation{FPS: sourceFPS, Resolution: ResolutionOriginal, Quality: "excellent"}
	case dropRate < 0.08:
		fps := sourceFPS
		if fps >= 60 {
			fps = fps / 2
		}
		return Recommendation{FPS: fps, Resolution: ResolutionOriginal, Quality: "good"}
	case dropRate < 0.15:
		return Recommendation{FPS: 30, Resolution: Resolution720, Quality: "fair"}
	default:
		return Recommendation{FPS: 24, Resolution: Resolution480, Quality: "poor"}
	}
}
