// Package captions builds renderable word-timed caption tracks from
// transcriptions and decides which words are on screen at any playback time.
//
// A track is immutable once built. Word windows carry a 30% extended tail so
// the perceived reading speed stays comfortable, and rendering shows a short
// context window around the current word so viewers see upcoming text.
package captions
