// Package render drives the compositor across the full duration of a source
// video and feeds the composited frames to the encoder.
//
// Audio is routed in one of two modes: original audio extracted from the
// source, or a dubbed track that replaces the original entirely (never
// mixed). All decode and encode resources are released on every exit path.
package render
