// Package aikit wraps the hosted AI service the pipeline consumes for
// transcription, translation, speech synthesis, and frame analysis.
//
// The service is treated as an opaque collaborator returning structured text
// and audio. Every call degrades gracefully: rate limits, quota errors, server
// failures, and malformed payloads are surfaced as services.ErrTransient so
// orchestrators substitute documented defaults instead of failing the job.
//
// Responses observed in the wild vary in shape, so decoding tries candidate
// schemas in a fixed priority order and accepts the first structurally valid
// match.
package aikit
