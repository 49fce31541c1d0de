// Package dubbing orchestrates the transcribe, translate, and synthesize
// calls that produce a replacement audio track for a video.
//
// Dubbing is always optional: any remote failure lands the job in the failed
// state and the caller keeps the original audio and captions. The result
// carries the translated text and timings so caption building never repeats
// the translation call.
package dubbing
