// Package framing derives where and how a source video sits inside the
// template's target region.
//
// One representative frame per video is sent to the remote frame-analysis
// service, yielding the content bounds (the sub-rectangle that is actual
// video, excluding letterboxing) and a crop anchor. Analysis never blocks the
// pipeline: on any failure the documented defaults substitute, full-frame
// bounds and a top-centered anchor suited to talking-head content.
//
// The placement math is deterministic: scale is chosen so the content region
// covers the target region, and the anchor decides which part of the overflow
// stays visible.
package framing
