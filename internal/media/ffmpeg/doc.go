// Package ffmpeg wraps the ffmpeg binary for the operations the pipeline
// needs: streaming raw RGBA frames out of a source video, streaming composited
// frames back into an encoder with a mapped audio input, and extracting or
// decoding audio tracks.
//
// All entry points accept a context and terminate the child process when it is
// cancelled. Command construction is separated from execution so tests can
// assert on arguments without spawning processes.
package ffmpeg
