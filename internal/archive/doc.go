// Package archive packages delivered files into one or more zip archives.
//
// Entries are stored uncompressed: the payloads are encoded video, already
// compressed, so deflating them wastes time for no size benefit. Chunking is
// greedy against an entry-count ceiling and a byte ceiling, and a failed
// chunk is retried by recursive bisection instead of aborting the batch.
package archive
