package archive

// Entry is one file to package.
type Entry struct {
	// Name is the filename inside the archive.
	Name string
	// Path is the file on disk whose contents are stored.
	Path string
	Size int64
}

// Limits are the per-archive ceilings.
type Limits struct {
	MaxEntries int
	MaxBytes   int64
}

// planChunks splits entries greedily: before adding an entry, if the current
// chunk already holds at least one entry and adding it would exceed either
// ceiling, the chunk is closed and a new one started. An entry larger than
// the byte ceiling still lands in a chunk of its own.
func planChunks(entries []Entry, limits Limits) [][]Entry {
	var chunks [][]Entry
	var current []Entry
	var currentBytes int64

	for _, entry := range entries {
		exceedsCount := limits.MaxEntries > 0 && len(current)+1 > limits.MaxEntries
		exceedsBytes := limits.MaxBytes > 0 && currentBytes+entry.Size > limits.MaxBytes
		if len(current) > 0 && (exceedsCount || exceedsBytes) {
			chunks = append(chunks, current)
			current = nil
			currentBytes = 0
		}
		current = append(current, entry)
		currentBytes += entry.Size
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

// EstimateZipCount runs the chunking logic without materializing any archive,
// so callers can predict the number of output files before committing
// resources. Deterministic: packaging the same entries under the same limits
// produces exactly this many archives.
func EstimateZipCount(entries []Entry, limits Limits) int {
	return len(planChunks(entries, limits))
}
