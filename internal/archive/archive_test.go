package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"clipforge/internal/logging"
	"clipforge/internal/testsupport"
)

const mib = int64(1 << 20)

func sizedEntries(t *testing.T, sizes ...int64) []Entry {
	t.Helper()
	dir := t.TempDir()
	entries := make([]Entry, len(sizes))
	for i, size := range sizes {
		path := filepath.Join(dir, fmt.Sprintf("video_%02d.mp4", i+1))
		testsupport.WriteFile(t, path, size)
		entries[i] = Entry{Name: filepath.Base(path), Path: path, Size: size}
	}
	return entries
}

func TestEstimateThreeFortyMBEntriesAtHundredMBCeiling(t *testing.T) {
	entries := sizedEntries(t, 40*mib, 40*mib, 40*mib)
	limits := Limits{MaxEntries: 10, MaxBytes: 100 * mib}
	if got := EstimateZipCount(entries, limits); got != 2 {
		t.Fatalf("estimate = %d, want 2 (80MB chunk then 40MB chunk)", got)
	}
}

func TestEstimateMatchesActualPackaging(t *testing.T) {
	entries := sizedEntries(t, 40*mib, 40*mib, 40*mib)
	limits := Limits{MaxEntries: 10, MaxBytes: 100 * mib}

	p := NewPackager(logging.NewNop())
	written, err := p.Pack(context.Background(), entries, limits, t.TempDir(), "batch")
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if len(written) != EstimateZipCount(entries, limits) {
		t.Fatalf("packed %d archives, estimate said %d", len(written), EstimateZipCount(entries, limits))
	}
}

func TestPlanRespectsEntryCeiling(t *testing.T) {
	entries := sizedEntries(t, 1, 1, 1, 1, 1)
	chunks := planChunks(entries, Limits{MaxEntries: 2, MaxBytes: 100 * mib})
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	for _, chunk := range chunks {
		if len(chunk) > 2 {
			t.Fatalf("chunk exceeds entry ceiling: %d entries", len(chunk))
		}
	}
}

func TestPlanKeepsOversizedEntryInOwnChunk(t *testing.T) {
	entries := sizedEntries(t, 10*mib, 500*mib, 10*mib)
	chunks := planChunks(entries, Limits{MaxEntries: 10, MaxBytes: 100 * mib})
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if len(chunks[1]) != 1 || chunks[1][0].Size != 500*mib {
		t.Fatalf("oversized entry should sit alone: %+v", chunks[1])
	}
}

func TestPlanUnionCoversEveryEntryExactlyOnce(t *testing.T) {
	entries := sizedEntries(t, 30*mib, 50*mib, 20*mib, 45*mib, 5*mib, 60*mib)
	chunks := planChunks(entries, Limits{MaxEntries: 3, MaxBytes: 80 * mib})
	seen := map[string]int{}
	for _, chunk := range chunks {
		var bytes int64
		for _, entry := range chunk {
			seen[entry.Name]++
			bytes += entry.Size
		}
		if len(chunk) > 3 {
			t.Fatalf("chunk exceeds entry ceiling")
		}
		if len(chunk) > 1 && bytes > 80*mib {
			t.Fatalf("multi-entry chunk exceeds byte ceiling: %d", bytes)
		}
	}
	if len(seen) != len(entries) {
		t.Fatalf("entries lost: saw %d of %d", len(seen), len(entries))
	}
	for name, count := range seen {
		if count != 1 {
			t.Fatalf("entry %s packed %d times", name, count)
		}
	}
}

func TestPackSingleArchiveOmitsPartSuffix(t *testing.T) {
	entries := sizedEntries(t, mib, mib)
	dest := t.TempDir()

	p := NewPackager(logging.NewNop())
	written, err := p.Pack(context.Background(), entries, Limits{MaxEntries: 10, MaxBytes: 100 * mib}, dest, "batch")
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if len(written) != 1 || filepath.Base(written[0]) != "batch.zip" {
		t.Fatalf("written = %v, want single batch.zip", written)
	}
}

func TestPackMultipleArchivesUsePartNumbers(t *testing.T) {
	entries := sizedEntries(t, 40*mib, 40*mib, 40*mib)
	dest := t.TempDir()

	p := NewPackager(logging.NewNop())
	written, err := p.Pack(context.Background(), entries, Limits{MaxEntries: 10, MaxBytes: 100 * mib}, dest, "batch")
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	want := []string{"batch_part001.zip", "batch_part002.zip"}
	if len(written) != 2 {
		t.Fatalf("written = %v, want two archives", written)
	}
	for i, path := range written {
		if filepath.Base(path) != want[i] {
			t.Fatalf("archive %d = %s, want %s", i, filepath.Base(path), want[i])
		}
	}
}

func TestPackStoresEntriesUncompressed(t *testing.T) {
	entries := sizedEntries(t, mib)
	dest := t.TempDir()

	p := NewPackager(logging.NewNop())
	written, err := p.Pack(context.Background(), entries, Limits{}, dest, "batch")
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	reader, err := zip.OpenReader(written[0])
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer reader.Close()
	if len(reader.File) != 1 {
		t.Fatalf("archive holds %d entries, want 1", len(reader.File))
	}
	if reader.File[0].Method != zip.Store {
		t.Fatalf("entry method = %d, want store", reader.File[0].Method)
	}
}

func TestPackBisectsFailedChunk(t *testing.T) {
	entries := sizedEntries(t, mib, mib, mib, mib)
	dest := t.TempDir()

	p := NewPackager(logging.NewNop())
	failures := map[int]bool{4: true} // fail only the full four-entry chunk
	realWrite := p.writeChunk
	p.writeChunk = func(ctx context.Context, path string, chunk []Entry) error {
		if failures[len(chunk)] {
			return errors.New("memory ceiling")
		}
		return realWrite(ctx, path, chunk)
	}

	written, err := p.Pack(context.Background(), entries, Limits{MaxEntries: 10, MaxBytes: 100 * mib}, dest, "batch")
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("bisection should yield two halves, got %v", written)
	}
	total := 0
	for _, path := range written {
		reader, err := zip.OpenReader(path)
		if err != nil {
			t.Fatalf("open %s: %v", path, err)
		}
		total += len(reader.File)
		reader.Close()
	}
	if total != len(entries) {
		t.Fatalf("bisected archives hold %d entries, want %d", total, len(entries))
	}
}

func TestPackSingleEntryFailureIsIrreducible(t *testing.T) {
	entries := sizedEntries(t, mib, mib)
	dest := t.TempDir()

	p := NewPackager(logging.NewNop())
	p.writeChunk = func(ctx context.Context, path string, chunk []Entry) error {
		return errors.New("disk full")
	}

	if _, err := p.Pack(context.Background(), entries, Limits{}, dest, "batch"); err == nil {
		t.Fatal("irreducible failure must propagate")
	}
	leftovers, err := os.ReadDir(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(leftovers) != 0 {
		t.Fatalf("failed pack left files behind: %v", leftovers)
	}
}

func TestPackCancellation(t *testing.T) {
	entries := sizedEntries(t, mib, mib)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPackager(logging.NewNop())
	if _, err := p.Pack(ctx, entries, Limits{}, t.TempDir(), "batch"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
