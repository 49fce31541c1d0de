package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"clipforge/internal/logging"
	"clipforge/internal/services"
)

// Packager writes chunked zip archives.
type Packager struct {
	logger *slog.Logger

	// Injectable for tests; failures here trigger bisection.
	writeChunk func(ctx context.Context, path string, entries []Entry) error
}

// NewPackager constructs a packager.
func NewPackager(logger *slog.Logger) *Packager {
	p := &Packager{logger: logging.NewComponentLogger(logger, "archive")}
	p.writeChunk = p.writeZip
	return p
}

// Pack packages the entries into archives under destDir, named
// <base>.zip for a single archive or <base>_partNNN.zip when chunking splits
// the output. Returns the written archive paths in order.
func (p *Packager) Pack(ctx context.Context, entries []Entry, limits Limits, destDir, base string) ([]string, error) {
	const stage = "archiving"
	if len(entries) == 0 {
		return nil, nil
	}

	chunks := planChunks(entries, limits)
	multi := len(chunks) > 1

	names := newNamer(destDir, base, multi)
	var written []string
	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			removeAll(written)
			return nil, err
		}
		paths, err := p.packChunk(ctx, chunk, names)
		if err != nil {
			removeAll(written)
			if services.IsCancellation(err) {
				return nil, err
			}
			return nil, services.Wrap(services.ErrValidation, stage, "write archive", "", err)
		}
		written = append(written, paths...)
	}
	return written, nil
}

// packChunk writes one planned chunk. On failure the chunk is bisected and
// each half retried independently; bisection bottoms out at a single entry,
// whose failure is genuinely irreducible and propagates.
func (p *Packager) packChunk(ctx context.Context, entries []Entry, names *namer) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := names.next()
	if err := p.writeChunk(ctx, path, entries); err == nil {
		return []string{path}, nil
	} else if len(entries) <= 1 {
		_ = os.Remove(path)
		return nil, err
	} else {
		_ = os.Remove(path)
		names.giveBack()
		names.multi = true
		p.logger.Warn("archive chunk failed, bisecting",
			logging.Int("entries", len(entries)),
			logging.Error(err),
		)
	}

	mid := len(entries) / 2
	first, err := p.packChunk(ctx, entries[:mid], names)
	if err != nil {
		removeAll(first)
		return nil, err
	}
	second, err := p.packChunk(ctx, entries[mid:], names)
	if err != nil {
		removeAll(first)
		removeAll(second)
		return nil, err
	}
	return append(first, second...), nil
}

// writeZip streams the entries into one zip file using uncompressed storage.
func (p *Packager) writeZip(ctx context.Context, path string, entries []Entry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer file.Close()

	zw := zip.NewWriter(file)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			_ = zw.Close()
			return err
		}
		header := &zip.FileHeader{Name: entry.Name, Method: zip.Store}
		writer, err := zw.CreateHeader(header)
		if err != nil {
			_ = zw.Close()
			return fmt.Errorf("archive entry %s: %w", entry.Name, err)
		}
		source, err := os.Open(entry.Path)
		if err != nil {
			_ = zw.Close()
			return fmt.Errorf("archive entry %s: %w", entry.Name, err)
		}
		_, err = io.Copy(writer, source)
		source.Close()
		if err != nil {
			_ = zw.Close()
			return fmt.Errorf("archive entry %s: %w", entry.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return file.Sync()
}

// namer allocates sequential archive paths. When only one archive is
// expected the part suffix is omitted; bisection can still force later
// archives, which then carry part numbers.
type namer struct {
	destDir string
	base    string
	multi   bool
	issued  int
}

func newNamer(destDir, base string, multi bool) *namer {
	return &namer{destDir: destDir, base: base, multi: multi}
}

func (n *namer) next() string {
	n.issued++
	if !n.multi && n.issued == 1 {
		return filepath.Join(n.destDir, n.base+".zip")
	}
	return filepath.Join(n.destDir, fmt.Sprintf("%s_part%03d.zip", n.base, n.issued))
}

// giveBack returns the most recent name so a bisected chunk's halves reuse
// the numbering slot.
func (n *namer) giveBack() {
	if n.issued > 0 {
		n.issued--
	}
}

func removeAll(paths []string) {
	for _, path := range paths {
		_ = os.Remove(path)
	}
}
