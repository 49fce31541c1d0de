package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"clipforge/internal/config"
	"clipforge/internal/queue"
)

// enqueueSources stats and enqueues each source video under the given batch,
// reporting every queued job to out. A missing file aborts before anything
// is queued so a typo does not leave a half-built batch behind.
func enqueueSources(ctx context.Context, store *queue.Store, batchID string, sources []string, out io.Writer) ([]*queue.Job, error) {
	resolved := make([]string, 0, len(sources))
	for _, source := range sources {
		path, err := config.ExpandPath(source)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("inspect source %q: %w", source, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("source %q is a directory, expected a video file", source)
		}
		resolved = append(resolved, path)
	}

	jobs := make([]*queue.Job, 0, len(resolved))
	for _, path := range resolved {
		job, err := store.NewJob(ctx, path, batchID)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
		fmt.Fprintf(out, "Queued %s as job %d (batch %s)\n", filepath.Base(path), job.ID, batchID)
	}
	return jobs, nil
}

func jobTitle(job *queue.Job) string {
	if strings.TrimSpace(job.Title) != "" {
		return job.Title
	}
	return filepath.Base(job.SourcePath)
}

func formatBytes(size int64) string {
	const (
		kib = 1 << 10
		mib = 1 << 20
		gib = 1 << 30
	)
	switch {
	case size >= gib:
		return fmt.Sprintf("%.2f GiB", float64(size)/gib)
	case size >= mib:
		return fmt.Sprintf("%.1f MiB", float64(size)/mib)
	case size >= kib:
		return fmt.Sprintf("%.1f KiB", float64(size)/kib)
	default:
		return fmt.Sprintf("%d B", size)
	}
}
