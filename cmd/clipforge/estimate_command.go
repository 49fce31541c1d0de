package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"clipforge/internal/archive"
	"clipforge/internal/config"
	"clipforge/internal/queue"
)

func newEstimateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate [file...]",
		Short: "Estimate how many zip archives a set of exports will need",
		Long: "Estimate plans the chunked zip packaging for the given files " +
			"against the configured archive ceilings without writing anything. " +
			"With no arguments it plans over the exports already sitting in the " +
			"output directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				entries, err := collectEntries(cfg, args)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Nothing to archive")
					return nil
				}

				var total int64
				for _, entry := range entries {
					total += entry.Size
				}
				limits := archive.Limits{
					MaxEntries: cfg.Archive.MaxEntries,
					MaxBytes:   cfg.ArchiveMaxBytes(),
				}
				count := archive.EstimateZipCount(entries, limits)

				fmt.Fprintf(out, "Files: %d (%s)\n", len(entries), formatBytes(total))
				fmt.Fprintf(out, "Ceilings: %d entries, %s per archive\n",
					limits.MaxEntries, formatBytes(limits.MaxBytes))
				fmt.Fprintf(out, "Planned archives: %d\n", count)
				return nil
			})
		},
	}
	return cmd
}

// collectEntries turns the command arguments, or the output directory when
// none are given, into archive entries. Archives from previous runs are
// skipped so repeated estimates stay stable.
func collectEntries(cfg *config.Config, args []string) ([]archive.Entry, error) {
	paths := args
	if len(paths) == 0 {
		listing, err := os.ReadDir(cfg.Paths.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("read output directory: %w", err)
		}
		for _, item := range listing {
			if item.IsDir() || strings.EqualFold(filepath.Ext(item.Name()), ".zip") {
				continue
			}
			paths = append(paths, filepath.Join(cfg.Paths.OutputDir, item.Name()))
		}
	}

	entries := make([]archive.Entry, 0, len(paths))
	for _, path := range paths {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			return nil, fmt.Errorf("inspect %q: %w", path, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%q is a directory, expected a file", path)
		}
		entries = append(entries, archive.Entry{
			Name: filepath.Base(expanded),
			Path: expanded,
			Size: info.Size(),
		})
	}
	return entries, nil
}
