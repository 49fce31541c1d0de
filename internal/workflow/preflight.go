package workflow

import (
	"fmt"

	"golang.org/x/sys/unix"

	"clipforge/internal/config"
	"clipforge/internal/deps"
	"clipforge/internal/services"
)

// minFreeBytes is the free-space floor for the output directory before a
// batch starts. Encoded outputs plus archives for a batch comfortably fit;
// running the disk to zero mid-batch corrupts the last encode instead of
// failing cleanly here.
const minFreeBytes = 2 << 30

// ToolRequirements names the external binaries a batch run shells out to.
func ToolRequirements(cfg *config.Config) []deps.Requirement {
	return []deps.Requirement{
		{Name: "FFmpeg", Command: cfg.FFmpegBinary(), Description: "frame decoding, audio extraction, encoding"},
		{Name: "FFprobe", Command: cfg.FFprobeBinary(), Description: "source probing and output validation"},
	}
}

// requireTools fails fast when an external binary cannot be resolved, before
// any job is claimed.
func requireTools(cfg *config.Config) error {
	if err := deps.Missing(ToolRequirements(cfg)); err != nil {
		return services.Wrap(services.ErrConfiguration, "preflight", "external tools", err.Error(), nil)
	}
	return nil
}

// requireFreeSpace fails fast when the filesystem holding dir is nearly full.
func requireFreeSpace(dir string, minimum uint64) error {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		return services.Wrap(services.ErrConfiguration, "preflight", "statfs",
			fmt.Sprintf("cannot stat %s", dir), err)
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minimum {
		return services.Wrap(services.ErrConfiguration, "preflight", "free space",
			fmt.Sprintf("%s has %d MiB free, need at least %d MiB", dir, free>>20, minimum>>20), nil)
	}
	return nil
}
