package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"clipforge/internal/compositor"
	"clipforge/internal/config"
	"clipforge/internal/fluidity"
	"clipforge/internal/framing"
	"clipforge/internal/logging"
	"clipforge/internal/media/ffprobe"
)

func newFluidityCommand(ctx *commandContext) *cobra.Command {
	var seconds int

	cmd := &cobra.Command{
		Use:   "fluidity <video>",
		Short: "Run a trial render and report the fluidity recommendation",
		Long: "Fluidity composites a few seconds of the given video at full " +
			"template resolution, measures how far frame delivery lags the " +
			"nominal rate, and prints the frame rate and resolution the encoder " +
			"should use on this machine.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Template.Path == "" {
				return errors.New("template.path must be configured for a fluidity trial")
			}

			source, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			template, err := compositor.LoadTemplate(
				cfg.Template.Path,
				cfg.Template.RegionX,
				cfg.Template.RegionY,
				cfg.Template.RegionWidth,
				cfg.Template.RegionHeight,
			)
			if err != nil {
				return err
			}

			probed, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), source)
			if err != nil {
				return fmt.Errorf("probe %s: %w", source, err)
			}
			video := probed.VideoStream()
			if video == nil {
				return fmt.Errorf("%s has no video stream", source)
			}
			fps := probed.FrameRate()
			if fps <= 0 {
				fps = cfg.Render.FPS
			}

			placement := framing.ComputePlacement(
				video.Width, video.Height,
				framing.DefaultBounds(), framing.DefaultAnchor(),
				cfg.Template.RegionWidth, cfg.Template.RegionHeight,
				cfg.Render.FitMode,
			)
			comp := compositor.New(compositor.Options{
				Template:  template,
				Placement: placement,
				Watermark: cfg.Render.Watermark,
			})

			estimator := fluidity.NewEstimator(cfg.FFmpegBinary(), logging.NewNop())
			rec, err := estimator.Trial(cmd.Context(), comp, fluidity.TrialOptions{
				Source:       source,
				SourceWidth:  video.Width,
				SourceHeight: video.Height,
				FPS:          fps,
				Seconds:      seconds,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Quality: %s\n", rec.Quality)
			fmt.Fprintf(out, "Recommended fps: %g\n", rec.FPS)
			fmt.Fprintf(out, "Recommended resolution: %s\n", rec.Resolution)
			return nil
		},
	}

	cmd.Flags().IntVar(&seconds, "seconds", 0, "Trial length in seconds (default: 3)")
	return cmd
}
