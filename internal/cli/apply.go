package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kinky/internal/enhance"
	"kinky/internal/models"
	"kinky/internal/pipeline"
)

func newApplyCommand(opts *rootOptions) *cobra.Command {
	var p models.ParameterSet

	cmd := &cobra.Command{
		Use:   "apply <input> <output>",
		Short: "Enhance one image with fixed parameters and save a 16-bit result",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			params := mergeParams(cmd, cfg.Defaults, p)
			if err := params.Validate(); err != nil {
				return err
			}
			if !pipeline.SupportedOutput(args[1]) {
				return fmt.Errorf("unsupported output format for %s: use .png or .tif", args[1])
			}

			img, _, err := pipeline.LoadImage(args[0], log)
			if err != nil {
				return err
			}

			start := time.Now()
			out := enhance.Transform(img, params)
			log.Info("CLI", "transform finished", map[string]interface{}{
				"params":   params.String(),
				"duration": time.Since(start).String(),
			})

			return pipeline.SaveImage(out, args[1], log)
		},
	}

	cmd.Flags().Float64Var(&p.KEnh, "k", 0, "enhancement gain")
	cmd.Flags().Float64Var(&p.SigmaEnh, "sigma-enh", 0, "enhancement blur sigma")
	cmd.Flags().Float64Var(&p.SigmaNoise, "sigma-noise", 0, "denoising blur sigma")
	cmd.Flags().Float64Var(&p.Threshold, "threshold", 0, "noise-floor threshold")
	return cmd
}

// mergeParams takes each parameter from its flag when given and from the
// configured defaults otherwise.
func mergeParams(cmd *cobra.Command, defaults, flags models.ParameterSet) models.ParameterSet {
	out := defaults
	if cmd.Flags().Changed("k") {
		out.KEnh = flags.KEnh
	}
	if cmd.Flags().Changed("sigma-enh") {
		out.SigmaEnh = flags.SigmaEnh
	}
	if cmd.Flags().Changed("sigma-noise") {
		out.SigmaNoise = flags.SigmaNoise
	}
	if cmd.Flags().Changed("threshold") {
		out.Threshold = flags.Threshold
	}
	return out
}
