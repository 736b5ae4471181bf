package cmd

import (
	"github.com/occubias/occugen/internal/gencmd"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate occupation images with an image backend",
		Long: `Send every prompt of the selected prompt tables to an image generation backend
and store the results under <dest>/<occupation>/<model>/<split>/<language>/.

A YAML summary of every run is written to runs/.`,
	}

	cmd.AddCommand(gencmd.NewDalleCmd())
	cmd.AddCommand(gencmd.NewMidjourneyCmd())
	cmd.AddCommand(gencmd.NewStableDiffusionCmd())
	cmd.AddCommand(gencmd.NewImagenCmd())

	return cmd
}
