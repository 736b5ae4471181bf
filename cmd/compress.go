package cmd

import (
	"fmt"

	"github.com/occubias/occugen/internal/images"
	"github.com/spf13/cobra"
)

func newCompressCmd() *cobra.Command {
	var sourceDir string
	var targetDir string

	cmd := &cobra.Command{
		Use:   "compress",
		Short: "Copy the image tree as thumbnails",
		Long: `Mirror the image tree into the target directory, scaling every PNG down to
fit within 128x128 pixels while keeping its aspect ratio.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := images.Compress(sourceDir, targetDir)
			if err != nil {
				return err
			}
			fmt.Println(stats)
			fmt.Println("Compression complete.")
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceDir, "source_directory", "../images", "Directory containing the generated image tree")
	cmd.Flags().StringVar(&targetDir, "target_directory", "../images_thumbnail", "Directory to write thumbnails to")

	return cmd
}
