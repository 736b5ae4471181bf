package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/occubias/occugen/internal/dataset"
	"github.com/spf13/cobra"
)

func newDatasetCmd() *cobra.Command {
	var sourceDir string
	var targetDir string
	var dataDir string
	var exportParquet bool

	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Enumerate generated images into a flat dataset",
		Long: `Walk the image tree <source>/<occupation>/<model>/<prompt_group>/<language>/,
copy every PNG into the target directory as <id>.png and write metadata.json
mapping each id to its occupation, model, prompt group and language.

A second pass adds the literal prompt of every record, looked up in the
prompt tables of the data directory. Records from other prompt groups get a
null prompt.`,
		Example: `  # Enumerate with the default layout
  occugen dataset

  # Also export metadata.parquet for dataset hubs
  occugen dataset --source_directory ../images --target_directory ../images_dataset --parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeDataset(sourceDir, targetDir, dataDir, exportParquet)
		},
	}

	cmd.Flags().StringVar(&sourceDir, "source_directory", "../images", "Directory containing the generated image tree")
	cmd.Flags().StringVar(&targetDir, "target_directory", "../images_dataset", "Directory to write the enumerated dataset to")
	cmd.Flags().StringVar(&dataDir, "data_directory", "../data", "Directory containing the prompt tables")
	cmd.Flags().BoolVar(&exportParquet, "parquet", false, "Also write metadata.parquet next to metadata.json")

	return cmd
}

func executeDataset(sourceDir, targetDir, dataDir string, exportParquet bool) error {
	summary, err := dataset.Enumerate(sourceDir, targetDir, dataset.MetadataFile)
	if err != nil {
		return fmt.Errorf("failed to enumerate images: %w", err)
	}
	fmt.Printf("Processed %d images\n", summary.Images)
	fmt.Printf("Metadata saved to %s\n", summary.MetadataPath)

	tables, err := dataset.NewTableCache(dataDir)
	if err != nil {
		return err
	}
	if err := dataset.AddPrompts(summary.MetadataPath, tables); err != nil {
		return fmt.Errorf("failed to add prompts to metadata: %w", err)
	}

	if exportParquet {
		ix, err := dataset.LoadIndex(summary.MetadataPath)
		if err != nil {
			return err
		}
		path := filepath.Join(targetDir, dataset.ParquetFile)
		if err := dataset.ExportParquet(ix, path); err != nil {
			return err
		}
		fmt.Printf("Parquet export saved to %s\n", path)
	}

	fmt.Println("Enumeration complete.")
	return nil
}
