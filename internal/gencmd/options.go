package gencmd

import (
	"context"
	"fmt"

	"github.com/occubias/occugen/internal/generation"
	"github.com/occubias/occugen/internal/images"
	"github.com/occubias/occugen/internal/prompts"
	"github.com/occubias/occugen/internal/providers"
	"github.com/occubias/occugen/internal/results"
	"github.com/spf13/cobra"
)

// options holds the flags shared by every generate subcommand
type options struct {
	model     string
	data      string
	split     string
	language  string
	numImages int
	dest      string
	test      bool
	seed      int64
	dataDir   string
	runsDir   string
}

func (o *options) register(cmd *cobra.Command, defaultModel string) {
	if defaultModel != "" {
		cmd.Flags().StringVar(&o.model, "model", defaultModel, "Which model to prompt")
	}
	cmd.Flags().StringVar(&o.data, "data", "magbig", "Which dataset to use (prompt table file prefix)")
	cmd.Flags().StringVar(&o.split, "split", "", "Which split of the dataset to use (default all)")
	cmd.Flags().StringVar(&o.language, "language", "german", "What language to prompt in (english or german)")
	cmd.Flags().IntVar(&o.numImages, "num_images", 4, "How many images to generate per prompt")
	cmd.Flags().StringVar(&o.dest, "dest", "../images", "What folder to save images in")
	cmd.Flags().BoolVar(&o.test, "test", false, "Only use a small sample of every table")
	cmd.Flags().Int64Var(&o.seed, "seed", 42, "Random seed for the test sample")
	cmd.Flags().StringVar(&o.dataDir, "data_directory", prompts.DefaultDataDir, "Directory containing the prompt tables")
	cmd.Flags().StringVar(&o.runsDir, "runs_directory", results.DefaultDir, "Directory for run summaries")
}

func (o *options) validate() error {
	if o.language != "english" && o.language != "german" {
		return fmt.Errorf("invalid language %q: must be english or german", o.language)
	}
	if o.numImages < 1 {
		return fmt.Errorf("num_images must be at least 1")
	}
	return nil
}

// execute loads the prompt tables, runs the generator over them and writes the run summary
func (o *options) execute(ctx context.Context, backend string, gen providers.Generator, modelDir string) error {
	if err := o.validate(); err != nil {
		return err
	}

	tables, err := prompts.LoadDataset(prompts.LoadOptions{
		Dir:    o.dataDir,
		Prefix: o.data,
		Split:  o.split,
		Test:   o.test,
		Seed:   o.seed,
	})
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	if len(tables) == 0 {
		return fmt.Errorf("no prompt tables matching %q found in %s", o.data, o.dataDir)
	}
	for _, t := range tables {
		fmt.Printf("Loaded %s: %d prompts\n", t.Name, t.Len())
	}

	runner := &generation.Runner{
		Generator:  gen,
		Downloader: images.NewFetcher(),
		Model:      o.model,
		ModelDir:   modelDir,
		Dest:       o.dest,
		Language:   o.language,
		NumImages:  o.numImages,
	}

	summary := &results.RunSummary{Config: results.RunConfig{
		Backend:   backend,
		Model:     runner.ModelDirOrModel(),
		Data:      o.data,
		Split:     o.split,
		Language:  o.language,
		NumImages: o.numImages,
		Dest:      o.dest,
		Test:      o.test,
		Seed:      o.seed,
	}}

	runErr := runner.Run(ctx, tables, summary)

	path, err := results.SaveToYAML(o.runsDir, summary)
	if err != nil {
		return err
	}
	fmt.Printf("Generated %d images for %d prompts (%d failed)\n", summary.Images, summary.Prompts, summary.Failures)
	fmt.Printf("Run summary saved to %s\n", path)

	return runErr
}
