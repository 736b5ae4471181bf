package cmd

import (
	"fmt"

	"github.com/occubias/occugen/internal/gemini"
	"github.com/occubias/occugen/internal/ollama"
	"github.com/occubias/occugen/internal/prompts"
	"github.com/spf13/cobra"
)

func newPromptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Derive additional prompt tables",
		Long: `Derive the bafis prompt tables from the magbig tables in the data directory.

  groups   plural group prompts built from the direct prompts
  reduced  direct, indirect, feminine and gender-star prompts without the face phrase`,
	}

	cmd.AddCommand(newPromptsGroupsCmd())
	cmd.AddCommand(newPromptsReducedCmd())

	return cmd
}

func newPromptsGroupsCmd() *cobra.Command {
	var dataDir string
	var refine string
	var model string

	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Write bafis_occupations_groups.csv",
		Long: `Build group prompts from magbig_occupations_direct.csv. Occupations are
pluralized by rule. With --refine every German plural is checked by a language
model, either Gemini (GEMINI_API_KEY) or a local Ollama server (OLLAMA_URL).
The rule-based form is kept whenever refinement fails.`,
		Example: `  # Rule-based plurals only
  occugen prompts groups

  # Let Gemini correct the German plurals
  occugen prompts groups --refine gemini`,
		RunE: func(cmd *cobra.Command, args []string) error {
			refiner, closeRefiner, err := newRefiner(refine, model)
			if err != nil {
				return err
			}
			defer closeRefiner()

			path, err := prompts.WriteGroups(cmd.Context(), dataDir, refiner)
			if err != nil {
				return fmt.Errorf("failed to write group prompts: %w", err)
			}
			fmt.Printf("Group prompts saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data_directory", prompts.DefaultDataDir, "Directory containing the prompt tables")
	cmd.Flags().StringVar(&refine, "refine", "", "Correct German plurals with a language model (gemini or ollama)")
	cmd.Flags().StringVar(&model, "model", "", "Model used with --refine (defaults to the provider's default)")

	return cmd
}

func newRefiner(provider, model string) (prompts.PluralRefiner, func(), error) {
	noop := func() {}
	switch provider {
	case "":
		return nil, noop, nil
	case "gemini":
		g := gemini.New()
		if model != "" {
			g.Model = model
		}
		return prompts.LLMRefiner{LLM: g}, func() { _ = g.Close() }, nil
	case "ollama":
		o := ollama.New()
		if model != "" {
			o.Model = model
		}
		return prompts.LLMRefiner{LLM: o}, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown refine provider %q: must be gemini or ollama", provider)
	}
}

func newPromptsReducedCmd() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "reduced",
		Short: "Write the reduced bafis prompt tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := prompts.WriteReduced(dataDir)
			for _, p := range paths {
				fmt.Printf("Reduced prompts saved to %s\n", p)
			}
			if err != nil {
				return fmt.Errorf("failed to write reduced prompts: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data_directory", prompts.DefaultDataDir, "Directory containing the prompt tables")

	return cmd
}
