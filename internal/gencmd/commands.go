package gencmd

import (
	"github.com/occubias/occugen/internal/imagen"
	"github.com/occubias/occugen/internal/midjourney"
	"github.com/occubias/occugen/internal/openai"
	"github.com/occubias/occugen/internal/stablediffusion"
	"github.com/spf13/cobra"
)

// NewDalleCmd creates the dalle command for the OpenAI images API
func NewDalleCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "dalle",
		Short: "Generate images using DALL-E",
		Long: `Generate images for every prompt with the OpenAI images API.

Each image is requested separately. Rate-limited requests are retried with
exponential backoff. Requires OPENAI_API_KEY; OPENAI_ORGANIZATION and
OPENAI_BASE_URL are optional.`,
		Example: `  # English prompts of the direct split, one image each
  occugen generate dalle --split direct --language english --num_images 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.execute(cmd.Context(), "dalle", openai.New(), "")
		},
	}
	opts.register(cmd, openai.DefaultModel)

	return cmd
}

// NewMidjourneyCmd creates the midjourney command
func NewMidjourneyCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "midjourney",
		Short: "Generate images using Midjourney",
		Long: `Generate images through a Midjourney proxy. Every prompt is imagined once and
up to four cells of the resulting grid are upscaled.

Requires MIDJOURNEY_API_URL; MIDJOURNEY_API_KEY is sent as the proxy secret.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.execute(cmd.Context(), "midjourney", midjourney.New(), "")
		},
	}
	opts.register(cmd, midjourney.DefaultModel)

	return cmd
}

// NewStableDiffusionCmd creates the stable-diffusion command
func NewStableDiffusionCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:     "stable-diffusion",
		Aliases: []string{"sd"},
		Short:   "Generate images using a local Stable Diffusion web UI",
		Long: `Generate images with a locally running Stable Diffusion web UI (sdapi).
All images of a prompt are rendered as one batch with 50 steps at 1024x1024.

SD_URL points at the web UI (default http://127.0.0.1:7860).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.execute(cmd.Context(), "stable-diffusion", stablediffusion.New(), stablediffusion.ModelDir)
		},
	}
	opts.register(cmd, "")

	return cmd
}

// NewImagenCmd creates the imagen command
func NewImagenCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "imagen",
		Short: "Generate images using Google Imagen",
		Long:  `Generate images with Google Imagen through the Gemini API. Requires GEMINI_API_KEY.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := imagen.New(cmd.Context())
			if err != nil {
				return err
			}
			return opts.execute(cmd.Context(), "imagen", gen, "")
		},
	}
	opts.register(cmd, imagen.DefaultModel)

	return cmd
}
