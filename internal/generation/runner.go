package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/occubias/occugen/internal/images"
	"github.com/occubias/occugen/internal/prompts"
	"github.com/occubias/occugen/internal/providers"
	"github.com/occubias/occugen/internal/results"
)

// Downloader fetches an image URL to a local path
type Downloader interface {
	Download(ctx context.Context, url, outputPath string) error
}

// Runner sends every prompt of a dataset to one backend and stores the images
type Runner struct {
	Generator  providers.Generator
	Downloader Downloader

	Model     string // passed to the backend
	ModelDir  string // directory level under the occupation, defaults to Model
	Dest      string
	Language  string // english or german
	NumImages int

	Now func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// ModelDirOrModel is the directory level images are stored under
func (r *Runner) ModelDirOrModel() string {
	if r.ModelDir != "" {
		return r.ModelDir
	}
	return r.Model
}

// Run processes tables in order. Tables without the language column and
// prompts whose generation fails are recorded in the summary and skipped.
// Only context cancellation stops the run early.
func (r *Runner) Run(ctx context.Context, tables []*prompts.Table, summary *results.RunSummary) error {
	lang := prompts.LanguageColumn(r.Language)

	for _, table := range tables {
		split := table.Name

		occupations, err := table.Column(prompts.ColumnOccupation)
		if err != nil {
			slog.Error("Table has no occupation column", "table", split)
			summary.Skipped = append(summary.Skipped, results.SkippedTable{Table: split, Reason: err.Error()})
			continue
		}
		texts, err := table.Column(lang)
		if err != nil {
			slog.Error(fmt.Sprintf("Language %s not found in %s", lang, split))
			summary.Skipped = append(summary.Skipped, results.SkippedTable{Table: split, Reason: err.Error()})
			continue
		}

		slog.Info("Generating images", "table", split, "prompts", len(texts), "language", lang)
		for i, prompt := range texts {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := r.generate(ctx, occupations[i], prompt, split, lang)
			res.Table = split
			summary.Add(res)
		}
	}
	return nil
}

func (r *Runner) generate(ctx context.Context, occupation, prompt, split, lang string) results.PromptResult {
	res := results.PromptResult{Occupation: occupation, Prompt: prompt}

	imgs, genErr := r.Generator.Generate(ctx, providers.Request{
		Model:  r.Model,
		Prompt: prompt,
		N:      r.NumImages,
	})
	if genErr != nil {
		slog.Error("An error occurred with prompt", "prompt", prompt, "occupation", occupation, "err", genErr)
	}

	dir := ImageDir(r.Dest, occupation, r.ModelDirOrModel(), split, lang)
	base := BaseName(prompt)
	var saveErrs []error
	for i, img := range imgs {
		path := UniquePath(dir, ImageName(base, i, len(imgs)), r.now())
		if err := r.save(ctx, img, path); err != nil {
			slog.Error("Failed to save image", "path", path, "err", err)
			saveErrs = append(saveErrs, err)
			continue
		}
		res.Images = append(res.Images, path)
	}

	if err := errors.Join(append([]error{genErr}, saveErrs...)...); err != nil {
		res.Error = err.Error()
	}
	return res
}

func (r *Runner) save(ctx context.Context, img providers.Image, path string) error {
	switch {
	case len(img.Data) > 0:
		return images.WriteImage(path, img.Data)
	case img.URL != "":
		if r.Downloader == nil {
			return fmt.Errorf("no downloader configured for %s", img.URL)
		}
		return r.Downloader.Download(ctx, img.URL, path)
	default:
		return providers.ErrNoImages
	}
}
