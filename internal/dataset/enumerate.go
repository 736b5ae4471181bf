package dataset

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Summary reports what one enumeration run produced
type Summary struct {
	Images       int
	Skipped      int
	MetadataPath string
	Index        *Index
}

// Enumerate copies every image below sourceDir whose directory follows the
// occupation/model/prompt_group/language layout into targetDir as <id>.png and
// writes the metadata index to targetDir/metadataFile.
//
// Non-conforming directories are skipped. Any I/O error aborts the run and
// leaves the files copied so far in place.
func Enumerate(sourceDir, targetDir, metadataFile string) (*Summary, error) {
	if metadataFile == "" {
		metadataFile = MetadataFile
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create target directory: %w", err)
	}

	var ids Allocator
	index := NewIndex()
	skipped := 0

	for dir, err := range NewWalker(sourceDir).Dirs() {
		if err != nil {
			return nil, err
		}
		if len(dir.Files) == 0 {
			continue
		}

		rel, err := filepath.Rel(sourceDir, dir.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve relative path: %w", err)
		}

		parsed := ParsePath(rel)
		if !parsed.OK() {
			slog.Debug("Skipping directory", "dir", dir.Path, "files", len(dir.Files), "reason", parsed.Skipped.Reason)
			skipped += len(dir.Files)
			continue
		}

		for _, name := range dir.Files {
			id := ids.Next()
			src := filepath.Join(dir.Path, name)
			dst := filepath.Join(targetDir, FileName(id))
			if err := CopyFile(src, dst); err != nil {
				return nil, err
			}
			index.Add(id, *parsed.Parsed)
			slog.Debug("Copied image", "id", id, "source", src)
		}
	}

	metadataPath := filepath.Join(targetDir, metadataFile)
	if err := index.Save(metadataPath); err != nil {
		return nil, err
	}

	return &Summary{
		Images:       ids.Count(),
		Skipped:      skipped,
		MetadataPath: metadataPath,
		Index:        index,
	}, nil
}
