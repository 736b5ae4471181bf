package dataset

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/parquet-go/parquet-go"
)

// ParquetFile is the name of the optional columnar copy of the index
const ParquetFile = "metadata.parquet"

// ExportRow is one record of the parquet export. FileName is relative to the dataset directory.
type ExportRow struct {
	ID          int64   `parquet:"id"`
	FileName    string  `parquet:"file_name"`
	Occupation  string  `parquet:"occupation"`
	Model       string  `parquet:"model"`
	PromptGroup string  `parquet:"prompt_group"`
	Language    string  `parquet:"language"`
	Prompt      *string `parquet:"prompt,optional"`
}

// ExportRows flattens the index in key order
func ExportRows(ix *Index) ([]ExportRow, error) {
	rows := make([]ExportRow, 0, ix.Len())
	for key, rec := range ix.All() {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("metadata key %q is not numeric: %w", key, err)
		}
		rows = append(rows, ExportRow{
			ID:          id,
			FileName:    key + ImageExt,
			Occupation:  rec.Occupation,
			Model:       rec.Model,
			PromptGroup: rec.PromptGroup,
			Language:    rec.Language,
			Prompt:      rec.Prompt,
		})
	}
	return rows, nil
}

// ExportParquet writes the index to path as a parquet file
func ExportParquet(ix *Index, path string) error {
	rows, err := ExportRows(ix)
	if err != nil {
		return err
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("failed to write parquet export: %w", err)
	}
	slog.Info("Exported metadata", "path", path, "rows", len(rows))
	return nil
}

// ReadParquet loads rows written by ExportParquet
func ReadParquet(path string) ([]ExportRow, error) {
	rows, err := parquet.ReadFile[ExportRow](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet export: %w", err)
	}
	return rows, nil
}
