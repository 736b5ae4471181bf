package prompts

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultDataDir is where the prompt CSV files live relative to the working directory
const DefaultDataDir = "../data"

// TestFraction is the share of rows kept when a dataset is loaded in test mode
const TestFraction = 0.01

// LoadOptions selects which prompt tables to load
type LoadOptions struct {
	Dir    string
	Prefix string // dataset name, e.g. "magbig"
	Split  string // optional substring filter, e.g. "direct"
	Test   bool   // keep a small deterministic sample of each table
	Seed   int64
}

// LoadDataset loads every <Prefix>*.csv in Dir, optionally filtered by Split.
// Tables that fail to load are logged and left out. Tables are returned in file name order.
func LoadDataset(opts LoadOptions) ([]*Table, error) {
	if opts.Dir == "" {
		opts.Dir = DefaultDataDir
	}

	entries, err := os.ReadDir(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, opts.Prefix) || !strings.HasSuffix(name, ".csv") {
			continue
		}
		if opts.Split != "" && !strings.Contains(name, opts.Split) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	tables := make([]*Table, 0, len(names))
	for _, name := range names {
		path := filepath.Join(opts.Dir, name)
		t, err := ReadTable(path)
		if err != nil {
			slog.Error("Error loading prompt table", "path", path, "err", err)
			continue
		}
		if opts.Test {
			t = t.Sample(TestFraction, opts.Seed)
		}
		slog.Debug("Loaded prompt table", "name", t.Name, "rows", t.Len(), "columns", t.Columns)
		tables = append(tables, t)
	}

	return tables, nil
}

// Sample returns a copy holding round(frac*rows) randomly chosen rows, at least one.
// The same seed always picks the same rows.
func (t *Table) Sample(frac float64, seed int64) *Table {
	out := NewTable(t.Name, t.Columns...)
	if t.Len() == 0 {
		return out
	}

	n := int(math.Round(frac * float64(t.Len())))
	n = max(1, min(n, t.Len()))

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	for _, i := range rng.Perm(t.Len())[:n] {
		out.Rows = append(out.Rows, t.Rows[i])
	}
	return out
}

// LanguageColumn maps a CLI language name to its table column
func LanguageColumn(language string) string {
	if language == "german" {
		return ColumnGerman
	}
	return ColumnEnglish
}
