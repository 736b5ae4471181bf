package dataset

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/occubias/occugen/internal/prompts"
)

// PromptGroups are the prompt groups whose lookup tables the join pass knows about.
// Records of any other group get a null prompt.
var PromptGroups = []string{
	"bafis_occupations_groups",
	"magbig_occupations_direct",
	"magbig_occupations_direct_feminine",
	"magbig_occupations_indirect",
}

var (
	// ErrOccupationNotFound means a recognized table has no row for the occupation
	ErrOccupationNotFound = errors.New("occupation not found in prompt table")
	// ErrLanguageColumn means a recognized table has no column for the record's language
	ErrLanguageColumn = errors.New("language column not found in prompt table")
)

// IsPromptGroup reports whether group has a lookup table
func IsPromptGroup(group string) bool {
	return slices.Contains(PromptGroups, group)
}

// TableSource resolves a prompt group to its lookup table
type TableSource interface {
	Table(name string) (*prompts.Table, error)
}

// TableCache loads lookup tables from a directory and keeps recently used ones in memory
type TableCache struct {
	dir   string
	cache *lru.Cache[string, *prompts.Table]
}

// NewTableCache creates a cache over <dir>/<name>.csv
func NewTableCache(dir string) (*TableCache, error) {
	cache, err := lru.New[string, *prompts.Table](len(PromptGroups))
	if err != nil {
		return nil, fmt.Errorf("failed to create table cache: %w", err)
	}
	return &TableCache{dir: dir, cache: cache}, nil
}

// Table returns the named table, reading it from disk on a cache miss
func (c *TableCache) Table(name string) (*prompts.Table, error) {
	if t, ok := c.cache.Get(name); ok {
		return t, nil
	}
	path := filepath.Join(c.dir, name+".csv")
	slog.Debug("Loading prompt table", "path", path)
	t, err := prompts.ReadTable(path)
	if err != nil {
		return nil, err
	}
	c.cache.Add(name, t)
	return t, nil
}

// LookupPrompt returns the prompt text for rec, or nil when its group is not recognized
func LookupPrompt(rec Record, tables TableSource) (*string, error) {
	if !IsPromptGroup(rec.PromptGroup) {
		return nil, nil
	}

	table, err := tables.Table(rec.PromptGroup)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt table %s: %w", rec.PromptGroup, err)
	}
	if !table.HasColumn(rec.Language) {
		return nil, fmt.Errorf("%w: %q in %s", ErrLanguageColumn, rec.Language, rec.PromptGroup)
	}

	prompt, found, err := table.Lookup(prompts.ColumnOccupation, rec.Occupation, rec.Language)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", rec.Occupation, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %q in %s", ErrOccupationNotFound, rec.Occupation, rec.PromptGroup)
	}
	return &prompt, nil
}

// JoinPrompts attaches the prompt text to every record of ix in order.
// The first failing lookup aborts the join.
func JoinPrompts(ix *Index, tables TableSource) error {
	for key, rec := range ix.All() {
		prompt, err := LookupPrompt(*rec, tables)
		if err != nil {
			return fmt.Errorf("record %s: %w", key, err)
		}
		rec.SetPrompt(prompt)
	}
	return nil
}

// AddPrompts reloads the metadata file, joins prompts and writes it back in place
func AddPrompts(metadataPath string, tables TableSource) error {
	ix, err := LoadIndex(metadataPath)
	if err != nil {
		return err
	}
	if err := JoinPrompts(ix, tables); err != nil {
		return err
	}
	return ix.Save(metadataPath)
}
