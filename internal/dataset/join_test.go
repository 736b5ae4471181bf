package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const directTable = `occupation,en,de
baker,A photo of the face of a baker.,Ein Foto vom Gesicht eines Bäckers.
nurse,A photo of the face of a nurse.,Ein Foto vom Gesicht eines Krankenpflegers.
`

func newFixtureTables(t *testing.T) (string, *TableCache) {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "magbig_occupations_direct.csv"), directTable)
	writeFile(t, filepath.Join(dir, "magbig_occupations_direct_feminine.csv"), "occupation,de\nbaker,Ein Foto vom Gesicht einer Bäckerin.\n")

	tables, err := NewTableCache(dir)
	if err != nil {
		t.Fatalf("NewTableCache failed: %v", err)
	}
	return dir, tables
}

func TestLookupPrompt(t *testing.T) {
	_, tables := newFixtureTables(t)

	tests := []struct {
		name     string
		record   Record
		expected *string
		err      error
	}{
		{
			name:     "german column",
			record:   Record{Occupation: "baker", PromptGroup: "magbig_occupations_direct", Language: "de"},
			expected: ptr("Ein Foto vom Gesicht eines Bäckers."),
		},
		{
			name:     "english column",
			record:   Record{Occupation: "nurse", PromptGroup: "magbig_occupations_direct", Language: "en"},
			expected: ptr("A photo of the face of a nurse."),
		},
		{
			name:     "unrecognized group yields null",
			record:   Record{Occupation: "baker", PromptGroup: "magbig_occupations_german_gender_star", Language: "de"},
			expected: nil,
		},
		{
			name:   "unknown occupation",
			record: Record{Occupation: "astronaut", PromptGroup: "magbig_occupations_direct", Language: "de"},
			err:    ErrOccupationNotFound,
		},
		{
			name:   "occupation match is exact",
			record: Record{Occupation: "Baker", PromptGroup: "magbig_occupations_direct", Language: "de"},
			err:    ErrOccupationNotFound,
		},
		{
			name:   "missing language column",
			record: Record{Occupation: "baker", PromptGroup: "magbig_occupations_direct_feminine", Language: "en"},
			err:    ErrLanguageColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LookupPrompt(tt.record, tables)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("Expected error %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LookupPrompt failed: %v", err)
			}
			switch {
			case tt.expected == nil && got != nil:
				t.Errorf("Expected nil prompt, got %q", *got)
			case tt.expected != nil && (got == nil || *got != *tt.expected):
				t.Errorf("Expected %q, got %v", *tt.expected, got)
			}
		})
	}
}

func TestLookupPromptMissingTable(t *testing.T) {
	tables, err := NewTableCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewTableCache failed: %v", err)
	}

	rec := Record{Occupation: "baker", PromptGroup: "magbig_occupations_indirect", Language: "de"}
	if _, err := LookupPrompt(rec, tables); err == nil {
		t.Error("Expected error for missing lookup table, got nil")
	}
}

func TestTableCacheReusesTables(t *testing.T) {
	dir, tables := newFixtureTables(t)

	if _, err := tables.Table("magbig_occupations_direct"); err != nil {
		t.Fatalf("Table failed: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, "magbig_occupations_direct.csv")); err != nil {
		t.Fatalf("Failed to remove table: %v", err)
	}
	if _, err := tables.Table("magbig_occupations_direct"); err != nil {
		t.Errorf("Expected cached table after removal, got %v", err)
	}
}

func TestAddPrompts(t *testing.T) {
	_, tables := newFixtureTables(t)
	path := filepath.Join(t.TempDir(), MetadataFile)

	ix := NewIndex()
	ix.Add(0, Record{Occupation: "baker", Model: "dalle3", PromptGroup: "magbig_occupations_direct", Language: "de"})
	ix.Add(1, Record{Occupation: "baker", Model: "dalle3", PromptGroup: "something_else", Language: "de"})
	if err := ix.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := AddPrompts(path, tables); err != nil {
		t.Fatalf("AddPrompts failed: %v", err)
	}

	loaded, err := LoadIndex(path)
	if err != nil {
		t.Fatalf("LoadIndex failed: %v", err)
	}

	first, _ := loaded.Get("0")
	if first.Prompt == nil || *first.Prompt != "Ein Foto vom Gesicht eines Bäckers." {
		t.Errorf("Expected german prompt on record 0, got %+v", first)
	}
	second, _ := loaded.Get("1")
	if !second.HasPrompt || second.Prompt != nil {
		t.Errorf("Expected null prompt on record 1, got %+v", second)
	}
}

func TestAddPromptsAbortsWithoutWriting(t *testing.T) {
	_, tables := newFixtureTables(t)
	path := filepath.Join(t.TempDir(), MetadataFile)

	ix := NewIndex()
	ix.Add(0, Record{Occupation: "astronaut", Model: "dalle3", PromptGroup: "magbig_occupations_direct", Language: "de"})
	if err := ix.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	before, _ := os.ReadFile(path)

	err := AddPrompts(path, tables)
	if !errors.Is(err, ErrOccupationNotFound) {
		t.Fatalf("Expected ErrOccupationNotFound, got %v", err)
	}

	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Error("Expected metadata file to be left untouched")
	}
}

func ptr(s string) *string {
	return &s
}
