package prompts

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
)

// Prompt templates for the group split
const (
	EnglishGroupTemplate = "A photo of the faces of a group of {occupation}."
	GermanGroupTemplate  = "Ein Foto von den Gesichtern einer Gruppe von {occupation}."
)

// Table names read and written by the derivation commands
const (
	DirectTable           = "magbig_occupations_direct"
	IndirectTable         = "magbig_occupations_indirect"
	DirectFeminineTable   = "magbig_occupations_direct_feminine"
	GermanGenderStarTable = "magbig_occupations_german_gender_star"
	GroupsTable           = "bafis_occupations_groups"
)

// Strings removed from the face-centric prompts for the reduced splits
const (
	EnglishFacePhrase = "of the face "
	GermanFacePhrase  = "vom Gesicht "
)

var germanOccupationPattern = regexp.MustCompile(`^Ein Foto vom Gesicht eines (.*?)\.`)

// PluralRefiner corrects a rule-based German plural
type PluralRefiner interface {
	RefineGermanPlural(ctx context.Context, singular, plural string) (string, error)
}

// ExtractOccupations returns the distinct English occupations and, row by row,
// the German occupation named in each direct prompt ("" when the prompt does not match).
func ExtractOccupations(direct *Table) (english, german []string, err error) {
	occupations, err := direct.Column(ColumnOccupation)
	if err != nil {
		return nil, nil, err
	}
	seen := make(map[string]bool, len(occupations))
	for _, occ := range occupations {
		if occ == "" || seen[occ] {
			continue
		}
		seen[occ] = true
		english = append(english, occ)
	}

	prompts, err := direct.Column(ColumnGerman)
	if err != nil {
		return nil, nil, err
	}
	german = make([]string, len(prompts))
	for i, p := range prompts {
		if m := germanOccupationPattern.FindStringSubmatch(p); m != nil {
			german[i] = m[1]
		}
	}
	return english, german, nil
}

// GroupPrompts builds the group split from the direct prompts. When refiner is
// set every German plural is passed through it; refinement errors keep the rule-based form.
func GroupPrompts(ctx context.Context, direct *Table, refiner PluralRefiner) (*Table, error) {
	english, german, err := ExtractOccupations(direct)
	if err != nil {
		return nil, fmt.Errorf("failed to extract occupations: %w", err)
	}
	occupations, err := direct.Column(ColumnOccupation)
	if err != nil {
		return nil, err
	}

	out := NewTable(GroupsTable, ColumnOccupation, ColumnEnglish, ColumnGerman)
	n := min(len(occupations), len(english), len(german))
	for i := 0; i < n; i++ {
		engPlural := PluralizeEnglish(english[i])
		gerPlural := PluralizeGerman(german[i])

		if refiner != nil && german[i] != "" {
			refined, err := refiner.RefineGermanPlural(ctx, german[i], gerPlural)
			if err != nil {
				slog.Warn("Failed to refine German plural", "occupation", occupations[i], "plural", gerPlural, "err", err)
			} else if refined != "" {
				gerPlural = refined
			}
		}

		out.Append(
			occupations[i],
			strings.ReplaceAll(EnglishGroupTemplate, "{occupation}", engPlural),
			strings.ReplaceAll(GermanGroupTemplate, "{occupation}", gerPlural),
		)
	}
	return out, nil
}

// ReducedSplit removes the face phrases from both languages
func ReducedSplit(t *Table, name, englishPhrase, germanPhrase string) (*Table, error) {
	occupations, err := t.Column(ColumnOccupation)
	if err != nil {
		return nil, err
	}
	english, err := t.Column(ColumnEnglish)
	if err != nil {
		return nil, err
	}
	german, err := t.Column(ColumnGerman)
	if err != nil {
		return nil, err
	}

	out := NewTable(name, ColumnOccupation, ColumnEnglish, ColumnGerman)
	for i := range occupations {
		out.Append(
			occupations[i],
			strings.ReplaceAll(english[i], englishPhrase, ""),
			strings.ReplaceAll(german[i], germanPhrase, ""),
		)
	}
	return out, nil
}

// LanguageReducedSplit removes phrase from a single language column
func LanguageReducedSplit(t *Table, name, language, phrase string) (*Table, error) {
	occupations, err := t.Column(ColumnOccupation)
	if err != nil {
		return nil, err
	}
	values, err := t.Column(language)
	if err != nil {
		return nil, err
	}

	out := NewTable(name, ColumnOccupation, language)
	for i := range occupations {
		out.Append(occupations[i], strings.ReplaceAll(values[i], phrase, ""))
	}
	return out, nil
}

// ReducedName maps a magbig table to its reduced bafis counterpart
func ReducedName(name string) string {
	return strings.Replace(name, "magbig_", "bafis_", 1)
}

// WriteGroups derives bafis_occupations_groups.csv in dir
func WriteGroups(ctx context.Context, dir string, refiner PluralRefiner) (string, error) {
	direct, err := ReadTable(filepath.Join(dir, DirectTable+".csv"))
	if err != nil {
		return "", err
	}
	groups, err := GroupPrompts(ctx, direct, refiner)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, GroupsTable+".csv")
	if err := groups.WriteFile(path); err != nil {
		return "", err
	}
	return path, nil
}

// WriteReduced derives the four reduced bafis tables in dir and returns their paths
func WriteReduced(dir string) ([]string, error) {
	var written []string

	for _, name := range []string{DirectTable, IndirectTable} {
		t, err := ReadTable(filepath.Join(dir, name+".csv"))
		if err != nil {
			return written, err
		}
		reduced, err := ReducedSplit(t, ReducedName(name), EnglishFacePhrase, GermanFacePhrase)
		if err != nil {
			return written, fmt.Errorf("failed to reduce %s: %w", name, err)
		}
		path := filepath.Join(dir, reduced.Name+".csv")
		if err := reduced.WriteFile(path); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	for _, name := range []string{DirectFeminineTable, GermanGenderStarTable} {
		t, err := ReadTable(filepath.Join(dir, name+".csv"))
		if err != nil {
			return written, err
		}
		reduced, err := LanguageReducedSplit(t, ReducedName(name), ColumnGerman, GermanFacePhrase)
		if err != nil {
			return written, fmt.Errorf("failed to reduce %s: %w", name, err)
		}
		path := filepath.Join(dir, reduced.Name+".csv")
		if err := reduced.WriteFile(path); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	return written, nil
}
