package prompts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const directCSV = `occupation,en,de
baker,A photo of the face of a baker.,Ein Foto vom Gesicht eines Bäckers.
pilot,A photo of the face of a pilot.,Ein Foto vom Gesicht eines Piloten.
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestReadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "magbig_occupations_direct.csv")
	writeFile(t, path, "\ufeff"+directCSV)

	table, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}

	if table.Name != "magbig_occupations_direct" {
		t.Errorf("Expected name magbig_occupations_direct, got %s", table.Name)
	}
	if !table.HasColumn(ColumnOccupation) {
		t.Error("Expected occupation column despite byte order mark")
	}
	if table.Len() != 2 {
		t.Errorf("Expected 2 rows, got %d", table.Len())
	}

	value, found, err := table.Lookup(ColumnOccupation, "pilot", ColumnGerman)
	if err != nil || !found {
		t.Fatalf("Lookup failed: found=%v err=%v", found, err)
	}
	if value != "Ein Foto vom Gesicht eines Piloten." {
		t.Errorf("Unexpected lookup value %q", value)
	}

	if _, err := table.Column("fr"); !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("Expected ErrColumnNotFound, got %v", err)
	}
}

func TestLookupFirstMatchWins(t *testing.T) {
	table := NewTable("t", ColumnOccupation, ColumnEnglish)
	table.Append("baker", "first")
	table.Append("baker", "second")

	value, found, err := table.Lookup(ColumnOccupation, "baker", ColumnEnglish)
	if err != nil || !found {
		t.Fatalf("Lookup failed: found=%v err=%v", found, err)
	}
	if value != "first" {
		t.Errorf("Expected first matching row, got %q", value)
	}
}

func TestWriteTableRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	table := NewTable("out", ColumnOccupation, ColumnGerman)
	table.Append("chef", "Ein Foto, mit \"Zitat\".")

	if err := table.WriteFile(path); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	loaded, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if diff := cmp.Diff(table.Rows, loaded.Rows); diff != "" {
		t.Errorf("Rows mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDataset(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "magbig_occupations_indirect.csv"), directCSV)
	writeFile(t, filepath.Join(dir, "magbig_occupations_direct.csv"), directCSV)
	writeFile(t, filepath.Join(dir, "bafis_occupations_groups.csv"), directCSV)
	writeFile(t, filepath.Join(dir, "magbig_notes.txt"), "ignored")

	tables, err := LoadDataset(LoadOptions{Dir: dir, Prefix: "magbig"})
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}
	var names []string
	for _, tb := range tables {
		names = append(names, tb.Name)
	}
	if diff := cmp.Diff([]string{"magbig_occupations_direct", "magbig_occupations_indirect"}, names); diff != "" {
		t.Errorf("Table mismatch (-want +got):\n%s", diff)
	}

	split, err := LoadDataset(LoadOptions{Dir: dir, Prefix: "magbig", Split: "indirect"})
	if err != nil {
		t.Fatalf("LoadDataset with split failed: %v", err)
	}
	if len(split) != 1 || split[0].Name != "magbig_occupations_indirect" {
		t.Errorf("Expected only the indirect table, got %d tables", len(split))
	}
}

func TestLoadDatasetMissingDir(t *testing.T) {
	if _, err := LoadDataset(LoadOptions{Dir: filepath.Join(t.TempDir(), "nope"), Prefix: "magbig"}); err == nil {
		t.Error("Expected error for missing data directory, got nil")
	}
}

func TestSampleIsDeterministic(t *testing.T) {
	table := NewTable("t", ColumnOccupation)
	for i := 0; i < 300; i++ {
		table.Append(string(rune('a' + i%26)))
	}

	a := table.Sample(TestFraction, 42)
	b := table.Sample(TestFraction, 42)

	if a.Len() != 3 {
		t.Errorf("Expected 3 sampled rows, got %d", a.Len())
	}
	if diff := cmp.Diff(a.Rows, b.Rows); diff != "" {
		t.Errorf("Samples differ (-a +b):\n%s", diff)
	}

	small := NewTable("s", ColumnOccupation)
	small.Append("only")
	if small.Sample(TestFraction, 1).Len() != 1 {
		t.Error("Expected at least one sampled row")
	}
}

func TestPluralizeGerman(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Piloten", "Piloten"},
		{"Direktors", "Direktoren"},
		{"Mechanikers", "Mechanikern"},
		{"Frisörs", "Frisörn"},
		{"Ingenieurs", "Ingenieuren"},
		{"Kaufmanns", "Kaufmännern"},
		{"Bankiers", "Bankieren"},
		{"CEO", "CEOs"},
		{"Elektrikerin", "Elektrikerin"},
		{"Erzieher", "Erziehern"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := PluralizeGerman(tt.input); got != tt.expected {
				t.Errorf("PluralizeGerman(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestPluralizeEnglish(t *testing.T) {
	if got := PluralizeEnglish("baker"); got != "bakers" {
		t.Errorf("Expected bakers, got %s", got)
	}
	if got := PluralizeEnglish("nurse"); got != "nurses" {
		t.Errorf("Expected nurses, got %s", got)
	}
}

type stubRefiner struct {
	plural string
	err    error
	calls  int
}

func (s *stubRefiner) RefineGermanPlural(ctx context.Context, singular, plural string) (string, error) {
	s.calls++
	return s.plural, s.err
}

func TestGroupPrompts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "direct.csv")
	writeFile(t, path, directCSV)
	direct, err := ReadTable(path)
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}

	groups, err := GroupPrompts(context.Background(), direct, nil)
	if err != nil {
		t.Fatalf("GroupPrompts failed: %v", err)
	}

	want := [][]string{
		{"baker", "A photo of the faces of a group of bakers.", "Ein Foto von den Gesichtern einer Gruppe von Bäckern."},
		{"pilot", "A photo of the faces of a group of pilots.", "Ein Foto von den Gesichtern einer Gruppe von Piloten."},
	}
	if diff := cmp.Diff(want, groups.Rows); diff != "" {
		t.Errorf("Group prompts mismatch (-want +got):\n%s", diff)
	}

	refiner := &stubRefiner{plural: "Bäckerinnen und Bäckern"}
	refined, err := GroupPrompts(context.Background(), direct, refiner)
	if err != nil {
		t.Fatalf("GroupPrompts with refiner failed: %v", err)
	}
	if refiner.calls != 2 {
		t.Errorf("Expected 2 refiner calls, got %d", refiner.calls)
	}
	if refined.Rows[0][2] != "Ein Foto von den Gesichtern einer Gruppe von Bäckerinnen und Bäckern." {
		t.Errorf("Expected refined plural, got %q", refined.Rows[0][2])
	}

	failing := &stubRefiner{err: errors.New("quota")}
	fallback, err := GroupPrompts(context.Background(), direct, failing)
	if err != nil {
		t.Fatalf("GroupPrompts with failing refiner failed: %v", err)
	}
	if fallback.Rows[0][2] != want[0][2] {
		t.Errorf("Expected rule-based plural on refiner error, got %q", fallback.Rows[0][2])
	}
}

func TestWriteReduced(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DirectTable+".csv"), directCSV)
	writeFile(t, filepath.Join(dir, IndirectTable+".csv"), directCSV)
	writeFile(t, filepath.Join(dir, DirectFeminineTable+".csv"), "occupation,de\nbaker,Ein Foto vom Gesicht einer Bäckerin.\n")
	writeFile(t, filepath.Join(dir, GermanGenderStarTable+".csv"), "occupation,de\nbaker,Ein Foto vom Gesicht eines*einer Bäcker*in.\n")

	written, err := WriteReduced(dir)
	if err != nil {
		t.Fatalf("WriteReduced failed: %v", err)
	}
	if len(written) != 4 {
		t.Fatalf("Expected 4 tables, got %d", len(written))
	}

	direct, err := ReadTable(filepath.Join(dir, "bafis_occupations_direct.csv"))
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if direct.Rows[0][1] != "A photo of a baker." || direct.Rows[0][2] != "Ein Foto eines Bäckers." {
		t.Errorf("Unexpected reduced row %v", direct.Rows[0])
	}

	feminine, err := ReadTable(filepath.Join(dir, "bafis_occupations_direct_feminine.csv"))
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if diff := cmp.Diff([]string{ColumnOccupation, ColumnGerman}, feminine.Columns); diff != "" {
		t.Errorf("Column mismatch (-want +got):\n%s", diff)
	}
	if feminine.Rows[0][1] != "Ein Foto einer Bäckerin." {
		t.Errorf("Unexpected reduced feminine prompt %q", feminine.Rows[0][1])
	}
}

func TestLanguageColumn(t *testing.T) {
	if LanguageColumn("german") != "de" || LanguageColumn("english") != "en" {
		t.Error("Unexpected language column mapping")
	}
}
