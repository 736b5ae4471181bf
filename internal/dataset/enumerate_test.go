package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestEnumerateScenario(t *testing.T) {
	source := t.TempDir()
	target := filepath.Join(t.TempDir(), "images_dataset")

	leaf := filepath.Join(source, "baker", "dalle3", "magbig_occupations_direct", "de")
	writeFile(t, filepath.Join(leaf, "photo2.png"), "second")
	writeFile(t, filepath.Join(leaf, "photo1.png"), "first")

	summary, err := Enumerate(source, target, "")
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}

	if summary.Images != 2 {
		t.Errorf("Expected 2 images, got %d", summary.Images)
	}

	for name, content := range map[string]string{"0.png": "first", "1.png": "second"} {
		data, err := os.ReadFile(filepath.Join(target, name))
		if err != nil {
			t.Fatalf("Expected %s in target: %v", name, err)
		}
		if string(data) != content {
			t.Errorf("Expected %s to contain %q, got %q", name, content, data)
		}
	}

	ix, err := LoadIndex(filepath.Join(target, MetadataFile))
	if err != nil {
		t.Fatalf("LoadIndex failed: %v", err)
	}
	if diff := cmp.Diff([]string{"0", "1"}, ix.Keys()); diff != "" {
		t.Errorf("Key mismatch (-want +got):\n%s", diff)
	}

	want := Record{Occupation: "baker", Model: "dalle3", PromptGroup: "magbig_occupations_direct", Language: "de"}
	for _, key := range ix.Keys() {
		rec, _ := ix.Get(key)
		if *rec != want {
			t.Errorf("Record %s: expected %+v, got %+v", key, want, *rec)
		}
	}
}

func TestEnumerateSkipsShallowPaths(t *testing.T) {
	source := t.TempDir()
	target := t.TempDir()

	writeFile(t, filepath.Join(source, "stray.png"), "x")
	writeFile(t, filepath.Join(source, "baker", "dalle3", "group", "loose.png"), "x")
	writeFile(t, filepath.Join(source, "baker", "dalle3", "group", "en", "ok.png"), "x")
	writeFile(t, filepath.Join(source, "baker", "dalle3", "group", "en", "deep", "also.png"), "x")

	summary, err := Enumerate(source, target, "")
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}

	if summary.Images != 2 {
		t.Errorf("Expected 2 images, got %d", summary.Images)
	}
	if summary.Skipped != 2 {
		t.Errorf("Expected 2 skipped files, got %d", summary.Skipped)
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		t.Fatalf("Failed to read target: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if diff := cmp.Diff([]string{"0.png", "1.png", MetadataFile}, names); diff != "" {
		t.Errorf("Target contents mismatch (-want +got):\n%s", diff)
	}

	deep, _ := summary.Index.Get("1")
	if deep.Language != "en" {
		t.Errorf("Expected deep record language en, got %s", deep.Language)
	}
}

func TestEnumerateIsDeterministic(t *testing.T) {
	source := t.TempDir()
	for _, p := range []string{
		"nurse/sd3/magbig_occupations_indirect/en/b.png",
		"nurse/sd3/magbig_occupations_indirect/en/a.png",
		"baker/dalle3/magbig_occupations_direct/de/x.png",
		"baker/dalle3/bafis_occupations_groups/en/y.png",
	} {
		writeFile(t, filepath.Join(source, filepath.FromSlash(p)), p)
	}

	first, err := Enumerate(source, t.TempDir(), "")
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	second, err := Enumerate(source, t.TempDir(), "")
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	a, _ := first.Index.MarshalJSON()
	b, _ := second.Index.MarshalJSON()
	if string(a) != string(b) {
		t.Errorf("Runs differ:\n%s\n%s", a, b)
	}

	rec, _ := first.Index.Get("0")
	if rec.PromptGroup != "bafis_occupations_groups" {
		t.Errorf("Expected lexical walk order to start with bafis group, got %s", rec.PromptGroup)
	}
}

func TestEnumerateMissingSource(t *testing.T) {
	_, err := Enumerate(filepath.Join(t.TempDir(), "missing"), t.TempDir(), "")
	if err == nil {
		t.Error("Expected error for missing source, got nil")
	}
}

func TestCopyFilePreservesModTime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	dst := filepath.Join(dir, "dst.png")
	writeFile(t, src, "pixels")

	stamp := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := os.Chtimes(src, stamp, stamp); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}

	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if !info.ModTime().Equal(stamp) {
		t.Errorf("Expected mod time %v, got %v", stamp, info.ModTime())
	}
}

func TestAllocator(t *testing.T) {
	var a Allocator
	for want := 0; want < 3; want++ {
		if got := a.Next(); got != want {
			t.Errorf("Expected ID %d, got %d", want, got)
		}
	}
	if a.Count() != 3 {
		t.Errorf("Expected count 3, got %d", a.Count())
	}
	if FileName(7) != "7.png" {
		t.Errorf("Expected 7.png, got %s", FileName(7))
	}
}
