package generation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const imageExt = ".png"

var nameReplacer = strings.NewReplacer(" ", "_", ",", "", ".", "")

// BaseName turns a prompt into an image file name
func BaseName(prompt string) string {
	return nameReplacer.Replace(prompt) + imageExt
}

// ImageName numbers the i-th (zero based) of n images; a single image keeps the base name
func ImageName(base string, i, n int) string {
	if n <= 1 {
		return base
	}
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(base, imageExt), i+1, imageExt)
}

// ImageDir is the leaf directory images for one prompt are stored in
func ImageDir(dest, occupation, modelDir, split, lang string) string {
	return filepath.Join(dest, occupation, modelDir, split, lang)
}

// UniquePath returns dir/name, or inserts _<unix seconds> before the extension
// when that file already exists. A further collision appends a counter.
func UniquePath(dir, name string, now time.Time) string {
	path := filepath.Join(dir, name)
	if !exists(path) {
		return path
	}

	stem := fmt.Sprintf("%s_%d", strings.TrimSuffix(name, imageExt), now.Unix())
	path = filepath.Join(dir, stem+imageExt)
	for k := 1; exists(path); k++ {
		path = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, k, imageExt))
	}
	return path
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
