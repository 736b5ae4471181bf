package images

import (
	"fmt"
	"image"
	"image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
)

// ThumbnailSize bounds both sides of a compressed image
const ThumbnailSize = 128

// CompressStats summarizes a Compress run
type CompressStats struct {
	Images      int
	Failed      int
	SourceBytes int64
	TargetBytes int64
}

func (s CompressStats) String() string {
	return fmt.Sprintf("Compressed %d images (%d failed): %s -> %s",
		s.Images, s.Failed, humanize.Bytes(uint64(s.SourceBytes)), humanize.Bytes(uint64(s.TargetBytes)))
}

// Thumbnail scales img down to fit in size x size, keeping the aspect ratio.
// Images already within bounds are returned unchanged.
func Thumbnail(img image.Image, size int) image.Image {
	b := img.Bounds()
	if b.Dx() <= size && b.Dy() <= size {
		return img
	}
	return imaging.Fit(img, size, size, imaging.Lanczos)
}

// ThumbnailPath swaps the extension of path for a lower-case .png
func ThumbnailPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
}

// Compress mirrors every .png under sourceDir into targetDir as a thumbnail.
// Images that cannot be decoded are logged and counted as failed.
func Compress(sourceDir, targetDir string) (CompressStats, error) {
	var stats CompressStats

	info, err := os.Stat(sourceDir)
	if err != nil {
		return stats, fmt.Errorf("failed to stat source directory: %w", err)
	}
	if !info.IsDir() {
		return stats, fmt.Errorf("source %s is not a directory", sourceDir)
	}

	err = filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(targetDir, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !strings.EqualFold(filepath.Ext(path), ".png") {
			return nil
		}

		target = ThumbnailPath(target)

		srcInfo, err := d.Info()
		if err != nil {
			return err
		}

		img, err := imaging.Open(path)
		if err != nil {
			slog.Warn("Failed to open image", "path", path, "err", err)
			stats.Failed++
			return nil
		}
		if err := imaging.Save(Thumbnail(img, ThumbnailSize), target, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
			return fmt.Errorf("failed to save thumbnail %s: %w", target, err)
		}

		dstInfo, err := os.Stat(target)
		if err != nil {
			return err
		}
		stats.Images++
		stats.SourceBytes += srcInfo.Size()
		stats.TargetBytes += dstInfo.Size()
		slog.Debug("Compressed image", "path", rel, "from", humanize.Bytes(uint64(srcInfo.Size())), "to", humanize.Bytes(uint64(dstInfo.Size())))
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("failed to compress %s: %w", sourceDir, err)
	}
	return stats, nil
}
