package dataset

import (
	"fmt"
	"io"
	"os"
	"strconv"
)

// Allocator hands out sequential image IDs for a single enumeration run
type Allocator struct {
	next int
}

// Next returns the next ID, starting at 0
func (a *Allocator) Next() int {
	id := a.next
	a.next++
	return id
}

// Count returns how many IDs were handed out
func (a *Allocator) Count() int {
	return a.next
}

// Key is the metadata key of an ID
func Key(id int) string {
	return strconv.Itoa(id)
}

// FileName is the flat dataset file name of an ID
func FileName(id int) string {
	return Key(id) + ImageExt
}

// CopyFile copies src to dst byte for byte and carries over the permission
// bits and modification time of src. dst is truncated if it exists.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source image: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source image: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create target image: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy image %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close target image: %w", err)
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set target mode: %w", err)
	}
	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set target times: %w", err)
	}
	return nil
}
