package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MinSegments is the number of leading path segments that carry meaning:
// occupation/model/prompt_group/language. Deeper segments are ignored.
const MinSegments = 4

// ParseResult is the outcome of parsing one image directory.
// Exactly one of Parsed or Skipped is set.
type ParseResult struct {
	Parsed  *Record
	Skipped *Skip
}

// Skip explains why a directory does not yield records
type Skip struct {
	Reason string
}

// OK reports whether the path produced a record
func (r ParseResult) OK() bool {
	return r.Parsed != nil
}

// ParsePath maps the directory of an image, relative to the source root, onto
// a record. No content validation is done: segments are copied verbatim.
func ParsePath(rel string) ParseResult {
	parts := Segments(rel)
	if len(parts) < MinSegments {
		return ParseResult{Skipped: &Skip{
			Reason: fmt.Sprintf("path %q has %d segments, need %d", rel, len(parts), MinSegments),
		}}
	}
	return ParseResult{Parsed: &Record{
		Occupation:  parts[0],
		Model:       parts[1],
		PromptGroup: parts[2],
		Language:    parts[3],
	}}
}

// Segments splits a relative path into its components. The root itself ("." or "") has none.
func Segments(rel string) []string {
	rel = filepath.Clean(rel)
	if rel == "." || rel == "" {
		return nil
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
