package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"os"
)

// MetadataFile is the default name of the index written next to the images
const MetadataFile = "metadata.json"

// Record describes one enumerated image
type Record struct {
	Occupation  string
	Model       string
	PromptGroup string
	Language    string

	// Prompt is only serialized once the join pass has run (HasPrompt).
	// A nil Prompt after the join means the prompt group was not recognized.
	Prompt    *string
	HasPrompt bool
}

// SetPrompt records the outcome of the join pass
func (r *Record) SetPrompt(prompt *string) {
	r.Prompt = prompt
	r.HasPrompt = true
}

type recordFields struct {
	Occupation  string `json:"occupation"`
	Model       string `json:"model"`
	PromptGroup string `json:"prompt_group"`
	Language    string `json:"language"`
}

type joinedRecord struct {
	recordFields
	Prompt *string `json:"prompt"`
}

func (r Record) fields() recordFields {
	return recordFields{
		Occupation:  r.Occupation,
		Model:       r.Model,
		PromptGroup: r.PromptGroup,
		Language:    r.Language,
	}
}

// MarshalJSON writes fields in a fixed order and omits prompt before the join pass
func (r Record) MarshalJSON() ([]byte, error) {
	if !r.HasPrompt {
		return encodeJSON(r.fields())
	}
	return encodeJSON(joinedRecord{recordFields: r.fields(), Prompt: r.Prompt})
}

// UnmarshalJSON distinguishes a missing prompt from an explicit null
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw struct {
		recordFields
		Prompt json.RawMessage `json:"prompt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record{
		Occupation:  raw.Occupation,
		Model:       raw.Model,
		PromptGroup: raw.PromptGroup,
		Language:    raw.Language,
	}
	if raw.Prompt == nil {
		return nil
	}
	r.HasPrompt = true
	if string(raw.Prompt) == "null" {
		return nil
	}
	var prompt string
	if err := json.Unmarshal(raw.Prompt, &prompt); err != nil {
		return fmt.Errorf("invalid prompt: %w", err)
	}
	r.Prompt = &prompt
	return nil
}

// Index maps string IDs to records and remembers insertion order
type Index struct {
	keys    []string
	records map[string]*Record
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{records: make(map[string]*Record)}
}

// Add stores rec under the string form of id
func (ix *Index) Add(id int, rec Record) {
	ix.Set(Key(id), rec)
}

// Set stores rec under key. Replacing a key keeps its original position.
func (ix *Index) Set(key string, rec Record) {
	if _, exists := ix.records[key]; !exists {
		ix.keys = append(ix.keys, key)
	}
	r := rec
	ix.records[key] = &r
}

// Get returns the record stored under key
func (ix *Index) Get(key string) (*Record, bool) {
	r, ok := ix.records[key]
	return r, ok
}

// Len returns the number of records
func (ix *Index) Len() int {
	return len(ix.keys)
}

// Keys returns the keys in insertion order
func (ix *Index) Keys() []string {
	out := make([]string, len(ix.keys))
	copy(out, ix.keys)
	return out
}

// All iterates records in insertion order. Records may be modified in place.
func (ix *Index) All() iter.Seq2[string, *Record] {
	return func(yield func(string, *Record) bool) {
		for _, k := range ix.keys {
			if !yield(k, ix.records[k]) {
				return
			}
		}
	}
}

// MarshalJSON writes the records as an object whose keys keep insertion order
func (ix *Index) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range ix.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encodeJSON(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		rec, err := ix.records[k].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("failed to encode record %s: %w", k, err)
		}
		buf.Write(rec)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of records, keeping the document's key order
func (ix *Index) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("metadata must be a JSON object, got %v", tok)
	}

	*ix = *NewIndex()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected metadata key %v", tok)
		}
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("failed to decode record %s: %w", key, err)
		}
		ix.Set(key, rec)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// Save writes the index as indented UTF-8 JSON. Non-ASCII text is written as is.
func (ix *Index) Save(path string) error {
	compact, err := ix.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, compact, "", "  "); err != nil {
		return fmt.Errorf("failed to indent metadata: %w", err)
	}

	if err := os.WriteFile(path, out.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}
	return nil
}

// LoadIndex reads an index written by Save
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}
	ix := NewIndex()
	if err := ix.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("failed to decode metadata file %s: %w", path, err)
	}
	return ix, nil
}

// encodeJSON marshals v without escaping <, > and &
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
