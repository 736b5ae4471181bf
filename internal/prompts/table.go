package prompts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Column names shared by every prompt table
const (
	ColumnOccupation = "occupation"
	ColumnEnglish    = "en"
	ColumnGerman     = "de"
)

// ErrColumnNotFound is returned when a table lacks a requested column
var ErrColumnNotFound = errors.New("column not found")

// Table is an in-memory CSV prompt table. The first CSV row is the header.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string

	index map[string]int
}

// NewTable creates an empty table with the given header
func NewTable(name string, columns ...string) *Table {
	t := &Table{
		Name:    name,
		Columns: columns,
	}
	t.reindex()
	return t
}

func (t *Table) reindex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		// first occurrence wins on duplicate headers
		if _, ok := t.index[c]; !ok {
			t.index[c] = i
		}
	}
}

// ReadTable loads a CSV file. The table name is the file name without extension.
func ReadTable(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prompt table: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt table %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("prompt table %s has no header row", path)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := NewTable(TableName(path), header...)
	t.Rows = records[1:]
	return t, nil
}

// TableName strips directory and extension from a table file path
func TableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// WriteFile writes the table as CSV, header first
func (t *Table) WriteFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create prompt table: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return file.Close()
}

// HasColumn reports whether the header contains name
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Append adds a row; values are matched positionally to Columns
func (t *Table) Append(values ...string) {
	t.Rows = append(t.Rows, values)
}

// Column returns every value of the named column. Short rows yield "".
func (t *Table) Column(name string) ([]string, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrColumnNotFound, name, t.Name)
	}
	values := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		if i < len(row) {
			values[r] = row[i]
		}
	}
	return values, nil
}

// Lookup returns the value of column in the first row whose key column equals key.
// found is false when no row matches.
func (t *Table) Lookup(keyColumn, key, column string) (value string, found bool, err error) {
	k, ok := t.index[keyColumn]
	if !ok {
		return "", false, fmt.Errorf("%w: %q in %s", ErrColumnNotFound, keyColumn, t.Name)
	}
	c, ok := t.index[column]
	if !ok {
		return "", false, fmt.Errorf("%w: %q in %s", ErrColumnNotFound, column, t.Name)
	}
	for _, row := range t.Rows {
		if k < len(row) && row[k] == key {
			if c < len(row) {
				return row[c], true, nil
			}
			return "", true, nil
		}
	}
	return "", false, nil
}
