package variant

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// RequiredInputColumns are the columns the validation stage needs in its
// input table.
var RequiredInputColumns = []string{"#CHROM", "POS", "REF", "ALT"}

// RequiredAnnotationColumns are the columns the annotation stage needs.
var RequiredAnnotationColumns = []string{"t_hgvs"}

// MissingColumnError reports a required column absent from an input table.
// It is raised before any row is processed.
type MissingColumnError struct {
	Column string
	Path   string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column %q missing from %s", e.Column, e.Path)
}

// MalformedInputError reports a file that could not be parsed as CSV.
type MalformedInputError struct {
	Path string
	Err  error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("cannot parse %s as CSV: %v", e.Path, e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// LoadRecords reads the raw variant table from path, checking that the
// coordinate columns are present before decoding any rows.
func LoadRecords(path string) ([]*Record, error) {
	data, err := readAndCheck(path, RequiredInputColumns)
	if err != nil {
		return nil, err
	}

	var rows []*Record
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, &MalformedInputError{Path: path, Err: err}
	}
	return rows, nil
}

// LoadAnnotated reads a validated variant table from path, checking that
// the transcript HGVS column is present before decoding any rows.
func LoadAnnotated(path string) ([]*Annotated, error) {
	data, err := readAndCheck(path, RequiredAnnotationColumns)
	if err != nil {
		return nil, err
	}

	var rows []*Annotated
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, &MalformedInputError{Path: path, Err: err}
	}
	return rows, nil
}

// WriteCSV serializes a slice of records to path. rows must be a slice of
// gocsv-taggable structs ([]*Record or []*Annotated).
func WriteCSV(path string, rows interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// readAndCheck loads the file and verifies the header row contains every
// required column.
func readAndCheck(path string, required []string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input table: %w", err)
	}

	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		return nil, &MalformedInputError{Path: path, Err: err}
	}

	present := make(map[string]bool, len(header))
	for _, name := range header {
		present[name] = true
	}
	for _, name := range required {
		if !present[name] {
			return nil, &MissingColumnError{Column: name, Path: path}
		}
	}
	return data, nil
}
