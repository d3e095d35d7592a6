package server

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
)

// rawTable is a header-plus-rows view of a CSV file. The web layer works
// on raw tables because uploads may carry arbitrary extra columns that the
// typed variant records do not know about.
type rawTable struct {
	Header []string
	Rows   [][]string
}

func readRawCSV(r io.Reader) (*rawTable, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV")
	}
	return &rawTable{Header: records[0], Rows: records[1:]}, nil
}

func readRawFile(path string) (*rawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readRawCSV(f)
}

// columnIndex returns the index of a column, or -1.
func (t *rawTable) columnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// dropColumn removes a column and its values if present.
func (t *rawTable) dropColumn(name string) {
	idx := t.columnIndex(name)
	if idx < 0 {
		return
	}
	t.Header = append(t.Header[:idx], t.Header[idx+1:]...)
	for i, row := range t.Rows {
		if idx < len(row) {
			t.Rows[i] = append(row[:idx], row[idx+1:]...)
		}
	}
}

// insertPatientID prepends a Patient_ID column holding the same value for
// every row.
func (t *rawTable) insertPatientID(id string) {
	t.Header = append([]string{patientIDColumn}, t.Header...)
	for i, row := range t.Rows {
		t.Rows[i] = append([]string{id}, row...)
	}
}

// patientIDs returns the sorted unique values of the Patient_ID column.
func (t *rawTable) patientIDs() []string {
	idx := t.columnIndex(patientIDColumn)
	if idx < 0 {
		return nil
	}
	seen := map[string]bool{}
	var ids []string
	for _, row := range t.Rows {
		if idx >= len(row) || row[idx] == "" || seen[row[idx]] {
			continue
		}
		seen[row[idx]] = true
		ids = append(ids, row[idx])
	}
	sort.Strings(ids)
	return ids
}

// filterByPatientIDs keeps only rows whose Patient_ID is in selected. An
// empty selection keeps everything.
func (t *rawTable) filterByPatientIDs(selected []string) *rawTable {
	if len(selected) == 0 {
		return &rawTable{Header: t.Header, Rows: t.Rows}
	}
	idx := t.columnIndex(patientIDColumn)
	keep := map[string]bool{}
	for _, id := range selected {
		keep[id] = true
	}

	filtered := &rawTable{Header: t.Header}
	for _, row := range t.Rows {
		if idx >= 0 && idx < len(row) && keep[row[idx]] {
			filtered.Rows = append(filtered.Rows, row)
		}
	}
	return filtered
}

// write serializes the table to path.
func (t *rawTable) write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		return err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// appendTo appends the table's rows to an existing CSV, writing the header
// only when the file does not exist yet.
func (t *rawTable) appendTo(path string) error {
	_, statErr := os.Stat(path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newFile {
		if err := w.Write(t.Header); err != nil {
			return err
		}
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
