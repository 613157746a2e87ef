package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Upload is a file handed over by the UI: its name, declared MIME type and
// raw content (base64 in JSON).
type Upload struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Content []byte `json:"contentBase64"`
}

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeCSV  = "text/csv"
)

// TableKind tells how the cells of a table's records are addressed.
type TableKind int

const (
	// Positional tables come from spreadsheets: cells are addressed by
	// column position and a header row may or may not be present.
	Positional TableKind = iota
	// Keyed tables come from CSV: the first line is always a header and
	// cells are addressed by header name.
	Keyed
)

func (k TableKind) String() string {
	if k == Keyed {
		return "keyed"
	}
	return "positional"
}

// Record is one non-blank data row with its 1-based line number in the file.
type Record struct {
	Line  int
	Cells []string
}

// Cell returns the trimmed cell at index i, or "" when out of range.
func (r Record) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return strings.TrimSpace(r.Cells[i])
}

// Table is a parsed upload. The kind is fixed once per file.
type Table struct {
	Kind    TableKind
	Header  []string
	Records []Record
	// Problems are non-fatal parse errors reported by the CSV reader.
	Problems []string
}

// HasHeader reports whether a header row was found.
func (t *Table) HasHeader() bool {
	return t.Header != nil
}

// stripHeader promotes the first record of a positional table to header.
func (t *Table) stripHeader() {
	if len(t.Records) == 0 {
		return
	}
	t.Header = trimAll(t.Records[0].Cells)
	t.Records = t.Records[1:]
}

// ReadTable parses an upload as xlsx (first sheet only) or CSV, chosen by
// the declared type or the file extension.
func ReadTable(u Upload) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(u.Name))
	switch {
	case u.Type == mimeXLSX || ext == ".xlsx":
		return readXLSX(u.Content)
	case u.Type == mimeCSV || ext == ".csv":
		return readCSV(u.Content)
	}

	what := u.Type
	if what == "" {
		what = u.Name
	}
	return nil, fmt.Errorf("unsupported file type: %s", what)
}

func readXLSX(content []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}

	t := &Table{Kind: Positional}
	for i, cells := range rows {
		if blank(cells) {
			continue
		}
		t.Records = append(t.Records, Record{Line: i + 1, Cells: cells})
	}
	return t, nil
}

func readCSV(content []byte) (*Table, error) {
	// Spreadsheet exports often carry a byte order mark or are UTF-16.
	decoded := transform.NewReader(bytes.NewReader(content),
		unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	r := csv.NewReader(decoded)
	r.FieldsPerRecord = -1

	t := &Table{Kind: Keyed}
	for {
		cells, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				if t.Header == nil {
					return nil, fmt.Errorf("reading CSV header: %w", err)
				}
				t.Problems = append(t.Problems, pe.Error())
				continue
			}
			return nil, fmt.Errorf("reading CSV: %w", err)
		}

		if t.Header == nil {
			t.Header = trimAll(cells)
			continue
		}
		if blank(cells) {
			continue
		}
		line, _ := r.FieldPos(0)
		t.Records = append(t.Records, Record{Line: line, Cells: cells})
	}

	if t.Header == nil {
		return nil, errors.New("CSV file is empty")
	}
	return t, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}
