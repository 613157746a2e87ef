package importer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// field is a semantic column of an upload.
type field int

const (
	fieldSKU field = iota
	fieldName
	fieldDescription
	fieldCost
	fieldQuantity
	fieldCategory
	fieldStorage
	fieldVariant
	fieldStatus
)

// columnSpec locates a field: by any of names when the table has a header,
// otherwise by position.
type columnSpec struct {
	field    field
	names    []string
	position int
}

// layout maps each field to a cell index for one table; -1 means absent.
// It is resolved once per file.
type layout map[field]int

func resolveLayout(t *Table, cols []columnSpec) layout {
	l := make(layout, len(cols))
	for _, s := range cols {
		if t.HasHeader() {
			l[s.field] = headerIndex(t.Header, s.names...)
		} else {
			l[s.field] = s.position
		}
	}
	return l
}

func (l layout) cell(rec Record, f field) string {
	idx, ok := l[f]
	if !ok {
		return ""
	}
	return rec.Cell(idx)
}

// headerIndex returns the position of the first header matching any name
// case-insensitively, or -1.
func headerIndex(header []string, names ...string) int {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		for i, h := range header {
			if strings.EqualFold(h, name) {
				return i
			}
		}
	}
	return -1
}

// Number is a cell that should hold a number. OK is false when Raw is
// empty or does not parse; the validator decides what that means.
type Number struct {
	Raw   string
	Value float64
	OK    bool
}

func parseNumber(raw string) Number {
	raw = strings.TrimSpace(raw)
	v, err := strconv.ParseFloat(raw, 64)
	return Number{
		Raw:   raw,
		Value: v,
		OK:    err == nil && !math.IsNaN(v) && !math.IsInf(v, 0),
	}
}

// Count is a cell that should hold a whole quantity.
type Count struct {
	Raw   string
	Value int
	OK    bool
}

var countPattern = regexp.MustCompile(`^([+-]?\d+)(\.\d*)?$`)

// parseCount accepts plain decimal notation only and truncates any
// fractional part toward zero. Values outside the int32 range do not parse.
func parseCount(raw string) Count {
	raw = strings.TrimSpace(raw)
	m := countPattern.FindStringSubmatch(raw)
	if m == nil {
		return Count{Raw: raw}
	}
	v, err := strconv.ParseInt(m[1], 10, 32)
	if err != nil {
		return Count{Raw: raw}
	}
	return Count{Raw: raw, Value: int(v), OK: true}
}

// Draft is one extracted row: strings trimmed, numbers attempted but not
// yet range-checked.
type Draft struct {
	Line        int
	SKU         string
	Name        string
	Description string
	Category    string
	Storage     string
	Variant     string
	Status      string
	Cost        Number
	Quantity    Count
}

func (l layout) extract(rec Record) Draft {
	return Draft{
		Line:        rec.Line,
		SKU:         l.cell(rec, fieldSKU),
		Name:        l.cell(rec, fieldName),
		Description: l.cell(rec, fieldDescription),
		Category:    l.cell(rec, fieldCategory),
		Storage:     l.cell(rec, fieldStorage),
		Variant:     l.cell(rec, fieldVariant),
		Status:      l.cell(rec, fieldStatus),
		Cost:        parseNumber(l.cell(rec, fieldCost)),
		Quantity:    parseCount(l.cell(rec, fieldQuantity)),
	}
}

// ColumnMapping names the columns holding the SKU and quantity of a bulk
// update file.
type ColumnMapping struct {
	SKU      string `json:"sku"`
	Quantity string `json:"quantity"`
}

// Default mapping column names.
const (
	DefaultSKUColumn      = "SKU"
	DefaultQuantityColumn = "Quantity"
)

func (m ColumnMapping) withDefaults() ColumnMapping {
	if strings.TrimSpace(m.SKU) == "" {
		m.SKU = DefaultSKUColumn
	}
	if strings.TrimSpace(m.Quantity) == "" {
		m.Quantity = DefaultQuantityColumn
	}
	return m
}

// updateLayout prepares a table for a bulk update. A spreadsheet whose first
// row names both mapped columns has that row stripped and used to locate
// them; otherwise SKU is read from the first column and quantity from the
// second.
func updateLayout(t *Table, m ColumnMapping) layout {
	if t.Kind == Positional && len(t.Records) > 0 {
		first := trimAll(t.Records[0].Cells)
		if headerIndex(first, m.SKU) >= 0 && headerIndex(first, m.Quantity) >= 0 {
			t.stripHeader()
		}
	}
	return resolveLayout(t, []columnSpec{
		{field: fieldSKU, names: []string{m.SKU}, position: 0},
		{field: fieldQuantity, names: []string{m.Quantity}, position: 1},
	})
}

// ImportHeaders is the required column order of an initial import file.
var ImportHeaders = []string{"SKU", "Name", "Description", "Cost", "Quantity"}

var importColumns = []columnSpec{
	{field: fieldSKU, names: []string{"SKU"}, position: 0},
	{field: fieldName, names: []string{"Name"}, position: 1},
	{field: fieldDescription, names: []string{"Description"}, position: 2},
	{field: fieldCost, names: []string{"Cost", "Cost Price"}, position: 3},
	{field: fieldQuantity, names: []string{"Quantity"}, position: 4},
	{field: fieldCategory, names: []string{"Category"}, position: 5},
	{field: fieldStorage, names: []string{"Storage", "Storage Location"}, position: 6},
	{field: fieldVariant, names: []string{"Variant"}, position: 7},
	{field: fieldStatus, names: []string{"Status"}, position: 8},
}

// isImportHeader reports whether cells start with ImportHeaders.
func isImportHeader(cells []string) bool {
	if len(cells) < len(ImportHeaders) {
		return false
	}
	for i, h := range ImportHeaders {
		if !strings.EqualFold(strings.TrimSpace(cells[i]), h) {
			return false
		}
	}
	return true
}
