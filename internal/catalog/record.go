// Package catalog holds the Book Record table: loading it from JSON,
// preprocessing its semi-structured fields, and coercing numeric values.
package catalog

import (
	"fmt"
	"sort"
	"strconv"
)

// Well-known field names.
const (
	FieldID            = "id"
	FieldTitle         = "title"
	FieldGenre         = "genre"
	FieldNarrativeForm = "narrativeForm"
	FieldLexileLevel   = "lexileLevel"
	FieldIsFiction     = "isFiction"
)

// ListFields are sequence-valued fields flattened to one comma-joined string.
//
//nolint:gochecknoglobals // Static field table
var ListFields = []string{
	"creators", "characterEthnicity", "characterGenderIdentity", "characterRaceCulture",
	"characterReligion", "characterSexualOrientation", "Awards", "contentWarning",
	"genre", "historicalEvents", "InternationalAwards", "literaryDevices", "modesOfWriting",
	"subject", "textFeatures", "textStructure", "topic", "tags",
}

// BoolFields are flags stored as 0/1 after preprocessing.
//
//nolint:gochecknoglobals // Static field table
var BoolFields = []string{"isFiction", "isNonFiction", "isBlended", "hasMultiplePov", "hasUnreliableNarrative"}

// TextFields are the free-text fields vectorized with TF-IDF.
//
//nolint:gochecknoglobals // Static field table
var TextFields = []string{"synopsis", "subject", "topic"}

// NumericFields are nominally numeric fields that may hold non-numeric text.
//
//nolint:gochecknoglobals // Static field table
var NumericFields = []string{"lexileLevel", "seriesBookNumber"}

// Record is one catalog item keyed by field name.
// Values are whatever the JSON decoder produced until Preprocess runs.
type Record map[string]any

// Text returns the field as a string. Missing and nil values are "".
func (r Record) Text(field string) string {
	switch v := r[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Number coerces the field to a float. The second result is false when the
// value is missing or not numeric.
func (r Record) Number(field string) (float64, bool) {
	return ToFloat(r[field])
}

// Table is an ordered set of Book Records. Row position is the record's
// identity throughout the pipeline: feature rows, cluster labels, and
// recommendation results all refer back to it.
type Table struct {
	Columns []string
	Records []Record
}

// NewTable builds a table whose columns are the sorted union of every record's keys.
func NewTable(records []Record) *Table {
	seen := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for k := range seen {
		columns = append(columns, k)
	}
	sort.Strings(columns)
	return &Table{Columns: columns, Records: records}
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// HasColumn reports whether any record carries the field.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// ID returns the record's explicit id, or its row position when it has none.
func (t *Table) ID(row int) string {
	if id := t.Records[row].Text(FieldID); id != "" {
		return id
	}
	return strconv.Itoa(row)
}

// Title returns the record's title.
func (t *Table) Title(row int) string {
	return t.Records[row].Text(FieldTitle)
}

// Subset returns the records at the given rows, in that order.
// Records are shared, not copied.
func (t *Table) Subset(rows []int) *Table {
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = t.Records[row]
	}
	return &Table{Columns: t.Columns, Records: records}
}
