package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// listSeparator joins flattened list fields.
const listSeparator = ", "

// PreprocessReport lists declared fields that were absent from the table.
type PreprocessReport struct {
	SkippedListFields []string
	SkippedBoolFields []string
}

// Preprocess returns a copy of the table in which every missing or null value
// of a known column is "", every declared list field present in the table is
// a comma-joined string, and every declared boolean field present is 0 or 1.
// Declared fields the table does not carry are skipped and reported.
func Preprocess(t *Table) (*Table, PreprocessReport) {
	var report PreprocessReport

	records := make([]Record, len(t.Records))
	for i, src := range t.Records {
		dst := make(Record, len(t.Columns))
		for _, col := range t.Columns {
			v, ok := src[col]
			if !ok || v == nil {
				v = ""
			}
			dst[col] = v
		}
		records[i] = dst
	}
	out := &Table{Columns: append([]string(nil), t.Columns...), Records: records}

	for _, field := range ListFields {
		if !out.HasColumn(field) {
			report.SkippedListFields = append(report.SkippedListFields, field)
			continue
		}
		for _, r := range out.Records {
			r[field] = flattenList(r, field)
		}
	}

	for _, field := range BoolFields {
		if !out.HasColumn(field) {
			report.SkippedBoolFields = append(report.SkippedBoolFields, field)
			continue
		}
		for _, r := range out.Records {
			r[field] = toFlag(r[field])
		}
	}

	return out, report
}

// flattenList renders any value of a list field as one string. Scalars and
// objects that arrive where a list was expected keep their text form.
func flattenList(r Record, field string) string {
	switch v := r[field].(type) {
	case []any:
		return joinList(v)
	case []string:
		return strings.Join(v, listSeparator)
	default:
		return r.Text(field)
	}
}

func joinList(items []any) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case nil:
			continue
		case string:
			parts = append(parts, v)
		default:
			parts = append(parts, fmt.Sprint(v))
		}
	}
	return strings.Join(parts, listSeparator)
}

// NumericColumns returns, in sorted order, the declared numeric and boolean
// fields present in the table plus every other column whose non-empty values
// are all numbers. Text and list fields are never numeric.
func NumericColumns(t *Table) []string {
	selected := make(map[string]struct{})
	for _, field := range append(append([]string(nil), NumericFields...), BoolFields...) {
		if t.HasColumn(field) {
			selected[field] = struct{}{}
		}
	}

	excluded := make(map[string]struct{}, len(ListFields)+len(TextFields)+1)
	for _, f := range ListFields {
		excluded[f] = struct{}{}
	}
	for _, f := range TextFields {
		excluded[f] = struct{}{}
	}
	excluded[FieldID] = struct{}{}

	for _, col := range t.Columns {
		if _, skip := excluded[col]; skip {
			continue
		}
		if allNumeric(t, col) {
			selected[col] = struct{}{}
		}
	}

	columns := make([]string, 0, len(selected))
	for col := range selected {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}

func allNumeric(t *Table, col string) bool {
	found := false
	for _, r := range t.Records {
		v := r[col]
		if v == nil || v == "" {
			continue
		}
		if !isNumeric(v) {
			return false
		}
		found = true
	}
	return found
}
