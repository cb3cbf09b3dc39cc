package catalog

import (
	"log/slog"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/listenupapp/bookclusters/internal/errors"
)

// Loader reads the book metadata file.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger discards diagnostics.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{logger: logger}
}

// Load reads a JSON array of book objects from path.
//
// A missing file is a NOT_FOUND error. Malformed JSON is logged and returned
// as a MALFORMED_INPUT error with a nil table, so callers can abort before
// feature engineering without ever seeing a partial table.
func (l *Loader) Load(path string) (*Table, error) {
	start := time.Now()

	data, err := os.ReadFile(path) //#nosec G304 -- Catalog path is user input by design
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("catalog file not found: %s", path).WithCause(err)
		}
		return nil, errors.Wrapf(err, errors.CodeInternal, "read catalog %s", path)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		l.logger.Error("catalog is not a JSON array of objects",
			"path", path,
			"error", err,
		)
		return nil, errors.Wrapf(err, errors.CodeMalformedInput, "decode catalog %s", path)
	}

	records := make([]Record, len(raw))
	for i, r := range raw {
		if r == nil {
			r = map[string]any{}
		}
		records[i] = Record(r)
	}
	table := NewTable(records)

	l.logger.Info("catalog loaded",
		"path", path,
		"records", table.Len(),
		"columns", len(table.Columns),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return table, nil
}

// LoadAndPreprocess loads the catalog and runs Preprocess on it, logging
// every declared field the input did not carry.
func (l *Loader) LoadAndPreprocess(path string) (*Table, error) {
	table, err := l.Load(path)
	if err != nil {
		return nil, err
	}

	out, report := Preprocess(table)
	if len(report.SkippedListFields) > 0 {
		l.logger.Warn("list fields absent from catalog, skipped", "fields", report.SkippedListFields)
	}
	if len(report.SkippedBoolFields) > 0 {
		l.logger.Warn("boolean fields absent from catalog, skipped", "fields", report.SkippedBoolFields)
	}
	return out, nil
}
