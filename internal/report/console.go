// Package report renders pipeline results as plain text.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/listenupapp/bookclusters/internal/catalog"
	"github.com/listenupapp/bookclusters/internal/features"
	"github.com/listenupapp/bookclusters/internal/profile"
	"github.com/listenupapp/bookclusters/internal/validate"
)

// printer remembers the first write error so callers can check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// Err returns the first write error, if any.
func (p *printer) Err() error {
	return p.err
}

// Console writes stage summaries for a human reader.
type Console struct {
	printer
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{printer{w: w}}
}

// Loaded summarizes the loaded record table.
func (c *Console) Loaded(t *catalog.Table) {
	c.printf("Successfully loaded data. Shape: (%d, %d)\n", t.Len(), len(t.Columns))
	c.printf("Columns: [%s]\n", strings.Join(t.Columns, ", "))
}

// Engineered summarizes the feature matrix.
func (c *Console) Engineered(m *features.Matrix) {
	rows, cols := m.Dims()
	c.printf("Features engineered. Shape: (%d, %d)\n", rows, cols)
	c.printf("Engineered features: [%s]\n", strings.Join(m.Columns, ", "))
}

// ClusteringScore prints the clustering cross-validation result.
func (c *Console) ClusteringScore(s validate.Score) {
	c.printf("Clustering Cross-Validation Results:\n")
	c.printf("Mean Silhouette Score: %.4f (+/- %.4f)\n", s.Mean, s.Std)
}

// RecommendationScore prints the recommendation cross-validation result.
func (c *Console) RecommendationScore(s validate.Score) {
	c.printf("Recommendation Cross-Validation Results:\n")
	c.printf("Mean Precision: %.4f (+/- %.4f)\n", s.Mean, s.Std)
}

// Clustered prints how many distinct clusters the labels use.
func (c *Console) Clustered(labels []int) {
	distinct := make(map[int]struct{})
	for _, l := range labels {
		distinct[l] = struct{}{}
	}
	c.printf("Clustering completed. Number of clusters: %d\n", len(distinct))
}

// Profiles prints every cluster profile in label order.
func (c *Console) Profiles(profiles map[int]profile.Profile) {
	c.printf("Cluster profiles created. Number of profiles: %d\n", len(profiles))
	for _, label := range profile.SortedLabels(profiles) {
		p := profiles[label]
		c.printf("Cluster %d:\n", label)
		c.printf("  Size: %d\n", p.Size)
		c.printf("  Top genres: %s\n", formatGenres(p.TopGenres))
		c.printf("  Most common narrative form: %s\n", p.NarrativeForm)
		c.printf("  Average lexile level: %s\n", p.AvgLexile)
		c.printf("\n")
	}
}

// Recommendations prints the titles of the recommended rows.
func (c *Console) Recommendations(t *catalog.Table, rows []int) {
	c.printf("Recommended books:\n")
	for _, row := range rows {
		title := t.Title(row)
		if title == "" {
			title = "(untitled)"
		}
		c.printf("%6s  %s\n", t.ID(row), title)
	}
}

func formatGenres(genres []profile.GenreCount) string {
	parts := make([]string, len(genres))
	for i, g := range genres {
		parts[i] = fmt.Sprintf("%s: %d", g.Genre, g.Count)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
