package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/listenupapp/bookclusters/internal/profile"
)

const barWidth = 40

// Charts draws horizontal text bar charts.
type Charts struct {
	printer
}

// NewCharts creates a Charts writing to w.
func NewCharts(w io.Writer) *Charts {
	return &Charts{printer{w: w}}
}

// ClusterSizes charts the number of records per cluster.
func (c *Charts) ClusterSizes(profiles map[int]profile.Profile) {
	labels := profile.SortedLabels(profiles)
	names := make([]string, len(labels))
	values := make([]float64, len(labels))
	for i, l := range labels {
		names[i] = fmt.Sprintf("Cluster %d", l)
		values[i] = float64(profiles[l].Size)
	}
	c.bars("Cluster Sizes", names, values, "%.0f")
}

// GenreDistribution charts the most frequent genres of the whole table.
func (c *Charts) GenreDistribution(genres []profile.GenreCount) {
	names := make([]string, len(genres))
	values := make([]float64, len(genres))
	for i, g := range genres {
		names[i] = g.Genre
		values[i] = float64(g.Count)
	}
	c.bars(fmt.Sprintf("Top %d Genres", len(genres)), names, values, "%.0f")
}

// LexileByCluster tabulates reading levels per cluster. With no usable
// levels it prints a notice instead.
func (c *Charts) LexileByCluster(stats []profile.LexileStats) {
	c.printf("Lexile Level Distribution by Cluster\n")
	if len(stats) == 0 {
		c.printf("  No valid lexile levels; skipping.\n\n")
		return
	}
	c.printf("  %-10s %6s %8s %8s %8s %8s\n", "cluster", "count", "min", "median", "max", "mean")
	for _, s := range stats {
		c.printf("  %-10d %6d %8.1f %8.1f %8.1f %8.1f\n", s.Label, s.Count, s.Min, s.Median, s.Max, s.Mean)
	}
	c.printf("\n")
}

// FictionRatio charts the share of fiction titles per cluster.
func (c *Charts) FictionRatio(ratios []profile.FictionRatio) {
	names := make([]string, len(ratios))
	values := make([]float64, len(ratios))
	for i, r := range ratios {
		names[i] = fmt.Sprintf("Cluster %d", r.Label)
		values[i] = r.Ratio
	}
	c.bars("Fiction Ratio by Cluster", names, values, "%.2f")
}

func (c *Charts) bars(title string, names []string, values []float64, valueFormat string) {
	c.printf("%s\n", title)
	if len(values) == 0 {
		c.printf("  (no data)\n\n")
		return
	}

	width, peak := 0, 0.0
	for i, n := range names {
		width = max(width, utf8.RuneCountInString(n))
		peak = max(peak, values[i])
	}

	for i, n := range names {
		length := 0
		if peak > 0 {
			length = int(values[i] / peak * barWidth)
		}
		pad := strings.Repeat(" ", width-utf8.RuneCountInString(n))
		c.printf("  %s%s | %s "+valueFormat+"\n", n, pad, strings.Repeat("#", length), values[i])
	}
	c.printf("\n")
}
