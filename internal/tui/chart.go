package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/johan-st/datadeck/internal/dataset"
	"github.com/johan-st/datadeck/internal/grid"
)

const maxChartBuckets = 20

// chartBucket is one bar: a distinct column value and its row count.
type chartBucket struct {
	label string
	value any
	count int
}

// chartModel is a value-count bar chart over one column of the current
// view. Selecting a bar drills the grid down to its rows.
type chartModel struct {
	column  string
	total   int
	buckets []chartBucket
	cursor  int
}

// buildChart counts distinct values of column across the view, most
// frequent first. Ties break by label so the chart is stable across
// rebuilds.
func buildChart(column string, view []grid.ViewRow) *chartModel {
	counts := make(map[string]*chartBucket)
	for _, vr := range view {
		v := vr.Row[column]
		label := dataset.Format(v)
		if label == "" {
			label = "(empty)"
		}
		b, ok := counts[label]
		if !ok {
			b = &chartBucket{label: label, value: v}
			counts[label] = b
		}
		b.count++
	}

	buckets := make([]chartBucket, 0, len(counts))
	for _, b := range counts {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].count != buckets[j].count {
			return buckets[i].count > buckets[j].count
		}
		return buckets[i].label < buckets[j].label
	})
	if len(buckets) > maxChartBuckets {
		buckets = buckets[:maxChartBuckets]
	}

	return &chartModel{column: column, total: len(view), buckets: buckets}
}

func (c *chartModel) title() string {
	return c.column + " by count"
}

func (c *chartModel) moveCursor(delta int) {
	c.cursor += delta
	if c.cursor < 0 {
		c.cursor = 0
	}
	if c.cursor >= len(c.buckets) {
		c.cursor = len(c.buckets) - 1
	}
}

func (c *chartModel) selectedBucket() (chartBucket, bool) {
	if c.cursor < 0 || c.cursor >= len(c.buckets) {
		return chartBucket{}, false
	}
	return c.buckets[c.cursor], true
}

// renderChartPane draws the chart in place of the data grid.
func (a *App) renderChartPane(width, height int) string {
	c := a.chart

	if len(c.buckets) == 0 {
		return renderPaneWithTitle(dimItemStyle.Render(" No values to chart"), width, height, c.title(), true)
	}

	labelWidth := 0
	maxCount := 0
	for _, b := range c.buckets {
		if len(b.label) > labelWidth {
			labelWidth = len(b.label)
		}
		if b.count > maxCount {
			maxCount = b.count
		}
	}
	if labelWidth > width/3 {
		labelWidth = width / 3
	}

	// label · bar · count, inside the pane borders and padding
	countWidth := len(humanize.Comma(int64(maxCount)))
	barSpace := width - 4 - labelWidth - countWidth - 4
	if barSpace < 5 {
		barSpace = 5
	}

	var content strings.Builder
	for i, b := range c.buckets {
		barLen := b.count * barSpace / maxCount
		if barLen < 1 {
			barLen = 1
		}
		bar := strings.Repeat("█", barLen)

		label := fmt.Sprintf("%-*s", labelWidth, truncateString(b.label, labelWidth))
		count := fmt.Sprintf("%*s", countWidth, humanize.Comma(int64(b.count)))

		if i == c.cursor {
			content.WriteString(selectedItemStyle.Render("> " + label + " "))
			content.WriteString(chartSelectedBarStyle.Render(bar))
		} else {
			content.WriteString(chartLabelStyle.Render("  " + label + " "))
			content.WriteString(chartBarStyle.Render(bar))
		}
		content.WriteString(" " + dimItemStyle.Render(count))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(dimItemStyle.Render(fmt.Sprintf(
		"%s rows · Enter: drill down · p: pin · Esc: close", humanize.Comma(int64(c.total)))))

	return renderPaneWithTitle(content.String(), width, height, c.title(), true)
}
