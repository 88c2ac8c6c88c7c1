// Package charts turns aggregated metrics into renderer-agnostic chart and
// table specifications. It carries no business logic; every builder accepts
// empty input and emits an explicit placeholder instead of failing.
package charts

import (
	"fmt"
	"strings"

	"dqportal/internal/metrics"
)

// Display markers for the availability cross-tab cells.
const (
	MarkAvailable   = "✔" // ✔
	MarkUnavailable = "✖" // ✖
)

// Placeholder texts shown instead of an empty chart.
const (
	NoDataText = "No data available"
)

// ChartSpec describes one chart independent of the rendering frontend.
// AuxiliaryValues carries the second series of a stacked chart; Placeholder,
// when set, tells the frontend to render the text instead of the chart.
type ChartSpec struct {
	Title           string    `json:"title"`
	Labels          []string  `json:"labels,omitempty"`
	Values          []float64 `json:"values,omitempty"`
	HoverText       []string  `json:"hoverText,omitempty"`
	AuxiliaryValues []float64 `json:"auxiliaryValues,omitempty"`
	Placeholder     string    `json:"placeholder,omitempty"`
}

// TableSpec is a rendered table: display cells with matching tooltip cells.
type TableSpec struct {
	Columns      []string   `json:"columns"`
	Rows         [][]string `json:"rows"`
	CellTooltips [][]string `json:"cellTooltips"`
	Placeholder  string     `json:"placeholder,omitempty"`
}

// SelectOrganisationText is the placeholder shown when no organisation has
// been selected for a variable-level chart.
func SelectOrganisationText(domain metrics.Domain) string {
	return fmt.Sprintf("Select an organisation to visualise variable %s", domain)
}

// DonutChart converts donut proportions into a chart spec. Slice hover text
// carries the relative share when the domain defines one.
func DonutChart(d metrics.DonutData) ChartSpec {
	spec := ChartSpec{Title: donutTitle(d.Domain, d.GroupBy)}
	if len(d.Slices) == 0 {
		spec.Placeholder = NoDataText
		return spec
	}

	for _, slice := range d.Slices {
		spec.Labels = append(spec.Labels, slice.Label)
		spec.Values = append(spec.Values, slice.Value)
		spec.HoverText = append(spec.HoverText, donutHover(d.Domain, slice))
		if slice.HasRelative {
			spec.AuxiliaryValues = append(spec.AuxiliaryValues, slice.Relative)
		}
	}
	return spec
}

func donutTitle(domain metrics.Domain, groupBy metrics.GroupBy) string {
	subject := map[metrics.Domain]string{
		metrics.Availability: "Sample size",
		metrics.Completeness: "Complete data points",
		metrics.Plausibility: "Plausible data points",
	}[domain]
	return fmt.Sprintf("%s per %s", subject, groupBy)
}

func donutHover(domain metrics.Domain, slice metrics.DonutSlice) string {
	switch domain {
	case metrics.Completeness:
		return fmt.Sprintf("%s: __%.0f__ complete data points  \n%.1f%% of the data is missing or unspecified",
			slice.Label, slice.Value, slice.Relative)
	case metrics.Plausibility:
		return fmt.Sprintf("%s: __%.0f__ plausible data points  \n%.1f%% of the data appears plausible",
			slice.Label, slice.Value, slice.Relative)
	default:
		return fmt.Sprintf("%s: __%.0f__", slice.Label, slice.Value)
	}
}

// StackedBars converts per-variable splits into a two-series stacked bar
// spec: Values carries the available share, AuxiliaryValues the unavailable
// share. Bars use the display proportions so near-zero splits stay visible;
// hover text reports the true counts per organisation.
func StackedBars(b metrics.VariableBars) ChartSpec {
	spec := ChartSpec{Title: fmt.Sprintf("Variable %s per organisation", b.Domain)}
	if len(b.Organisations) == 0 {
		spec.Placeholder = SelectOrganisationText(b.Domain)
		return spec
	}
	if len(b.Bars) == 0 {
		spec.Placeholder = NoDataText
		return spec
	}

	for _, bar := range b.Bars {
		spec.Labels = append(spec.Labels, bar.Name)
		spec.Values = append(spec.Values, bar.DisplayPctAvailable)
		spec.AuxiliaryValues = append(spec.AuxiliaryValues, bar.DisplayPctUnavailable)
		spec.HoverText = append(spec.HoverText, barHover(b, bar))
	}
	return spec
}

func barHover(b metrics.VariableBars, bar metrics.VariableBar) string {
	adjective := "complete"
	if b.Domain == metrics.Plausibility {
		adjective = "plausible"
	}

	lines := []string{fmt.Sprintf("__%s__", bar.Name)}
	if !bar.HasData {
		lines = append(lines, "No information available for this variable.")
		return strings.Join(lines, "  \n")
	}
	lines = append(lines, fmt.Sprintf("%.1f%% %s (%.0f of %.0f records)",
		bar.PctAvailable*100, adjective, bar.Available, bar.Available+bar.Unavailable))

	for _, org := range b.Organisations {
		detail := bar.PerOrg[org]
		if detail.Total() == 0 {
			lines = append(lines, fmt.Sprintf("%s: no information available", org))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %.0f of %.0f records %s",
			org, detail.Available, detail.Total(), adjective))
	}
	return strings.Join(lines, "  \n")
}

// AvailabilityTableSpec renders the availability cross-tab for display:
// per-organisation cells become check marks over the raw counts, the total
// column keeps the number, and every cell carries its markdown tooltip.
func AvailabilityTableSpec(t metrics.AvailabilityTable) TableSpec {
	spec := TableSpec{}
	if len(t.Rows) == 0 {
		spec.Placeholder = NoDataText
		return spec
	}

	spec.Columns = append(spec.Columns, "Variable")
	spec.Columns = append(spec.Columns, t.Organisations...)
	spec.Columns = append(spec.Columns, "Total")

	for i, row := range t.Rows {
		tooltip := t.Tooltips[i]

		label := row.Variable
		labelTooltip := tooltip.Variable
		if label == "" {
			// Value rows sit indented under their variable header.
			label = " " + row.Value
			labelTooltip = tooltip.Value
		}

		cells := []string{label}
		tips := []string{labelTooltip}
		for _, org := range t.Organisations {
			mark := MarkUnavailable
			if row.Counts[org] > 0 {
				mark = MarkAvailable
			}
			cells = append(cells, mark)
			tips = append(tips, tooltip.PerOrg[org])
		}
		cells = append(cells, fmt.Sprintf("%d", row.Total))
		tips = append(tips, tooltip.Total)

		spec.Rows = append(spec.Rows, cells)
		spec.CellTooltips = append(spec.CellTooltips, tips)
	}
	return spec
}

// SampleSizeBar renders each organisation's share of the total sample as one
// horizontal stacked bar.
func SampleSizeBar(shares []metrics.SampleShare, unit string) ChartSpec {
	spec := ChartSpec{Title: "Sample size distribution"}
	if len(shares) == 0 {
		spec.Placeholder = NoDataText
		return spec
	}

	for _, share := range shares {
		spec.Labels = append(spec.Labels, share.Organisation)
		spec.Values = append(spec.Values, share.Proportion)
		spec.HoverText = append(spec.HoverText, fmt.Sprintf("%s: __%d__ %ss (%.0f%%)",
			share.Organisation, share.SampleSize, unit, share.Proportion*100))
	}
	return spec
}
