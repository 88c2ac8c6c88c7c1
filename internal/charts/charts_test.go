package charts

import (
	"strings"
	"testing"

	"dqportal/internal/metrics"
)

func TestDonutChart(t *testing.T) {
	spec := DonutChart(metrics.DonutData{
		Domain:  metrics.Completeness,
		GroupBy: metrics.ByOrganisation,
		Slices: []metrics.DonutSlice{
			{Label: "OrgA", Value: 18, Relative: 21.7, HasRelative: true},
			{Label: "OrgB", Value: 6, Relative: 0, HasRelative: true},
		},
	})

	if spec.Placeholder != "" {
		t.Fatalf("Placeholder = %q, want none", spec.Placeholder)
	}
	if spec.Title != "Complete data points per organisation" {
		t.Errorf("Title = %q", spec.Title)
	}
	if len(spec.Labels) != 2 || spec.Labels[0] != "OrgA" {
		t.Errorf("Labels = %v", spec.Labels)
	}
	if spec.Values[0] != 18 {
		t.Errorf("Values[0] = %v, want 18", spec.Values[0])
	}
	if len(spec.AuxiliaryValues) != 2 || spec.AuxiliaryValues[0] != 21.7 {
		t.Errorf("AuxiliaryValues = %v", spec.AuxiliaryValues)
	}
	if !strings.Contains(spec.HoverText[0], "21.7% of the data is missing or unspecified") {
		t.Errorf("HoverText[0] = %q", spec.HoverText[0])
	}
}

func TestDonutChart_Empty(t *testing.T) {
	spec := DonutChart(metrics.DonutData{Domain: metrics.Availability, GroupBy: metrics.ByCountry})
	if spec.Placeholder != NoDataText {
		t.Errorf("Placeholder = %q, want %q", spec.Placeholder, NoDataText)
	}
	if len(spec.Labels) != 0 || len(spec.Values) != 0 {
		t.Error("placeholder chart must carry no data series")
	}
}

func TestStackedBars(t *testing.T) {
	bars := metrics.VariableBars{
		Domain:        metrics.Completeness,
		Organisations: []string{"OrgA", "OrgB"},
		Bars: []metrics.VariableBar{
			{
				Name:                  "Sex",
				Available:             14,
				Unavailable:           2,
				PctAvailable:          0.875,
				PctUnavailable:        0.125,
				DisplayPctAvailable:   0.875,
				DisplayPctUnavailable: 0.125,
				HasData:               true,
				PerOrg: map[string]metrics.OrgDetail{
					"OrgA": {Available: 8, Unavailable: 2},
					"OrgB": {Available: 6},
				},
			},
			{
				Name:   "Ghost",
				PerOrg: map[string]metrics.OrgDetail{},
			},
		},
	}

	spec := StackedBars(bars)
	if spec.Placeholder != "" {
		t.Fatalf("Placeholder = %q, want none", spec.Placeholder)
	}
	if spec.Values[0] != 0.875 || spec.AuxiliaryValues[0] != 0.125 {
		t.Errorf("series = %v / %v", spec.Values, spec.AuxiliaryValues)
	}
	if !strings.Contains(spec.HoverText[0], "OrgA: 8 of 10 records complete") {
		t.Errorf("HoverText[0] = %q", spec.HoverText[0])
	}
	if !strings.Contains(spec.HoverText[0], "87.5% complete (14 of 16 records)") {
		t.Errorf("HoverText[0] = %q", spec.HoverText[0])
	}
	if !strings.Contains(spec.HoverText[1], "No information available") {
		t.Errorf("HoverText[1] = %q", spec.HoverText[1])
	}
}

func TestStackedBars_NoSelection(t *testing.T) {
	spec := StackedBars(metrics.VariableBars{Domain: metrics.Plausibility})
	want := "Select an organisation to visualise variable plausibility"
	if spec.Placeholder != want {
		t.Errorf("Placeholder = %q, want %q", spec.Placeholder, want)
	}
}

func TestStackedBars_NoBars(t *testing.T) {
	spec := StackedBars(metrics.VariableBars{
		Domain:        metrics.Completeness,
		Organisations: []string{"OrgA"},
	})
	if spec.Placeholder != NoDataText {
		t.Errorf("Placeholder = %q, want %q", spec.Placeholder, NoDataText)
	}
}

func TestAvailabilityTableSpec(t *testing.T) {
	table := metrics.AvailabilityTable{
		Organisations: []string{"OrgA", "OrgB"},
		Unit:          "patient",
		Rows: []metrics.AvailabilityRow{
			{Variable: "Biological Sex", Total: 9, Counts: map[string]int{"OrgA": 9, "OrgB": 0}},
			{Value: "Male", Total: 10, Counts: map[string]int{"OrgA": 6, "OrgB": 4}},
		},
		Tooltips: []metrics.AvailabilityTooltip{
			{Variable: "__Biological Sex__", Total: "total tip", PerOrg: map[string]string{"OrgA": "a", "OrgB": "b"}},
			{Value: "value tip", Total: "value total tip", PerOrg: map[string]string{"OrgA": "c", "OrgB": "d"}},
		},
	}

	spec := AvailabilityTableSpec(table)
	wantColumns := []string{"Variable", "OrgA", "OrgB", "Total"}
	for i, want := range wantColumns {
		if spec.Columns[i] != want {
			t.Errorf("Columns[%d] = %q, want %q", i, spec.Columns[i], want)
		}
	}

	header := spec.Rows[0]
	if header[0] != "Biological Sex" || header[1] != MarkAvailable || header[2] != MarkUnavailable || header[3] != "9" {
		t.Errorf("header row = %v", header)
	}
	value := spec.Rows[1]
	if !strings.HasSuffix(value[0], "Male") || value[1] != MarkAvailable || value[2] != MarkAvailable || value[3] != "10" {
		t.Errorf("value row = %v", value)
	}

	if spec.CellTooltips[0][0] != "__Biological Sex__" || spec.CellTooltips[0][3] != "total tip" {
		t.Errorf("header tooltips = %v", spec.CellTooltips[0])
	}
	if spec.CellTooltips[1][0] != "value tip" || spec.CellTooltips[1][1] != "c" {
		t.Errorf("value tooltips = %v", spec.CellTooltips[1])
	}
}

func TestAvailabilityTableSpec_Empty(t *testing.T) {
	spec := AvailabilityTableSpec(metrics.AvailabilityTable{})
	if spec.Placeholder != NoDataText {
		t.Errorf("Placeholder = %q, want %q", spec.Placeholder, NoDataText)
	}
}

func TestSampleSizeBar(t *testing.T) {
	spec := SampleSizeBar([]metrics.SampleShare{
		{Organisation: "OrgA", SampleSize: 10, Proportion: 0.25},
		{Organisation: "OrgB", SampleSize: 30, Proportion: 0.75},
	}, "patient")

	if len(spec.Values) != 2 || spec.Values[1] != 0.75 {
		t.Errorf("Values = %v", spec.Values)
	}
	if !strings.Contains(spec.HoverText[0], "__10__ patients (25%)") {
		t.Errorf("HoverText[0] = %q", spec.HoverText[0])
	}

	if got := SampleSizeBar(nil, "patient"); got.Placeholder != NoDataText {
		t.Errorf("Placeholder = %q, want %q", got.Placeholder, NoDataText)
	}
}
