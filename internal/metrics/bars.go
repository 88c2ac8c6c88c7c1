package metrics

import (
	"sort"

	"dqportal/internal/snapshot"
)

// MinBarProportion is the smallest rendered share for a non-zero stacked-bar
// segment. It only affects the display proportions; the true percentages and
// the underlying counts are untouched.
const MinBarProportion = 0.01

// OrgDetail is one organisation's contribution to a variable's bar.
type OrgDetail struct {
	Available   float64 `json:"available"`
	Unavailable float64 `json:"unavailable"`
}

// Total returns the organisation's record count for the variable.
func (d OrgDetail) Total() float64 {
	return d.Available + d.Unavailable
}

// VariableBar aggregates one variable across all organisations.
// PctAvailable/PctUnavailable are the true proportions used in hover text;
// DisplayPct* carry the minimum-height floor for rendering.
type VariableBar struct {
	Name                  string               `json:"variable"`
	Available             float64              `json:"available"`
	Unavailable           float64              `json:"unavailable"`
	PctAvailable          float64              `json:"pctAvailable"`
	PctUnavailable        float64              `json:"pctUnavailable"`
	DisplayPctAvailable   float64              `json:"displayPctAvailable"`
	DisplayPctUnavailable float64              `json:"displayPctUnavailable"`
	HasData               bool                 `json:"hasData"`
	PerOrg                map[string]OrgDetail `json:"perOrg"`
}

// VariableBars is the per-variable completeness or plausibility breakdown of
// the latest snapshot.
type VariableBars struct {
	Domain        Domain        `json:"domain"`
	Organisations []string      `json:"organisations"`
	Bars          []VariableBar `json:"bars"`
}

// BuildVariableBars computes, per variable, the available vs unavailable
// record counts summed across organisations, with per-organisation detail
// for hover text.
//
// Completeness counts records with the "nan" sentinel as unavailable.
// Plausibility counts records with the "outliers" sentinel as unavailable,
// and the variable's total is always the full record count including
// outliers — the same definition for organisation and country aggregation.
func BuildVariableBars(data snapshot.Data, domain Domain) VariableBars {
	organisations := make([]string, 0, len(data))
	for name := range data {
		organisations = append(organisations, name)
	}
	sort.Strings(organisations)

	result := VariableBars{Domain: domain, Organisations: organisations}

	index := make(map[string]int)
	bar := func(variable string) *VariableBar {
		if i, ok := index[variable]; ok {
			return &result.Bars[i]
		}
		result.Bars = append(result.Bars, VariableBar{
			Name:   variable,
			PerOrg: make(map[string]OrgDetail, len(organisations)),
		})
		index[variable] = len(result.Bars) - 1
		return &result.Bars[len(result.Bars)-1]
	}

	for _, org := range organisations {
		record := data[org]

		for _, variable := range record.Categorical.Variables() {
			available, unavailable := splitCategorical(record.Categorical, variable, domain)
			add(bar(variable), org, available, unavailable)
		}
		for _, variable := range record.Numerical.Variables() {
			available, unavailable := splitNumerical(record.Numerical, variable, domain)
			add(bar(variable), org, available, unavailable)
		}
	}

	for i := range result.Bars {
		b := &result.Bars[i]
		total := b.Available + b.Unavailable
		if total <= 0 {
			// Zero-denominator variables carry the no-information sentinel
			// instead of a NaN percentage.
			b.HasData = false
			continue
		}
		b.HasData = true
		b.PctAvailable = b.Available / total
		b.PctUnavailable = b.Unavailable / total
		b.DisplayPctAvailable = floorProportion(b.PctAvailable)
		b.DisplayPctUnavailable = floorProportion(b.PctUnavailable)
	}

	return result
}

func add(b *VariableBar, org string, available, unavailable float64) {
	b.Available += available
	b.Unavailable += unavailable
	detail := b.PerOrg[org]
	detail.Available += available
	detail.Unavailable += unavailable
	b.PerOrg[org] = detail
}

func splitCategorical(table snapshot.CategoricalTable, variable string, domain Domain) (available, unavailable float64) {
	sentinel := "nan"
	if domain == Plausibility {
		sentinel = "outliers"
	}
	for _, row := range table.Rows {
		if row.Variable != variable {
			continue
		}
		if row.Value == sentinel {
			unavailable += row.Count
		} else {
			available += row.Count
		}
	}
	return available, unavailable
}

func splitNumerical(table snapshot.NumericalTable, variable string, domain Domain) (available, unavailable float64) {
	var count, nan, outliers float64
	for _, row := range table.Rows {
		if row.Variable != variable {
			continue
		}
		switch row.Statistic {
		case "count":
			count += row.Value
		case "nan":
			nan += row.Value
		case "outliers":
			outliers += row.Value
		}
	}
	if domain == Plausibility {
		return count - outliers, outliers
	}
	return count, nan
}

func floorProportion(p float64) float64 {
	if p > 0 && p < MinBarProportion {
		return MinBarProportion
	}
	return p
}
