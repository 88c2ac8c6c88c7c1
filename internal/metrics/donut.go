package metrics

import (
	"math"
	"sort"

	"dqportal/internal/snapshot"
)

// GroupBy selects the donut slice key.
type GroupBy string

const (
	ByOrganisation GroupBy = "organisation"
	ByCountry      GroupBy = "country"
)

// ParseGroupBy maps a request string onto a grouping; unknown input falls
// back to organisation.
func ParseGroupBy(s string) GroupBy {
	if GroupBy(s) == ByCountry {
		return ByCountry
	}
	return ByOrganisation
}

// DonutSlice is one labelled share of a donut chart. For completeness and
// plausibility the slice also carries a relative percentage (incomplete
// share resp. plausible share) for the hover detail.
type DonutSlice struct {
	Label       string  `json:"label"`
	Value       float64 `json:"value"`
	Relative    float64 `json:"relative,omitempty"`
	HasRelative bool    `json:"hasRelative"`
}

// DonutData is a complete donut dataset, slices sorted alphabetically by
// label.
type DonutData struct {
	Domain  Domain       `json:"domain"`
	GroupBy GroupBy      `json:"groupBy"`
	Slices  []DonutSlice `json:"slices"`
}

// BuildDonut aggregates the snapshot into donut proportions per organisation
// or per country. Availability uses sample sizes; completeness uses complete
// data-point counts with the relative incomplete share; plausibility uses
// plausible data-point counts with the relative plausible share, capped at
// 100%. Country slices sum across every organisation sharing the country,
// and their relative share is recomputed from the summed counts.
func BuildDonut(data snapshot.Data, domain Domain, groupBy GroupBy) DonutData {
	type accum struct {
		value float64 // sample size, complete points, or plausible points
		other float64 // missing resp. implausible points
	}
	groups := make(map[string]*accum)

	group := func(org string, record snapshot.Organisation) *accum {
		key := org
		if groupBy == ByCountry {
			key = record.Country
		}
		if groups[key] == nil {
			groups[key] = &accum{}
		}
		return groups[key]
	}

	for org, record := range data {
		g := group(org, record)
		switch domain {
		case Completeness:
			available, missing := completenessCounts(record)
			g.value += available
			g.other += missing
		case Plausibility:
			plausible, implausible := plausibilityCounts(record)
			g.value += plausible
			g.other += implausible
		default:
			g.value += float64(record.SampleSize.Int())
		}
	}

	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	result := DonutData{Domain: domain, GroupBy: groupBy}
	for _, label := range labels {
		g := groups[label]
		slice := DonutSlice{Label: label, Value: g.value}
		total := g.value + g.other
		switch domain {
		case Completeness:
			if total > 0 {
				slice.Relative = round1(g.other / total * 100)
			}
			slice.HasRelative = true
		case Plausibility:
			if total > 0 {
				slice.Relative = math.Min(round1(g.value/total*100), 100)
			}
			slice.HasRelative = true
		}
		result.Slices = append(result.Slices, slice)
	}
	return result
}

// completenessCounts splits one organisation's records into complete and
// missing data points across the categorical and numerical tables.
func completenessCounts(record snapshot.Organisation) (available, missing float64) {
	for _, row := range record.Categorical.Rows {
		if row.Value == "nan" {
			missing += row.Count
		} else {
			available += row.Count
		}
	}
	for _, row := range record.Numerical.Rows {
		switch row.Statistic {
		case "count":
			available += row.Value
		case "nan":
			missing += row.Value
		}
	}
	return available, missing
}

// plausibilityCounts splits one organisation's records into plausible and
// implausible data points. The numerical total includes outliers, so
// plausible = count - outliers for both grouping modes.
func plausibilityCounts(record snapshot.Organisation) (plausible, implausible float64) {
	for _, row := range record.Categorical.Rows {
		if row.Value == "outliers" {
			implausible += row.Count
		} else {
			plausible += row.Count
		}
	}
	var count, outliers float64
	for _, row := range record.Numerical.Rows {
		switch row.Statistic {
		case "count":
			count += row.Value
		case "outliers":
			outliers += row.Value
		}
	}
	return plausible + count - outliers, implausible + outliers
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
