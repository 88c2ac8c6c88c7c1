package metrics

import (
	"fmt"
	"sort"
	"strings"

	"dqportal/internal/schema"
	"dqportal/internal/snapshot"
)

// AvailabilityRow is one line of the cross-tabulated availability table.
// A header row carries the variable name; the value rows that follow it
// carry one enumerated value each. Counts hold the raw per-organisation
// integers and stay the source of truth for totals and tooltips; the
// boolean display transform happens in the charts layer.
type AvailabilityRow struct {
	Variable string         `json:"variable"`
	Value    string         `json:"value"`
	Total    int            `json:"total"`
	Counts   map[string]int `json:"counts"`
}

// AvailabilityTooltip pairs with a row by index and carries the
// markdown-formatted hover text per column.
type AvailabilityTooltip struct {
	Variable string            `json:"variable"`
	Value    string            `json:"value"`
	Total    string            `json:"total"`
	PerOrg   map[string]string `json:"perOrg"`
}

// AvailabilityTable is the full cross-tab: one row per variable plus one per
// enumerated value, columns per organisation plus a total.
type AvailabilityTable struct {
	Organisations []string              `json:"organisations"`
	Unit          string                `json:"unit"`
	Rows          []AvailabilityRow     `json:"rows"`
	Tooltips      []AvailabilityTooltip `json:"tooltips"`
}

// BuildAvailabilityTable cross-tabulates, per schema variable and per
// enumerated value, the count of matching records per organisation. Row
// order follows the schema's declaration order; every organisation gets a
// definite count for every row (zero, never an omitted cell). Tooltips are
// derived from the same counts so the two can never diverge numerically.
func BuildAvailabilityTable(raw schema.Schema, data snapshot.Data, unit string) AvailabilityTable {
	prefixes := schema.ParsePrefixes(raw.Prefixes)
	resolved := prefixes.ResolveSchema(raw)

	organisations := make([]string, 0, len(data))
	for name := range data {
		organisations = append(organisations, name)
	}
	sort.Strings(organisations)

	table := AvailabilityTable{Organisations: organisations, Unit: unit}

	for _, variable := range raw.OrderedVariables() {
		info := resolved.VariableInfo[variable]
		display := schema.DisplayName(variable)
		spaced := strings.ReplaceAll(variable, "_", " ")

		// Header row: records whose main class is the variable's class and
		// whose sub class is empty or the class itself.
		headerCounts := countPerOrganisation(data, organisations, func(cc snapshot.ClassCount) int {
			if cc.MainClass != info.Class {
				return 0
			}
			if cc.SubClass != "" && cc.SubClass != info.Class {
				return 0
			}
			return cc.MainClassCount.Int()
		})

		row, tooltip := buildRow(display, "", headerCounts, organisations)
		tooltip.Variable = fmt.Sprintf("__%s__  \nAssociated class: %s", display, prefixes.Display(info.Class))
		tooltip.Total = totalTooltip(fmt.Sprintf("__%s__", display), unit, headerCounts, organisations,
			fmt.Sprintf("No %ss with information on __%s__ appear to be available.", unit, spaced))
		for _, org := range organisations {
			if headerCounts[org] > 0 {
				tooltip.PerOrg[org] = fmt.Sprintf("__%d__ %ss in %s have information on __%s__.",
					headerCounts[org], unit, org, spaced)
			} else {
				tooltip.PerOrg[org] = fmt.Sprintf("Data for __%s__ appears unavailable for %s.", spaced, org)
			}
		}
		table.Rows = append(table.Rows, row)
		table.Tooltips = append(table.Tooltips, tooltip)

		if info.ValueMapping == nil {
			continue
		}

		for _, term := range info.ValueMapping.OrderedTerms() {
			if term == schema.MissingOrUnspecified {
				continue
			}
			target := info.ValueMapping.Terms[term].TargetClass
			valueDisplay := schema.DisplayValue(term)
			valueSpaced := strings.ReplaceAll(term, "_", " ")

			valueCounts := countPerOrganisation(data, organisations, func(cc snapshot.ClassCount) int {
				if cc.MainClass == info.Class && cc.SubClass == target {
					return cc.SubClassCount.Int()
				}
				return 0
			})

			row, tooltip := buildRow("", valueDisplay, valueCounts, organisations)
			tooltip.Value = fmt.Sprintf("%s - __%s__  \nAssociated class: %s", display, valueDisplay, prefixes.Display(target))
			tooltip.Total = totalTooltip(fmt.Sprintf("%s - __%s__", display, valueDisplay), unit, valueCounts, organisations,
				fmt.Sprintf("No %ss with __%s__ for %s appear to be available.", unit, valueSpaced, spaced))
			for _, org := range organisations {
				if valueCounts[org] > 0 {
					tooltip.PerOrg[org] = fmt.Sprintf("__%d__ %ss in %s have __%s__ as %s.",
						valueCounts[org], unit, org, valueSpaced, spaced)
				} else {
					tooltip.PerOrg[org] = fmt.Sprintf("No %ss that have __%s__ as %s appear available in %s.",
						unit, valueSpaced, spaced, org)
				}
			}
			table.Rows = append(table.Rows, row)
			table.Tooltips = append(table.Tooltips, tooltip)
		}
	}

	return table
}

func countPerOrganisation(data snapshot.Data, organisations []string, count func(snapshot.ClassCount) int) map[string]int {
	counts := make(map[string]int, len(organisations))
	for _, org := range organisations {
		total := 0
		for _, cc := range data[org].VariableInfo {
			total += count(cc)
		}
		counts[org] = total
	}
	return counts
}

func buildRow(variable, value string, counts map[string]int, organisations []string) (AvailabilityRow, AvailabilityTooltip) {
	row := AvailabilityRow{
		Variable: variable,
		Value:    value,
		Counts:   make(map[string]int, len(organisations)),
	}
	for _, org := range organisations {
		row.Counts[org] = counts[org]
		row.Total += counts[org]
	}
	tooltip := AvailabilityTooltip{
		Variable: variable,
		Value:    value,
		PerOrg:   make(map[string]string, len(organisations)),
	}
	return row, tooltip
}

// totalTooltip renders the per-organisation breakdown shown on the total
// column, or the explicit no-data message when nothing is available.
func totalTooltip(heading, unit string, counts map[string]int, organisations []string, empty string) string {
	var lines []string
	for _, org := range organisations {
		if counts[org] > 0 {
			lines = append(lines, fmt.Sprintf("%s: __%d__", org, counts[org]))
		}
	}
	if len(lines) == 0 {
		return empty
	}
	return fmt.Sprintf("%s  \nAvailable %s data per organisation  \n%s",
		heading, unit, strings.Join(lines, "  \n"))
}
