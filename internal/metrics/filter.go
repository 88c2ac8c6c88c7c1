package metrics

import (
	"strings"

	"dqportal/internal/schema"
	"dqportal/internal/snapshot"
)

// FilterByCategories narrows a snapshot to the variables belonging to the
// selected schema categories. Selection labels are matched case-insensitively
// against the extracted category labels. Fail-open: an empty selection, a
// missing schema, or a selection matching no variable at all returns the
// input unchanged rather than silently producing an empty result.
func FilterByCategories(data snapshot.Data, selected []string, s schema.Schema, maxDepth int) snapshot.Data {
	if len(data) == 0 || len(selected) == 0 {
		return data
	}

	matched := schema.VariablesInCategories(s, selected, maxDepth)
	if len(matched) == 0 {
		return data
	}

	return filterVariables(data, func(variable string) bool {
		return matched[variable]
	})
}

// FilterByPrefix narrows a snapshot to variables whose raw name starts with
// any of the given literal prefixes. This is the schema-free fallback mode.
func FilterByPrefix(data snapshot.Data, prefixes []string) snapshot.Data {
	if len(data) == 0 || len(prefixes) == 0 {
		return data
	}

	return filterVariables(data, func(variable string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(variable, p) {
				return true
			}
		}
		return false
	})
}

// FilterByOrganisations keeps only the selected organisations. An empty
// selection keeps everything.
func FilterByOrganisations(data snapshot.Data, selected []string) snapshot.Data {
	if len(data) == 0 || len(selected) == 0 {
		return data
	}

	wanted := make(map[string]bool, len(selected))
	for _, org := range selected {
		wanted[org] = true
	}

	out := make(snapshot.Data, len(selected))
	for name, org := range data {
		if wanted[name] {
			out[name] = org
		}
	}
	return out
}

// filterVariables rebuilds the snapshot with categorical/numerical rows that
// pass the keep predicate. All other organisation fields pass through
// unchanged; the input snapshot is never mutated.
func filterVariables(data snapshot.Data, keep func(string) bool) snapshot.Data {
	out := make(snapshot.Data, len(data))
	for name, org := range data {
		filtered := org

		filtered.Categorical = snapshot.CategoricalTable{}
		for _, row := range org.Categorical.Rows {
			if keep(row.Variable) {
				filtered.Categorical.Rows = append(filtered.Categorical.Rows, row)
			}
		}

		filtered.Numerical = snapshot.NumericalTable{}
		for _, row := range org.Numerical.Rows {
			if keep(row.Variable) {
				filtered.Numerical.Rows = append(filtered.Numerical.Rows, row)
			}
		}

		out[name] = filtered
	}
	return out
}
