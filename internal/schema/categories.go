package schema

import (
	"sort"
	"strings"
)

// ExtractCategories walks every variable's category hierarchy up to maxDepth
// nodes and returns the distinct category labels, alphabetically sorted.
// Labels come from "class" nodes whose placement is not "before"; underscores
// are normalised to spaces. A schema without variable_info, or a variable
// without schema_reconstruction, simply contributes nothing.
func ExtractCategories(s Schema, maxDepth int) []string {
	seen := make(map[string]bool)
	for _, info := range s.VariableInfo {
		for _, label := range variableCategories(info, maxDepth) {
			seen[label] = true
		}
	}

	categories := make([]string, 0, len(seen))
	for label := range seen {
		categories = append(categories, label)
	}
	sort.Strings(categories)
	return categories
}

// VariablesInCategories returns the set of variable names whose category
// labels match any of the selected categories, case-insensitively.
func VariablesInCategories(s Schema, selected []string, maxDepth int) map[string]bool {
	wanted := make(map[string]bool, len(selected))
	for _, c := range selected {
		wanted[normaliseCategory(c)] = true
	}

	matched := make(map[string]bool)
	for name, info := range s.VariableInfo {
		for _, label := range variableCategories(info, maxDepth) {
			if wanted[normaliseCategory(label)] {
				matched[name] = true
				break
			}
		}
	}
	return matched
}

func variableCategories(info Variable, maxDepth int) []string {
	var labels []string
	for level, node := range info.SchemaReconstruction {
		if level >= maxDepth {
			break
		}
		if node.Type != "class" || node.AestheticLabel == "" || node.Placement == "before" {
			continue
		}
		labels = append(labels, strings.ReplaceAll(node.AestheticLabel, "_", " "))
	}
	return labels
}

func normaliseCategory(label string) string {
	return strings.ToLower(strings.ReplaceAll(label, "_", " "))
}
