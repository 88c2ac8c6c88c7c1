package schema

import "strings"

// Questionnaire acronyms that should render fully capitalised instead of
// title-cased.
var capitalisedNames = []string{"eortc", "hads"}

// DisplayName turns a raw variable name into its presentation form:
// underscores become spaces, and the result is title-cased unless the name
// contains a known questionnaire acronym, in which case it is upper-cased.
func DisplayName(variable string) string {
	spaced := strings.ReplaceAll(variable, "_", " ")
	for _, name := range capitalisedNames {
		if strings.Contains(variable, name) {
			return strings.ToUpper(spaced)
		}
	}
	return titleCase(spaced)
}

// DisplayValue renders an enumerated value name: underscores to spaces,
// always title-cased.
func DisplayValue(value string) string {
	return titleCase(strings.ReplaceAll(value, "_", " "))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
