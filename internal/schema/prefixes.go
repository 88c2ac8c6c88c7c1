package schema

import (
	"regexp"
	"sort"
	"strings"
)

// ncitURI is the NCI Thesaurus namespace. Some schema revisions reference it
// without declaring a PREFIX line, so the table always carries it.
const ncitURI = "http://ncicb.nci.nih.gov/xml/owl/EVS/Thesaurus.owl#"

var prefixLine = regexp.MustCompile(`PREFIX\s+(\w+):\s*<([^>]+)>`)

type prefixEntry struct {
	Prefix string
	URI    string
}

// PrefixTable maps namespace prefixes to full URIs and back.
// Entries are kept sorted longest-first so that resolving "ncit2:" can never
// partially consume an identifier that belongs to the longer prefix.
type PrefixTable struct {
	entries []prefixEntry
}

// ParsePrefixes builds a PrefixTable from SPARQL-style PREFIX declarations.
func ParsePrefixes(declarations string) *PrefixTable {
	t := &PrefixTable{}
	seen := make(map[string]bool)
	for _, m := range prefixLine.FindAllStringSubmatch(declarations, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		t.entries = append(t.entries, prefixEntry{Prefix: m[1], URI: m[2]})
	}
	if !seen["ncit"] {
		t.entries = append(t.entries, prefixEntry{Prefix: "ncit", URI: ncitURI})
	}

	sort.SliceStable(t.entries, func(i, j int) bool {
		return len(t.entries[i].Prefix) > len(t.entries[j].Prefix)
	})
	return t
}

// Len returns the number of declared prefixes.
func (t *PrefixTable) Len() int {
	return len(t.entries)
}

// Resolve expands a prefix:local identifier into its full URI form.
// Unknown prefixes are left untouched.
func (t *PrefixTable) Resolve(identifier string) string {
	for _, e := range t.entries {
		if rest, ok := strings.CutPrefix(identifier, e.Prefix+":"); ok {
			return e.URI + rest
		}
	}
	return identifier
}

// Display performs the inverse of Resolve for UI text, longest URI first.
// Identifiers outside every known namespace are returned as-is.
func (t *PrefixTable) Display(identifier string) string {
	best := -1
	for i, e := range t.entries {
		if !strings.HasPrefix(identifier, e.URI) {
			continue
		}
		if best == -1 || len(e.URI) > len(t.entries[best].URI) {
			best = i
		}
	}
	if best == -1 {
		return identifier
	}
	e := t.entries[best]
	return e.Prefix + ":" + identifier[len(e.URI):]
}

// ResolveSchema returns a deep copy of the schema with every class reference
// expanded to its full URI. The input schema is never mutated; the raw
// prefixed form stays around for display purposes.
func (t *PrefixTable) ResolveSchema(s Schema) Schema {
	out := Schema{
		Prefixes:      s.Prefixes,
		VariableInfo:  make(map[string]Variable, len(s.VariableInfo)),
		VariableOrder: append([]string(nil), s.VariableOrder...),
	}

	for name, info := range s.VariableInfo {
		resolved := Variable{
			Class:                t.Resolve(info.Class),
			SchemaReconstruction: append([]CategoryNode(nil), info.SchemaReconstruction...),
		}
		if info.ValueMapping != nil {
			vm := &ValueMapping{
				Terms:     make(map[string]Term, len(info.ValueMapping.Terms)),
				TermOrder: append([]string(nil), info.ValueMapping.TermOrder...),
			}
			for term, target := range info.ValueMapping.Terms {
				vm.Terms[term] = Term{TargetClass: t.Resolve(target.TargetClass)}
			}
			resolved.ValueMapping = vm
		}
		out.VariableInfo[name] = resolved
	}
	return out
}
