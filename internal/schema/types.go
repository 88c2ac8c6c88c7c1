package schema

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Schema describes the variables tracked by the collaboration: an ontology
// prefix table plus one descriptor per variable. VariableOrder preserves the
// declaration order of variable_info for stable table row emission.
type Schema struct {
	Prefixes      string              `json:"prefixes"`
	VariableInfo  map[string]Variable `json:"variable_info"`
	VariableOrder []string            `json:"-"`
}

func (s *Schema) UnmarshalJSON(data []byte) error {
	type alias Schema
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	raw.VariableOrder = objectKeyOrder(data, "variable_info")
	*s = Schema(raw)
	return nil
}

// OrderedVariables returns variable names in declaration order, sorted as a
// fallback when the raw order was not captured.
func (s Schema) OrderedVariables() []string {
	if len(s.VariableOrder) == len(s.VariableInfo) {
		return s.VariableOrder
	}
	names := make([]string, 0, len(s.VariableInfo))
	for name := range s.VariableInfo {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Variable is the descriptor for a single tracked variable.
type Variable struct {
	Class                string         `json:"class"`
	ValueMapping         *ValueMapping  `json:"value_mapping,omitempty"`
	SchemaReconstruction []CategoryNode `json:"schema_reconstruction,omitempty"`
}

// ValueMapping enumerates the permitted values of a categorical variable.
// TermOrder preserves the declaration order of the terms object, which the
// availability table relies on for stable row emission.
type ValueMapping struct {
	Terms     map[string]Term `json:"terms"`
	TermOrder []string        `json:"-"`
}

// Term links a value name to its ontology class.
type Term struct {
	TargetClass string `json:"target_class"`
}

// CategoryNode is one entry in a variable's category hierarchy.
type CategoryNode struct {
	Type           string `json:"type"`
	AestheticLabel string `json:"aesthetic_label,omitempty"`
	Placement      string `json:"placement,omitempty"`
}

// MissingOrUnspecified is the reserved term key that never becomes an
// availability value row.
const MissingOrUnspecified = "missing_or_unspecified"

func (v *ValueMapping) UnmarshalJSON(data []byte) error {
	type alias ValueMapping
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v.Terms = raw.Terms
	v.TermOrder = objectKeyOrder(data, "terms")
	return nil
}

// objectKeyOrder scans a raw JSON object and returns the keys of its named
// sub-object in document order. encoding/json maps lose that order.
func objectKeyOrder(data []byte, field string) []string {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, _ := keyTok.(string)
		if key != field {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil
			}
			continue
		}

		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return nil
		}

		var order []string
		for dec.More() {
			termTok, err := dec.Token()
			if err != nil {
				return nil
			}
			name, ok := termTok.(string)
			if !ok {
				return nil
			}
			order = append(order, name)
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil
			}
		}
		return order
	}

	return nil
}

// OrderedTerms returns the term names in declaration order, sorted as a
// fallback when the raw order was not captured.
func (v *ValueMapping) OrderedTerms() []string {
	if v == nil {
		return nil
	}
	if len(v.TermOrder) == len(v.Terms) {
		return v.TermOrder
	}
	names := make([]string, 0, len(v.Terms))
	for name := range v.Terms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
