package snapshot

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ClassCount is one availability observation: how many records at an
// organisation carry a given ontology class, optionally narrowed to a
// sub-class (an enumerated value of the variable).
type ClassCount struct {
	MainClass      string  `json:"main_class"`
	MainClassCount FlexInt `json:"main_class_count"`
	SubClass       string  `json:"sub_class"`
	SubClassCount  FlexInt `json:"sub_class_count"`
}

// Organisation is the complete statistics record one participant contributes
// to a snapshot.
type Organisation struct {
	Country           string           `json:"country"`
	SampleSize        FlexInt          `json:"sample_size"`
	VariableInfo      []ClassCount     `json:"variable_info"`
	Categorical       CategoricalTable `json:"categorical,omitempty"`
	Numerical         NumericalTable   `json:"numerical,omitempty"`
	ExcludedVariables []string         `json:"excluded_variables,omitempty"`
}

// FlexInt tolerates upstream integers that arrive as JSON strings, which the
// orchestration platform produces when values pass through Docker secrets.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexInt(int(n))
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(f))
}

// Int returns the plain integer value.
func (f FlexInt) Int() int {
	return int(f)
}
