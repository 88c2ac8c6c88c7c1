package snapshot

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// The statistics task serialises its per-organisation tables as
// dataframe-style JSON. Depending on the task version that is either a
// record-oriented array (`[{"variable": "sex", ...}, ...]`) or a
// column-oriented object (`{"variable": {"0": "sex"}, ...}`), sometimes
// wrapped in a JSON string. The typed tables below accept all three so the
// aggregators never have to look at serialised blobs.

// CategoricalRow is one value-count observation for a categorical variable.
// The reserved values "nan" and "outliers" mark missing and implausible
// records respectively.
type CategoricalRow struct {
	Variable string  `json:"variable"`
	Value    string  `json:"value"`
	Count    float64 `json:"count"`
}

// NumericalRow is one summary statistic for a numerical variable. The
// reserved statistics "count", "nan" and "outliers" carry the record
// bookkeeping; anything else is distribution detail.
type NumericalRow struct {
	Variable  string  `json:"variable"`
	Statistic string  `json:"statistic"`
	Value     float64 `json:"value"`
}

// CategoricalTable is an ordered list of categorical observations.
type CategoricalTable struct {
	Rows []CategoricalRow
}

// NumericalTable is an ordered list of numerical summary statistics.
type NumericalTable struct {
	Rows []NumericalRow
}

func (t *CategoricalTable) UnmarshalJSON(data []byte) error {
	records, err := tabularRecords(data)
	if err != nil {
		return err
	}
	t.Rows = t.Rows[:0]
	for _, rec := range records {
		t.Rows = append(t.Rows, CategoricalRow{
			Variable: asString(rec["variable"]),
			Value:    asString(rec["value"]),
			Count:    asFloat(rec["count"]),
		})
	}
	return nil
}

func (t *NumericalTable) UnmarshalJSON(data []byte) error {
	records, err := tabularRecords(data)
	if err != nil {
		return err
	}
	t.Rows = t.Rows[:0]
	for _, rec := range records {
		t.Rows = append(t.Rows, NumericalRow{
			Variable:  asString(rec["variable"]),
			Statistic: asString(rec["statistic"]),
			Value:     asFloat(rec["value"]),
		})
	}
	return nil
}

func (t CategoricalTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Rows)
}

func (t NumericalTable) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Rows)
}

// Variables returns the distinct variable names in first-seen order.
func (t CategoricalTable) Variables() []string {
	return distinctVariables(len(t.Rows), func(i int) string { return t.Rows[i].Variable })
}

// Variables returns the distinct variable names in first-seen order.
func (t NumericalTable) Variables() []string {
	return distinctVariables(len(t.Rows), func(i int) string { return t.Rows[i].Variable })
}

func distinctVariables(n int, at func(int) string) []string {
	seen := make(map[string]bool, n)
	var names []string
	for i := 0; i < n; i++ {
		name := at(i)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// tabularRecords normalises any accepted tabular encoding into row maps.
func tabularRecords(data []byte) ([]map[string]any, error) {
	// Unwrap a JSON string payload first.
	var wrapped string
	if err := json.Unmarshal(data, &wrapped); err == nil {
		data = []byte(wrapped)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var columns map[string]map[string]any
	if err := json.Unmarshal(data, &columns); err != nil {
		return nil, fmt.Errorf("tabular payload is neither records nor columns: %w", err)
	}
	return pivotColumns(columns), nil
}

// pivotColumns turns column-oriented data into ordered row maps. Row indices
// are numeric strings; sorting them numerically restores the original order.
func pivotColumns(columns map[string]map[string]any) []map[string]any {
	indexSet := make(map[string]bool)
	for _, cells := range columns {
		for idx := range cells {
			indexSet[idx] = true
		}
	}

	indices := make([]string, 0, len(indexSet))
	for idx := range indexSet {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool {
		a, errA := strconv.Atoi(indices[i])
		b, errB := strconv.Atoi(indices[j])
		if errA != nil || errB != nil {
			return indices[i] < indices[j]
		}
		return a < b
	})

	records := make([]map[string]any, 0, len(indices))
	for _, idx := range indices {
		rec := make(map[string]any, len(columns))
		for col, cells := range columns {
			if v, ok := cells[idx]; ok {
				rec[col] = v
			}
		}
		records = append(records, rec)
	}
	return records
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}
