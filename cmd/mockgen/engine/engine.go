package engine

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"dqportal/internal/schema"
	"dqportal/internal/snapshot"
)

type GeneratorConfig struct {
	Schema        schema.Schema
	Scenario      string // "clean", "sparse" or "noisy"
	Organisations int
	SampleSize    int
	Seed          int64
}

var countries = []string{"IT", "NL", "PT", "ES", "DE"}

type descriptiveRecord struct {
	Organisation string                `json:"organisation"`
	Country      string                `json:"country"`
	SampleSize   int                   `json:"sample_size"`
	VariableInfo []snapshot.ClassCount `json:"variable_info"`
}

type statisticsPartial struct {
	Organisation      string                    `json:"organisation"`
	Categorical       snapshot.CategoricalTable `json:"categorical"`
	Numerical         snapshot.NumericalTable   `json:"numerical"`
	ExcludedVariables []string                  `json:"excluded_variables"`
}

type statisticsDocument struct {
	PartialResults []statisticsPartial `json:"partial_results"`
}

// Generate produces a matched pair of mock payloads for the given schema:
// the descriptives document the availability view reads and the statistics
// document the completeness and plausibility views read.
func Generate(cfg GeneratorConfig) (descriptives, statistics []byte, err error) {
	if cfg.Organisations <= 0 {
		cfg.Organisations = 3
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = 200
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	// Scenario knobs: how much of the data is missing resp. implausible.
	missingShare, outlierShare := 0.0, 0.0
	switch cfg.Scenario {
	case "sparse":
		missingShare = 0.3
	case "noisy":
		missingShare = 0.05
		outlierShare = 0.15
	}

	prefixes := schema.ParsePrefixes(cfg.Schema.Prefixes)
	resolved := prefixes.ResolveSchema(cfg.Schema)

	var records []descriptiveRecord
	var partials []statisticsPartial

	for i := 0; i < cfg.Organisations; i++ {
		name := fmt.Sprintf("Organisation %c", 'A'+i)
		record := descriptiveRecord{
			Organisation: name,
			Country:      countries[i%len(countries)],
			SampleSize:   cfg.SampleSize,
		}
		partial := statisticsPartial{
			Organisation:      name,
			ExcludedVariables: []string{},
		}

		for _, variable := range resolved.OrderedVariables() {
			info := resolved.VariableInfo[variable]
			missing := int(float64(cfg.SampleSize) * missingShare * rng.Float64() * 2)
			if missing > cfg.SampleSize {
				missing = cfg.SampleSize
			}
			present := cfg.SampleSize - missing

			record.VariableInfo = append(record.VariableInfo, snapshot.ClassCount{
				MainClass:      info.Class,
				MainClassCount: snapshot.FlexInt(present),
			})

			if info.ValueMapping != nil {
				fillCategorical(&partial.Categorical, rng, variable, info, &record, present, missing, outlierShare)
			} else {
				fillNumerical(&partial.Numerical, rng, variable, present, missing, outlierShare)
			}
		}

		records = append(records, record)
		partials = append(partials, partial)
	}

	descriptives, err = json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	statistics, err = json.MarshalIndent([]statisticsDocument{{PartialResults: partials}}, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return descriptives, statistics, nil
}

// fillCategorical distributes the present records over the enumerated values
// and mirrors the per-value counts into the descriptives record.
func fillCategorical(table *snapshot.CategoricalTable, rng *rand.Rand, variable string, info schema.Variable, record *descriptiveRecord, present, missing int, outlierShare float64) {
	var terms []string
	for _, term := range info.ValueMapping.OrderedTerms() {
		if term != schema.MissingOrUnspecified {
			terms = append(terms, term)
		}
	}

	outliers := int(float64(present) * outlierShare * rng.Float64())
	remaining := present - outliers

	for i, term := range terms {
		count := remaining
		if i < len(terms)-1 && remaining > 0 {
			count = rng.Intn(remaining + 1)
		}
		remaining -= count

		table.Rows = append(table.Rows, snapshot.CategoricalRow{
			Variable: variable, Value: term, Count: float64(count),
		})
		record.VariableInfo = append(record.VariableInfo, snapshot.ClassCount{
			MainClass:     info.Class,
			SubClass:      info.ValueMapping.Terms[term].TargetClass,
			SubClassCount: snapshot.FlexInt(count),
		})
	}
	if missing > 0 {
		table.Rows = append(table.Rows, snapshot.CategoricalRow{
			Variable: variable, Value: "nan", Count: float64(missing),
		})
	}
	if outliers > 0 {
		table.Rows = append(table.Rows, snapshot.CategoricalRow{
			Variable: variable, Value: "outliers", Count: float64(outliers),
		})
	}
}

func fillNumerical(table *snapshot.NumericalTable, rng *rand.Rand, variable string, present, missing int, outlierShare float64) {
	outliers := int(float64(present) * outlierShare * rng.Float64())
	mean := 20 + rng.Float64()*40

	rows := []snapshot.NumericalRow{
		{Variable: variable, Statistic: "count", Value: float64(present)},
		{Variable: variable, Statistic: "mean", Value: mean},
		{Variable: variable, Statistic: "std", Value: mean / 4},
		{Variable: variable, Statistic: "min", Value: mean / 2},
		{Variable: variable, Statistic: "max", Value: mean * 2},
		{Variable: variable, Statistic: "nan", Value: float64(missing)},
		{Variable: variable, Statistic: "outliers", Value: float64(outliers)},
	}
	table.Rows = append(table.Rows, rows...)
}

// Save writes the two payloads where the development file client expects
// them.
func Save(outDir string, descriptives, statistics []byte) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outDir, "descriptives.json"), descriptives, 0644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outDir, "statistics.json"), statistics, 0644)
}
