package engine

import (
	"testing"

	"dqportal/internal/schema"
	"dqportal/internal/snapshot"
)

// Generated payloads must decode through the same path as real ones.
func TestGenerateRoundTrip(t *testing.T) {
	s := schema.Schema{
		Prefixes: "PREFIX aya: <https://aya.org/>",
		VariableInfo: map[string]schema.Variable{
			"biological_sex": {
				Class: "aya:C1",
				ValueMapping: &schema.ValueMapping{
					Terms: map[string]schema.Term{
						"male":   {TargetClass: "aya:C2"},
						"female": {TargetClass: "aya:C3"},
					},
				},
			},
			"age_at_diagnosis": {Class: "aya:C4"},
		},
	}

	descriptives, statistics, err := Generate(GeneratorConfig{
		Schema:        s,
		Scenario:      "sparse",
		Organisations: 2,
		SampleSize:    50,
		Seed:          1,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	store := snapshot.NewStore()
	store.Append(descriptives, statistics)

	_, data, ok := store.Latest()
	if !ok {
		t.Fatal("generated payloads produced no snapshot")
	}
	if len(data) != 2 {
		t.Fatalf("organisations = %d, want 2", len(data))
	}

	org, ok := data["Organisation A"]
	if !ok {
		t.Fatal("Organisation A missing from snapshot")
	}
	if org.SampleSize.Int() != 50 {
		t.Errorf("sample size = %d, want 50", org.SampleSize.Int())
	}
	if len(org.VariableInfo) == 0 {
		t.Error("no class counts generated")
	}
	if len(org.Categorical.Rows) == 0 || len(org.Numerical.Rows) == 0 {
		t.Error("statistics tables empty")
	}
}
