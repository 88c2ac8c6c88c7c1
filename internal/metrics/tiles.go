package metrics

import (
	"fmt"
	"math"
	"sort"

	"dqportal/internal/snapshot"
)

// Tile is one summary figure for the dashboard header: a count plus its
// pluralised unit label.
type Tile struct {
	Count int    `json:"count"`
	Label string `json:"label"`
}

// Text renders the tile the way the dashboard shows it.
func (t Tile) Text() string {
	return fmt.Sprintf("%d %s", t.Count, t.Label)
}

// TotalSampleSize sums the sample sizes of every organisation in the
// snapshot; the unit label gets a plural s when the count exceeds one.
func TotalSampleSize(data snapshot.Data, unit string) Tile {
	total := 0
	for _, org := range data {
		total += org.SampleSize.Int()
	}
	return Tile{Count: total, Label: pluralS(unit, total)}
}

// OrganisationCount counts the participating organisations.
func OrganisationCount(data snapshot.Data) Tile {
	n := len(data)
	return Tile{Count: n, Label: pluralS("organisation", n)}
}

// CountryCount counts the distinct countries across organisations.
func CountryCount(data snapshot.Data) Tile {
	countries := make(map[string]bool)
	for _, org := range data {
		countries[org.Country] = true
	}
	n := len(countries)
	label := "country"
	if n > 1 {
		label = "countries"
	}
	return Tile{Count: n, Label: label}
}

func pluralS(unit string, n int) string {
	if n > 1 {
		return unit + "s"
	}
	return unit
}

// SampleShare is one organisation's slice of the total sample.
type SampleShare struct {
	Organisation string  `json:"organisation"`
	SampleSize   int     `json:"sampleSize"`
	Proportion   float64 `json:"proportion"`
}

// SampleShares computes each organisation's share of the total sample size,
// sorted alphabetically. An empty snapshot yields no shares.
func SampleShares(data snapshot.Data) []SampleShare {
	total := 0
	for _, org := range data {
		total += org.SampleSize.Int()
	}
	if total == 0 {
		return nil
	}

	organisations := make([]string, 0, len(data))
	for name := range data {
		organisations = append(organisations, name)
	}
	sort.Strings(organisations)

	shares := make([]SampleShare, 0, len(organisations))
	for _, name := range organisations {
		size := data[name].SampleSize.Int()
		shares = append(shares, SampleShare{
			Organisation: name,
			SampleSize:   size,
			Proportion:   math.Round(float64(size)/float64(total)*100) / 100,
		})
	}
	return shares
}
