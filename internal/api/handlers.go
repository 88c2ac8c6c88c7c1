package api

import (
	"net/http"

	"dqportal/internal/charts"
	"dqportal/internal/metrics"
	"dqportal/internal/schema"
	"dqportal/internal/snapshot"
)

type tileDTO struct {
	Count int    `json:"count"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

func toTileDTO(t metrics.Tile) tileDTO {
	return tileDTO{Count: t.Count, Label: t.Label, Text: t.Text()}
}

type summaryResponse struct {
	Timestamp     string           `json:"timestamp"`
	Samples       tileDTO          `json:"samples"`
	Organisations tileDTO          `json:"organisations"`
	Countries     tileDTO          `json:"countries"`
	SampleSizeBar charts.ChartSpec `json:"sampleSizeBar"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	timestamp, _ := s.latest()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"snapshots": s.store.Len(),
		"latest":    timestamp,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	timestamp, data := s.latest()
	writeJSON(w, http.StatusOK, summaryResponse{
		Timestamp:     timestamp,
		Samples:       toTileDTO(metrics.TotalSampleSize(data, s.unit)),
		Organisations: toTileDTO(metrics.OrganisationCount(data)),
		Countries:     toTileDTO(metrics.CountryCount(data)),
		SampleSizeBar: charts.SampleSizeBar(metrics.SampleShares(data), s.unit),
	})
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	_, data := s.latest()
	opts := metrics.ResolveSelection(data, listParam(r, "organisations"), listParam(r, "countries"))
	writeJSON(w, http.StatusOK, opts)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"categories": schema.ExtractCategories(s.schema, categoryDepth),
	})
}

func (s *Server) handleAvailabilityTable(w http.ResponseWriter, r *http.Request) {
	_, data := s.latest()
	data = s.applyFilters(r, data)
	table := metrics.BuildAvailabilityTable(s.schema, data, s.unit)
	writeJSON(w, http.StatusOK, charts.AvailabilityTableSpec(table))
}

func (s *Server) handleDonut(w http.ResponseWriter, r *http.Request) {
	_, data := s.latest()
	data = metrics.FilterByOrganisations(data, listParam(r, "organisations"))
	domain := metrics.ParseDomain(r.URL.Query().Get("domain"))
	groupBy := metrics.ParseGroupBy(r.URL.Query().Get("by"))
	writeJSON(w, http.StatusOK, charts.DonutChart(metrics.BuildDonut(data, domain, groupBy)))
}

func (s *Server) handleBars(w http.ResponseWriter, r *http.Request) {
	domain := metrics.ParseDomain(r.URL.Query().Get("domain"))

	selected := listParam(r, "organisations")
	if len(selected) == 0 {
		// Variable-level charts need an explicit selection first.
		writeJSON(w, http.StatusOK, charts.StackedBars(metrics.VariableBars{Domain: domain}))
		return
	}

	_, data := s.latest()
	data = metrics.FilterByOrganisations(data, selected)
	data = metrics.FilterByCategories(data, listParam(r, "categories"), s.schema, categoryDepth)
	writeJSON(w, http.StatusOK, charts.StackedBars(metrics.BuildVariableBars(data, domain)))
}

// applyFilters narrows the snapshot by the optional category, prefix and
// organisation selections of the request.
func (s *Server) applyFilters(r *http.Request, data snapshot.Data) snapshot.Data {
	data = metrics.FilterByOrganisations(data, listParam(r, "organisations"))
	data = metrics.FilterByCategories(data, listParam(r, "categories"), s.schema, categoryDepth)
	data = metrics.FilterByPrefix(data, listParam(r, "prefixes"))
	return data
}
