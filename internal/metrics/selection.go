package metrics

import (
	"sort"

	"dqportal/internal/snapshot"
)

// SelectionOptions is the resolved state of the linked organisation/country
// pickers: the full option lists plus the mutually-constrained selections.
type SelectionOptions struct {
	Organisations         []string `json:"organisations"`
	Countries             []string `json:"countries"`
	SelectedOrganisations []string `json:"selectedOrganisations"`
	SelectedCountries     []string `json:"selectedCountries"`
}

// ResolveSelection links the two pickers: selecting organisations determines
// the country set, otherwise selecting countries determines the organisation
// set. All lists come back sorted and deduplicated.
func ResolveSelection(data snapshot.Data, selectedOrgs, selectedCountries []string) SelectionOptions {
	opts := SelectionOptions{}

	countrySet := make(map[string]bool)
	for name, org := range data {
		opts.Organisations = append(opts.Organisations, name)
		countrySet[org.Country] = true
	}
	sort.Strings(opts.Organisations)
	for c := range countrySet {
		opts.Countries = append(opts.Countries, c)
	}
	sort.Strings(opts.Countries)

	switch {
	case len(selectedOrgs) > 0:
		seen := make(map[string]bool)
		for _, name := range selectedOrgs {
			org, ok := data[name]
			if !ok {
				continue
			}
			opts.SelectedOrganisations = append(opts.SelectedOrganisations, name)
			if !seen[org.Country] {
				seen[org.Country] = true
				opts.SelectedCountries = append(opts.SelectedCountries, org.Country)
			}
		}
		sort.Strings(opts.SelectedOrganisations)
		sort.Strings(opts.SelectedCountries)
	case len(selectedCountries) > 0:
		wanted := make(map[string]bool, len(selectedCountries))
		for _, c := range selectedCountries {
			if countrySet[c] {
				wanted[c] = true
			}
		}
		for name, org := range data {
			if wanted[org.Country] {
				opts.SelectedOrganisations = append(opts.SelectedOrganisations, name)
			}
		}
		sort.Strings(opts.SelectedOrganisations)
		for c := range wanted {
			opts.SelectedCountries = append(opts.SelectedCountries, c)
		}
		sort.Strings(opts.SelectedCountries)
	}

	return opts
}
