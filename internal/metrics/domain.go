package metrics

// Domain selects which data-quality dimension an aggregation describes.
type Domain string

const (
	// Availability: whether a variable/value has any supporting records.
	Availability Domain = "availability"
	// Completeness: proportion of non-missing values for a variable.
	Completeness Domain = "completeness"
	// Plausibility: proportion of non-outlier values for a variable.
	Plausibility Domain = "plausibility"
)

// ParseDomain maps a request string onto a known domain; unknown input
// falls back to availability.
func ParseDomain(s string) Domain {
	switch Domain(s) {
	case Completeness:
		return Completeness
	case Plausibility:
		return Plausibility
	default:
		return Availability
	}
}
