package repository

// GeoIndex resolves location codes (airports and cities) to reference data.
// Implementations are read-only after construction and safe for concurrent use.
type GeoIndex interface {
	// Country returns the ISO country code of a location.
	Country(code string) (string, error)
	// Cities returns the city codes serving a location, main city first.
	Cities(code string) ([]string, error)
	// Distance returns the great-circle distance between two locations in km.
	Distance(from, to string) (float64, error)
}
