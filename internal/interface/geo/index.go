package geo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

const earthRadiusKm = 6371.0

// ErrUnknownLocation is returned for codes absent from the index.
var ErrUnknownLocation = errors.New("unknown location")

// Location is one entry of the geographic reference data.
type Location struct {
	Code      string
	Latitude  float64
	Longitude float64
	Country   string
	Cities    []string
}

// Index is an in-memory GeoIndex. It is immutable once built.
type Index struct {
	locations map[string]Location
}

// NewIndex builds an index from locations. The first entry of a code wins.
func NewIndex(locations []Location) *Index {
	idx := &Index{locations: make(map[string]Location, len(locations))}
	for _, loc := range locations {
		if _, exists := idx.locations[loc.Code]; exists {
			continue
		}
		idx.locations[loc.Code] = loc
	}
	return idx
}

// LoadIndex reads an OPTD points-of-reference file ("^" separated, header row).
func LoadIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geo file: %w", err)
	}
	defer f.Close()

	return ParseIndex(f)
}

// ParseIndex reads OPTD-style reference data. The header must name the
// iata_code, latitude, longitude, country_code and city_code_list columns.
// Rows without a code or with unparsable coordinates are skipped.
func ParseIndex(r io.Reader) (*Index, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read geo header: %w", err)
		}
		return nil, errors.New("geo file is empty")
	}

	columns := map[string]int{}
	for i, name := range strings.Split(strings.TrimSpace(scanner.Text()), "^") {
		columns[name] = i
	}
	required := []string{"iata_code", "latitude", "longitude", "country_code", "city_code_list"}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("geo header misses column %q", name)
		}
	}

	var locations []Location
	for scanner.Scan() {
		fields := strings.Split(strings.TrimRight(scanner.Text(), "\r\n"), "^")
		get := func(name string) string {
			if i := columns[name]; i < len(fields) {
				return strings.TrimSpace(fields[i])
			}
			return ""
		}

		code := get("iata_code")
		if code == "" {
			continue
		}
		lat, errLat := strconv.ParseFloat(get("latitude"), 64)
		lng, errLng := strconv.ParseFloat(get("longitude"), 64)
		if errLat != nil || errLng != nil {
			continue
		}

		var cities []string
		for _, city := range strings.Split(get("city_code_list"), ",") {
			if city = strings.TrimSpace(city); city != "" {
				cities = append(cities, city)
			}
		}

		locations = append(locations, Location{
			Code:      code,
			Latitude:  lat,
			Longitude: lng,
			Country:   get("country_code"),
			Cities:    cities,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read geo file: %w", err)
	}

	return NewIndex(locations), nil
}

// Len returns the number of indexed codes.
func (i *Index) Len() int {
	return len(i.locations)
}

func (i *Index) lookup(code string) (Location, error) {
	loc, ok := i.locations[code]
	if !ok {
		return Location{}, fmt.Errorf("%w: %q", ErrUnknownLocation, code)
	}
	return loc, nil
}

// Country returns the country code of a location.
func (i *Index) Country(code string) (string, error) {
	loc, err := i.lookup(code)
	if err != nil {
		return "", err
	}
	return loc.Country, nil
}

// Cities returns the cities served by a location. An empty list is an error.
func (i *Index) Cities(code string) ([]string, error) {
	loc, err := i.lookup(code)
	if err != nil {
		return nil, err
	}
	if len(loc.Cities) == 0 {
		return nil, fmt.Errorf("no city for location %q", code)
	}
	return append([]string(nil), loc.Cities...), nil
}

// Distance returns the haversine distance between two locations in km.
func (i *Index) Distance(from, to string) (float64, error) {
	a, err := i.lookup(from)
	if err != nil {
		return 0, err
	}
	b, err := i.lookup(to)
	if err != nil {
		return 0, err
	}
	return haversine(a.Latitude, a.Longitude, b.Latitude, b.Longitude), nil
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLon := degreesToRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
