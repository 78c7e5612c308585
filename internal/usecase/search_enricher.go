package usecase

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/travel-data/reco-pipeline/internal/domain/entity"
	"github.com/travel-data/reco-pipeline/internal/domain/repository"
	"github.com/travel-data/reco-pipeline/pkg/logger"
)

const secondsPerDay = 24 * 60 * 60

// dateLayout also accepts month and day without zero padding.
const dateLayout = "2006-1-2"

// ErrDecoration marks a search that could not be decorated and was dropped.
var ErrDecoration = errors.New("decorate search")

// RateConverter converts amounts to EUR.
type RateConverter interface {
	ToEuros(amount float64, currency string) (float64, error)
}

// SearchEnricher turns a batch of raw recos into a DecoratedSearch.
type SearchEnricher struct {
	geo    repository.GeoIndex
	rates  RateConverter
	logger logger.Logger
}

// NewSearchEnricher creates an enricher over read-only reference data.
func NewSearchEnricher(geo repository.GeoIndex, rates RateConverter, logger logger.Logger) *SearchEnricher {
	return &SearchEnricher{
		geo:    geo,
		rates:  rates,
		logger: logger,
	}
}

// Decorate builds the decorated search. Any failure drops the whole search;
// a partially decorated search is never returned.
func (e *SearchEnricher) Decorate(batch entity.SearchBatch) (*entity.DecoratedSearch, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrDecoration)
	}

	search, err := e.decorateSearch(batch[0])
	if err != nil {
		e.logger.Error("Failed at building search", "searchID", batch[0].SearchID, "reco", batch[0], "error", err)
		return nil, fmt.Errorf("%w %s: %w", ErrDecoration, batch[0].SearchID, err)
	}

	search.Recos = make([]entity.DecoratedReco, 0, len(batch))
	for i := range batch {
		reco, err := e.decorateReco(&batch[i], search.Currency)
		if err != nil {
			e.logger.Error("Failed at decorating reco", "searchID", batch[i].SearchID, "reco", batch[i], "error", err)
			return nil, fmt.Errorf("%w %s: reco %d: %w", ErrDecoration, batch[i].SearchID, i, err)
		}
		search.Recos = append(search.Recos, reco)
	}

	return search, nil
}

func (e *SearchEnricher) decorateSearch(first entity.RawRecoLine) (*entity.DecoratedSearch, error) {
	search := &entity.DecoratedSearch{
		VersionNb:         first.VersionNb,
		SearchID:          first.SearchID,
		SearchCountry:     first.SearchCountry,
		SearchDate:        first.SearchDate,
		SearchTime:        first.SearchTime,
		OriginCity:        first.OriginCity,
		DestinationCity:   first.DestinationCity,
		RequestDepDate:    first.RequestDepDate,
		RequestReturnDate: first.RequestReturnDate,
		PassengersString:  first.PassengersString,
		Currency:          first.Currency,
	}

	// Dates are compared as plain calendar days: the search date is UTC while
	// the requested dates are local to origin and destination.
	searchDate, err := time.Parse(dateLayout, search.SearchDate)
	if err != nil {
		return nil, fmt.Errorf("search date: %w", err)
	}
	depDate, err := time.Parse(dateLayout, search.RequestDepDate)
	if err != nil {
		return nil, fmt.Errorf("departure date: %w", err)
	}
	search.AdvancePurchase = daysBetween(searchDate, depDate)

	if search.RequestReturnDate == "" {
		search.StayDuration = -1
		search.TripType = entity.TripOneWay
	} else {
		returnDate, err := time.Parse(dateLayout, search.RequestReturnDate)
		if err != nil {
			return nil, fmt.Errorf("return date: %w", err)
		}
		search.StayDuration = daysBetween(depDate, returnDate)
		search.TripType = entity.TripRoundTrip
	}

	passengers, err := ParsePassengers(search.PassengersString)
	if err != nil {
		return nil, err
	}
	search.Passengers = passengers

	if search.OriginCountry, err = e.geo.Country(search.OriginCity); err != nil {
		return nil, fmt.Errorf("origin country: %w", err)
	}
	if search.DestinationCountry, err = e.geo.Country(search.DestinationCity); err != nil {
		return nil, fmt.Errorf("destination country: %w", err)
	}
	search.Geo = entity.GeoInternational
	if search.OriginCountry == search.DestinationCountry {
		search.Geo = entity.GeoDomestic
	}

	search.OnD = search.OriginCity + "-" + search.DestinationCity
	distance, err := e.geo.Distance(search.OriginCity, search.DestinationCity)
	if err != nil {
		return nil, fmt.Errorf("OnD distance: %w", err)
	}
	search.OnDDistance = roundDistance(distance)

	return search, nil
}

func (e *SearchEnricher) decorateReco(raw *entity.RawRecoLine, currency string) (entity.DecoratedReco, error) {
	reco := entity.DecoratedReco{NbOfFlights: raw.NbOfFlights}

	amounts := []struct {
		name     string
		raw      string
		value    *float64
		valueEUR *float64
	}{
		{"price", raw.Price, &reco.Price, &reco.PriceEUR},
		{"taxes", raw.Taxes, &reco.Taxes, &reco.TaxesEUR},
		{"fees", raw.Fees, &reco.Fees, &reco.FeesEUR},
	}
	for _, amount := range amounts {
		value, err := strconv.ParseFloat(strings.TrimSpace(amount.raw), 64)
		if err != nil {
			return reco, fmt.Errorf("%s %q: %w", amount.name, amount.raw, err)
		}
		inEUR, err := e.rates.ToEuros(value, currency)
		if err != nil {
			return reco, fmt.Errorf("%s to EUR: %w", amount.name, err)
		}
		*amount.value = value
		*amount.valueEUR = inEUR
	}

	marketing := newDistanceTally()
	operating := newDistanceTally()
	cabins := newDistanceTally()

	reco.Flights = make([]entity.DecoratedFlight, 0, len(raw.Flights))
	for _, f := range raw.Flights {
		flight := entity.DecoratedFlight{Flight: f}

		depCities, err := e.geo.Cities(f.DepAirport)
		if err != nil {
			return reco, fmt.Errorf("departure city: %w", err)
		}
		arrCities, err := e.geo.Cities(f.ArrAirport)
		if err != nil {
			return reco, fmt.Errorf("arrival city: %w", err)
		}
		flight.DepCity = depCities[0]
		flight.ArrCity = arrCities[0]

		distance, err := e.geo.Distance(f.DepAirport, f.ArrAirport)
		if err != nil {
			return reco, fmt.Errorf("leg distance: %w", err)
		}
		flight.Distance = roundDistance(distance)
		reco.FlownDistance += flight.Distance

		if flight.OperatingAirline == "" {
			flight.OperatingAirline = flight.MarketingAirline
		}
		marketing.add(flight.MarketingAirline, flight.Distance)
		operating.add(flight.OperatingAirline, flight.Distance)
		cabins.add(flight.Cabin, flight.Distance)

		reco.Flights = append(reco.Flights, flight)
	}

	var ok bool
	if reco.MainMarketingAirline, ok = marketing.dominant(); !ok {
		return reco, errors.New("reco has no flight")
	}
	reco.MainOperatingAirline, _ = operating.dominant()
	reco.MainCabin, _ = cabins.dominant()

	return reco, nil
}

// ParsePassengers decodes "ADT=1,CHD=2" into passengers. Every entry needs an
// integer count.
func ParsePassengers(value string) ([]entity.Passenger, error) {
	var passengers []entity.Passenger
	for _, pax := range strings.Split(strings.TrimRight(value, " \t\r\n"), ",") {
		paxType, count, found := strings.Cut(pax, "=")
		if !found {
			return nil, fmt.Errorf("passenger entry %q has no count", pax)
		}
		if i := strings.Index(count, "="); i >= 0 {
			count = count[:i]
		}
		nb, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil {
			return nil, fmt.Errorf("passenger count %q: %w", count, err)
		}
		passengers = append(passengers, entity.Passenger{PassengerType: paxType, PassengerNb: nb})
	}
	return passengers, nil
}

// distanceTally accumulates distance per key, remembering first-seen order so
// ties go to the key encountered first.
type distanceTally struct {
	order  []string
	totals map[string]int
}

func newDistanceTally() *distanceTally {
	return &distanceTally{totals: make(map[string]int)}
}

func (d *distanceTally) add(key string, distance int) {
	if _, ok := d.totals[key]; !ok {
		d.order = append(d.order, key)
	}
	d.totals[key] += distance
}

func (d *distanceTally) dominant() (string, bool) {
	if len(d.order) == 0 {
		return "", false
	}
	best := d.order[0]
	for _, key := range d.order[1:] {
		if d.totals[key] > d.totals[best] {
			best = key
		}
	}
	return best, true
}

// daysBetween counts whole days from one midnight-UTC date to another.
func daysBetween(from, to time.Time) int {
	return int((to.Unix() - from.Unix()) / secondsPerDay)
}

// roundDistance rounds km to the nearest integer, half to even.
func roundDistance(km float64) int {
	return int(math.RoundToEven(km))
}
