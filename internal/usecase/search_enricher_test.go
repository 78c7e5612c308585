package usecase

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travel-data/reco-pipeline/internal/domain/entity"
	"github.com/travel-data/reco-pipeline/internal/interface/geo"
	"github.com/travel-data/reco-pipeline/pkg/currency"
	"github.com/travel-data/reco-pipeline/pkg/logger"
	"github.com/travel-data/reco-pipeline/pkg/utils"
)

const scenarioLine = "1^S1^FR^2024-01-01^10:00:00^PAR^NYC^2024-02-01^2024-02-10^ADT=1^EUR^500^50^20^1^" +
	"CDG^2024-02-01^08:00^JFK^2024-02-01^14:00^AF^AF^AF100^Y"

func testGeoIndex() *geo.Index {
	return geo.NewIndex([]geo.Location{
		{Code: "PAR", Latitude: 48.85341, Longitude: 2.3488, Country: "FR", Cities: []string{"PAR"}},
		{Code: "CDG", Latitude: 49.01278, Longitude: 2.55, Country: "FR", Cities: []string{"PAR"}},
		{Code: "ORY", Latitude: 48.72333, Longitude: 2.37944, Country: "FR", Cities: []string{"PAR"}},
		{Code: "NCE", Latitude: 43.66272, Longitude: 7.20787, Country: "FR", Cities: []string{"NCE"}},
		{Code: "NYC", Latitude: 40.71427, Longitude: -74.00597, Country: "US", Cities: []string{"NYC"}},
		{Code: "JFK", Latitude: 40.6398, Longitude: -73.7789, Country: "US", Cities: []string{"NYC"}},
		{Code: "AMS", Latitude: 52.30861, Longitude: 4.76389, Country: "NL", Cities: []string{"AMS"}},
	})
}

func testRates() *currency.RateTable {
	return currency.NewRateTable("2021-11-19", map[string]float64{"RUB": 82.8124, "USD": 1.1271})
}

func newTestEnricher() *SearchEnricher {
	return NewSearchEnricher(testGeoIndex(), testRates(), logger.NewNopLogger())
}

func decodeLines(t *testing.T, lines ...string) entity.SearchBatch {
	t.Helper()
	parser := utils.NewRecoParser(false, logger.NewNopLogger())
	var batch entity.SearchBatch
	for _, line := range lines {
		reco, err := parser.Decode([]byte(line))
		require.NoError(t, err)
		batch = append(batch, *reco)
	}
	return batch
}

func TestDecorate_EndToEndScenario(t *testing.T) {
	search, err := newTestEnricher().Decorate(decodeLines(t, scenarioLine))
	require.NoError(t, err)

	assert.Equal(t, "S1", search.SearchID)
	assert.Equal(t, entity.TripRoundTrip, search.TripType)
	assert.Equal(t, 31, search.AdvancePurchase)
	assert.Equal(t, 9, search.StayDuration)
	assert.Equal(t, "FR", search.OriginCountry)
	assert.Equal(t, "US", search.DestinationCountry)
	assert.Equal(t, entity.GeoInternational, search.Geo)
	assert.Equal(t, "PAR-NYC", search.OnD)
	assert.Equal(t, 5837, search.OnDDistance)
	assert.Equal(t, []entity.Passenger{{PassengerType: "ADT", PassengerNb: 1}}, search.Passengers)

	require.Len(t, search.Recos, 1)
	reco := search.Recos[0]
	assert.Equal(t, 500.0, reco.Price)
	assert.Equal(t, 500.0, reco.PriceEUR)
	assert.Equal(t, 50.0, reco.TaxesEUR)
	assert.Equal(t, 20.0, reco.FeesEUR)
	assert.Equal(t, "AF", reco.MainMarketingAirline)
	assert.Equal(t, "AF", reco.MainOperatingAirline)
	assert.Equal(t, "Y", reco.MainCabin)

	require.Len(t, reco.Flights, 1)
	flight := reco.Flights[0]
	assert.Equal(t, "PAR", flight.DepCity)
	assert.Equal(t, "NYC", flight.ArrCity)
	assert.Equal(t, 5834, flight.Distance)
	assert.Equal(t, flight.Distance, reco.FlownDistance)
}

func TestDecorate_OneWay(t *testing.T) {
	line := "1^S2^FR^2024-01-01^10:00:00^PAR^NCE^2024-01-03^^ADT=2,CHD=1^EUR^100^10^0^1^" +
		"ORY^2024-01-03^08:00^NCE^2024-01-03^09:30^^AF^AF7700^M"
	search, err := newTestEnricher().Decorate(decodeLines(t, line))
	require.NoError(t, err)

	assert.Equal(t, entity.TripOneWay, search.TripType)
	assert.Equal(t, -1, search.StayDuration)
	assert.Equal(t, 2, search.AdvancePurchase)
	assert.Equal(t, entity.GeoDomestic, search.Geo)
	assert.Len(t, search.Passengers, 2)
	assert.Equal(t, "AF", search.Recos[0].Flights[0].OperatingAirline)
	assert.Equal(t, "AF", search.Recos[0].MainOperatingAirline)
}

func TestDecorate_ReturnBeforeDepartureIsNegative(t *testing.T) {
	line := "1^S3^FR^2024-01-01^10:00:00^PAR^NYC^2024-02-10^2024-02-01^ADT=1^EUR^500^50^20^1^" +
		"CDG^2024-02-10^08:00^JFK^2024-02-10^14:00^AF^AF^AF100^Y"
	search, err := newTestEnricher().Decorate(decodeLines(t, line))
	require.NoError(t, err)
	assert.Equal(t, -9, search.StayDuration)
	assert.Equal(t, entity.TripRoundTrip, search.TripType)
}

func TestDecorate_AcceptsUnpaddedDates(t *testing.T) {
	line := replaceField(replaceField(replaceField(scenarioLine, 3, "2024-1-1"), 7, "2024-2-1"), 8, "2024-2-10")
	search, err := newTestEnricher().Decorate(decodeLines(t, line))
	require.NoError(t, err)
	assert.Equal(t, 31, search.AdvancePurchase)
	assert.Equal(t, 9, search.StayDuration)
}

func TestDaysBetween_LongSpans(t *testing.T) {
	from := time.Date(1700, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 118338, daysBetween(from, to))
	assert.Equal(t, -118338, daysBetween(to, from))
}

func TestDecorate_ConvertsWithSearchCurrency(t *testing.T) {
	line := "1^S4^RU^2024-01-01^10:00:00^PAR^NYC^2024-02-01^^ADT=1^RUB^10000^828.124^0^1^" +
		"CDG^2024-02-01^08:00^JFK^2024-02-01^14:00^AF^AF^AF100^Y"
	search, err := newTestEnricher().Decorate(decodeLines(t, line))
	require.NoError(t, err)

	reco := search.Recos[0]
	assert.Equal(t, 10000.0, reco.Price)
	assert.Equal(t, 120.75, reco.PriceEUR)
	assert.Equal(t, 10.0, reco.TaxesEUR)
	assert.Equal(t, 0.0, reco.FeesEUR)
}

func TestDecorate_DominantByDistance(t *testing.T) {
	// CDG-AMS is a short AF leg, AMS-JFK a long KL leg operated by DL.
	line := "1^S5^FR^2024-01-01^10:00:00^PAR^NYC^2024-02-01^^ADT=1^EUR^500^50^20^2^" +
		"CDG^2024-02-01^08:00^AMS^2024-02-01^09:20^AF^AF^AF1240^C^" +
		"AMS^2024-02-01^11:00^JFK^2024-02-01^13:00^DL^KL^KL641^M"
	search, err := newTestEnricher().Decorate(decodeLines(t, line))
	require.NoError(t, err)

	reco := search.Recos[0]
	assert.Equal(t, "KL", reco.MainMarketingAirline)
	assert.Equal(t, "DL", reco.MainOperatingAirline)
	assert.Equal(t, "M", reco.MainCabin)
	assert.Equal(t, reco.Flights[0].Distance+reco.Flights[1].Distance, reco.FlownDistance)
}

func TestDecorate_DoesNotMutateInput(t *testing.T) {
	line := "1^S2^FR^2024-01-01^10:00:00^PAR^NCE^2024-01-03^^ADT=1^EUR^100^10^0^1^" +
		"ORY^2024-01-03^08:00^NCE^2024-01-03^09:30^^AF^AF7700^M"
	batch := decodeLines(t, line)

	_, err := newTestEnricher().Decorate(batch)
	require.NoError(t, err)
	assert.Equal(t, "", batch[0].Flights[0].OperatingAirline)
}

func TestDecorate_FailuresDropWholeSearch(t *testing.T) {
	good := scenarioLine
	cases := map[string][]string{
		"bad search date":   {replaceField(good, 3, "01/01/2024")},
		"bad dep date":      {replaceField(good, 7, "soon")},
		"bad return date":   {replaceField(good, 8, "2024-13-01")},
		"bad passengers":    {replaceField(good, 9, "ADT")},
		"bad pax count":     {replaceField(good, 9, "ADT=one")},
		"empty passengers":  {replaceField(good, 9, "")},
		"unknown origin":    {replaceField(good, 5, "ZZZ")},
		"unknown currency":  {replaceField(good, 10, "XXX")},
		"bad price":         {replaceField(good, 11, "free")},
		"unknown airport":   {replaceField(good, 15, "ZZZ")},
		"second reco fails": {good, replaceField(good, 18, "ZZZ")},
		"no flights":        {"1^S1^FR^2024-01-01^10:00:00^PAR^NYC^2024-02-01^2024-02-10^ADT=1^EUR^500^50^20^0"},
	}
	for name, lines := range cases {
		t.Run(name, func(t *testing.T) {
			search, err := newTestEnricher().Decorate(decodeLines(t, lines...))
			assert.Nil(t, search)
			assert.ErrorIs(t, err, ErrDecoration)
		})
	}
}

func TestDecorate_UnknownLocationIsWrapped(t *testing.T) {
	_, err := newTestEnricher().Decorate(decodeLines(t, replaceField(scenarioLine, 6, "ZZZ")))
	assert.ErrorIs(t, err, geo.ErrUnknownLocation)
}

func TestDecorate_EmptyBatch(t *testing.T) {
	_, err := newTestEnricher().Decorate(nil)
	assert.ErrorIs(t, err, ErrDecoration)
}

func TestParsePassengers(t *testing.T) {
	pax, err := ParsePassengers("ADT=2,CHD=1,INF=1\n")
	require.NoError(t, err)
	assert.Equal(t, []entity.Passenger{
		{PassengerType: "ADT", PassengerNb: 2},
		{PassengerType: "CHD", PassengerNb: 1},
		{PassengerType: "INF", PassengerNb: 1},
	}, pax)
}

func TestDistanceTally_TieGoesToFirst(t *testing.T) {
	tally := newDistanceTally()
	tally.add("AF", 500)
	tally.add("KL", 300)
	tally.add("KL", 200)

	best, ok := tally.dominant()
	require.True(t, ok)
	assert.Equal(t, "AF", best)
}

func TestDistanceTally_Monotonic(t *testing.T) {
	legs := [][]struct {
		key string
		km  int
	}{
		{{"AF", 100}, {"KL", 300}},
		{{"KL", 300}, {"AF", 100}, {"DL", 50}},
		{{"AF", 100}},
	}
	for i, base := range legs {
		for _, target := range []string{"AF", "KL", "DL", "LH"} {
			t.Run(fmt.Sprintf("%d-%s", i, target), func(t *testing.T) {
				tally := newDistanceTally()
				longest := 0
				for _, leg := range base {
					tally.add(leg.key, leg.km)
					if leg.km > longest {
						longest = leg.km
					}
				}
				before, _ := tally.dominant()

				tally.add(target, longest+1)
				after, _ := tally.dominant()

				assert.True(t, after == before || after == target,
					"dominant moved from %s to %s after adding to %s", before, after, target)
			})
		}
	}
}

func replaceField(line string, index int, value string) string {
	fields := strings.Split(line, "^")
	fields[index] = value
	return strings.Join(fields, "^")
}
