package entity

// Trip types
const (
	TripOneWay    = "OW"
	TripRoundTrip = "RT"
)

// Geo values
const (
	GeoDomestic      = "D"
	GeoInternational = "I"
)

// DecoratedSearch is the enriched, grouped search published downstream.
// JSON names follow the decorated-recos topic contract.
type DecoratedSearch struct {
	VersionNb          string          `json:"version_nb"`
	SearchID           string          `json:"search_id"`
	SearchCountry      string          `json:"search_country"`
	SearchDate         string          `json:"search_date"`
	SearchTime         string          `json:"search_time"`
	OriginCity         string          `json:"origin_city"`
	DestinationCity    string          `json:"destination_city"`
	RequestDepDate     string          `json:"request_dep_date"`
	RequestReturnDate  string          `json:"request_return_date"`
	PassengersString   string          `json:"passengers_string"`
	Currency           string          `json:"currency"`
	AdvancePurchase    int             `json:"advance_purchase"`
	StayDuration       int             `json:"stay_duration"`
	TripType           string          `json:"trip_type"`
	Passengers         []Passenger     `json:"passengers"`
	OriginCountry      string          `json:"origin_country"`
	DestinationCountry string          `json:"destination_country"`
	Geo                string          `json:"geo"`
	OnD                string          `json:"OnD"`
	OnDDistance        int             `json:"OnD_distance"`
	Recos              []DecoratedReco `json:"recos"`
}

// DecoratedReco carries the reco-level fields plus EUR prices and
// distance-weighted dominant airline and cabin.
type DecoratedReco struct {
	Price                float64           `json:"price"`
	Taxes                float64           `json:"taxes"`
	Fees                 float64           `json:"fees"`
	PriceEUR             float64           `json:"price_EUR"`
	TaxesEUR             float64           `json:"taxes_EUR"`
	FeesEUR              float64           `json:"fees_EUR"`
	NbOfFlights          int               `json:"nb_of_flights"`
	Flights              []DecoratedFlight `json:"flights"`
	FlownDistance        int               `json:"flown_distance"`
	MainMarketingAirline string            `json:"main_marketing_airline"`
	MainOperatingAirline string            `json:"main_operating_airline"`
	MainCabin            string            `json:"main_cabin"`
}

// DecoratedFlight is a Flight with its cities and rounded distance resolved.
// OperatingAirline is never empty here: it defaults to the marketing airline.
type DecoratedFlight struct {
	Flight
	DepCity  string `json:"dep_city"`
	ArrCity  string `json:"arr_city"`
	Distance int    `json:"distance"`
}
