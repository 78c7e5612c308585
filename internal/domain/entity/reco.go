package entity

// RawRecoLine is one decoded flat reco record. The first fields are shared by
// every reco of the same search, the rest describe the reco itself.
type RawRecoLine struct {
	VersionNb         string
	SearchID          string
	SearchCountry     string
	SearchDate        string
	SearchTime        string
	OriginCity        string
	DestinationCity   string
	RequestDepDate    string
	RequestReturnDate string
	PassengersString  string
	Currency          string
	Price             string
	Taxes             string
	Fees              string
	NbOfFlights       int
	Flights           []Flight
}

// Flight is one leg of a reco as found on the wire.
type Flight struct {
	DepAirport       string `json:"dep_airport"`
	DepDate          string `json:"dep_date"`
	DepTime          string `json:"dep_time"`
	ArrAirport       string `json:"arr_airport"`
	ArrDate          string `json:"arr_date"`
	ArrTime          string `json:"arr_time"`
	OperatingAirline string `json:"operating_airline"`
	MarketingAirline string `json:"marketing_airline"`
	FlightNb         string `json:"flight_nb"`
	Cabin            string `json:"cabin"`
}

// Passenger is one "TYPE=count" entry of the passengers string.
type Passenger struct {
	PassengerType string `json:"passenger_type"`
	PassengerNb   int    `json:"passenger_nb"`
}

// SearchBatch is the contiguous run of recos sharing one search id, in arrival order.
type SearchBatch []RawRecoLine

// SearchID returns the id shared by the batch, or "" for an empty batch.
func (b SearchBatch) SearchID() string {
	if len(b) == 0 {
		return ""
	}
	return b[0].SearchID
}
