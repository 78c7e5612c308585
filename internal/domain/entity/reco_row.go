package entity

import "time"

// RecoRow is one persisted reco with its search fields denormalized onto it.
type RecoRow struct {
	SearchID        string
	SearchCountry   string
	OnD             string
	TripType        string
	MainAirline     string
	PriceEUR        float64
	AdvancePurchase int
	NumberOfFlights int
	SearchTime      time.Time
	Passengers      string
	Cabin           string
	StayDuration    int
}
