package repository

import (
	"context"
	"time"

	"github.com/travel-data/reco-pipeline/internal/domain/entity"
	"github.com/travel-data/reco-pipeline/internal/domain/repository"

	"gorm.io/gorm"
)

// GormRecoRowRepository implements the RecoRowRepository interface
type GormRecoRowRepository struct {
	db    *gorm.DB
	table string
}

// NewGormRecoRowRepository creates a new GORM reco row repository writing to table
func NewGormRecoRowRepository(db *gorm.DB, table string) repository.RecoRowRepository {
	return &GormRecoRowRepository{
		db:    db,
		table: table,
	}
}

// RecoRows GORM model for database mapping. Column names match the
// lower-cased identifiers of the reporting table.
type RecoRows struct {
	SearchID        string    `gorm:"column:search_id;type:varchar"`
	SearchCountry   string    `gorm:"column:search_country;type:varchar"`
	OnD             string    `gorm:"column:ond;type:varchar"`
	TripType        string    `gorm:"column:trip_type;type:varchar"`
	MainAirline     string    `gorm:"column:main_airline;type:varchar"`
	PriceEUR        float64   `gorm:"column:price_eur;type:float"`
	AdvancePurchase int       `gorm:"column:advance_purchase;type:integer"`
	NumberOfFlights int       `gorm:"column:number_of_flights;type:integer"`
	SearchTime      time.Time `gorm:"column:search_time;type:timestamp"`
	Passengers      string    `gorm:"column:passengers;type:varchar"`
	Cabin           string    `gorm:"column:cabin;type:varchar"`
	StayDuration    int       `gorm:"column:stay_duration;type:integer"`
}

// EnsureTable creates the table when it does not exist. An existing table is
// left untouched.
func (r *GormRecoRowRepository) EnsureTable(ctx context.Context) error {
	migrator := r.db.WithContext(ctx).Table(r.table).Migrator()
	if migrator.HasTable(r.table) {
		return nil
	}
	return migrator.CreateTable(&RecoRows{})
}

// Insert writes one row in its own transaction
func (r *GormRecoRowRepository) Insert(ctx context.Context, row *entity.RecoRow) error {
	model := toRecoRowModel(row)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Table(r.table).Create(&model).Error
	})
}

func toRecoRowModel(row *entity.RecoRow) RecoRows {
	return RecoRows{
		SearchID:        row.SearchID,
		SearchCountry:   row.SearchCountry,
		OnD:             row.OnD,
		TripType:        row.TripType,
		MainAirline:     row.MainAirline,
		PriceEUR:        row.PriceEUR,
		AdvancePurchase: row.AdvancePurchase,
		NumberOfFlights: row.NumberOfFlights,
		SearchTime:      row.SearchTime,
		Passengers:      row.Passengers,
		Cabin:           row.Cabin,
		StayDuration:    row.StayDuration,
	}
}
