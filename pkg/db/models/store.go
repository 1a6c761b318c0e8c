package models

import (
	"time"

	"github.com/lib/pq"

	"github.com/mariasandoval/storelocator-backend/pkg/enums"
)

// Store represents a physical retail location.
type Store struct {
	StoreID           string            `gorm:"column:store_id;primaryKey"`
	Name              string            `gorm:"column:name;not null"`
	StoreType         enums.StoreType   `gorm:"column:store_type;type:store_type;not null"`
	Status            enums.StoreStatus `gorm:"column:status;type:store_status;not null;default:'active'"`
	Latitude          float64           `gorm:"column:latitude;not null"`
	Longitude         float64           `gorm:"column:longitude;not null"`
	AddressStreet     string            `gorm:"column:address_street;not null"`
	AddressCity       string            `gorm:"column:address_city;not null"`
	AddressState      string            `gorm:"column:address_state;not null"`
	AddressPostalCode string            `gorm:"column:address_postal_code;not null"`
	AddressCountry    string            `gorm:"column:address_country;not null;default:'US'"`
	Phone             *string           `gorm:"column:phone"`
	Services          pq.StringArray    `gorm:"column:services;type:text[]"`
	HoursMon          string            `gorm:"column:hours_mon;not null;default:'closed'"`
	HoursTue          string            `gorm:"column:hours_tue;not null;default:'closed'"`
	HoursWed          string            `gorm:"column:hours_wed;not null;default:'closed'"`
	HoursThu          string            `gorm:"column:hours_thu;not null;default:'closed'"`
	HoursFri          string            `gorm:"column:hours_fri;not null;default:'closed'"`
	HoursSat          string            `gorm:"column:hours_sat;not null;default:'closed'"`
	HoursSun          string            `gorm:"column:hours_sun;not null;default:'closed'"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// HoursFor returns the hours string for the given weekday.
func (s Store) HoursFor(day time.Weekday) string {
	switch day {
	case time.Monday:
		return s.HoursMon
	case time.Tuesday:
		return s.HoursTue
	case time.Wednesday:
		return s.HoursWed
	case time.Thursday:
		return s.HoursThu
	case time.Friday:
		return s.HoursFri
	case time.Saturday:
		return s.HoursSat
	case time.Sunday:
		return s.HoursSun
	}
	return "closed"
}
