package stores

import (
	"time"

	"github.com/mariasandoval/storelocator-backend/pkg/db/models"
	"github.com/mariasandoval/storelocator-backend/pkg/enums"
)

// AddressDTO is the postal address block returned with every store.
type AddressDTO struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// HoursDTO carries the weekly schedule, one entry per day.
type HoursDTO struct {
	Mon string `json:"mon"`
	Tue string `json:"tue"`
	Wed string `json:"wed"`
	Thu string `json:"thu"`
	Fri string `json:"fri"`
	Sat string `json:"sat"`
	Sun string `json:"sun"`
}

// For returns the hours string for the given weekday.
func (h HoursDTO) For(day time.Weekday) string {
	switch day {
	case time.Monday:
		return h.Mon
	case time.Tuesday:
		return h.Tue
	case time.Wednesday:
		return h.Wed
	case time.Thursday:
		return h.Thu
	case time.Friday:
		return h.Fri
	case time.Saturday:
		return h.Sat
	case time.Sunday:
		return h.Sun
	}
	return HoursClosed
}

// StoreDTO exposes store data in API responses.
type StoreDTO struct {
	StoreID   string            `json:"store_id"`
	Name      string            `json:"name"`
	StoreType enums.StoreType   `json:"store_type"`
	Status    enums.StoreStatus `json:"status"`
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	Address   AddressDTO        `json:"address"`
	Phone     *string           `json:"phone,omitempty"`
	Services  []string          `json:"services"`
	Hours     HoursDTO          `json:"hours"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// StorePageDTO is one page of stores with pagination metadata.
type StorePageDTO struct {
	Stores     []StoreDTO `json:"stores"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	Total      int64      `json:"total"`
	TotalPages int        `json:"total_pages"`
}

// FromModel maps the persisted store into a DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}

	services := make([]string, len(m.Services))
	copy(services, m.Services)

	dto := &StoreDTO{
		StoreID:   m.StoreID,
		Name:      m.Name,
		StoreType: m.StoreType,
		Status:    m.Status,
		Latitude:  m.Latitude,
		Longitude: m.Longitude,
		Address: AddressDTO{
			Street:     m.AddressStreet,
			City:       m.AddressCity,
			State:      m.AddressState,
			PostalCode: m.AddressPostalCode,
			Country:    m.AddressCountry,
		},
		Services: services,
		Hours: HoursDTO{
			Mon: m.HoursMon,
			Tue: m.HoursTue,
			Wed: m.HoursWed,
			Thu: m.HoursThu,
			Fri: m.HoursFri,
			Sat: m.HoursSat,
			Sun: m.HoursSun,
		},
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}

	if m.Phone != nil {
		cpy := *m.Phone
		dto.Phone = &cpy
	}

	return dto
}
