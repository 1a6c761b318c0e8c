package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/mariasandoval/storelocator-backend/internal/stores"
	"github.com/mariasandoval/storelocator-backend/pkg/config"
	"github.com/mariasandoval/storelocator-backend/pkg/db/models"
	"github.com/mariasandoval/storelocator-backend/pkg/enums"
	pkgerrors "github.com/mariasandoval/storelocator-backend/pkg/errors"
	"github.com/mariasandoval/storelocator-backend/pkg/logger"
	"github.com/mariasandoval/storelocator-backend/pkg/types"
)

const defaultConcurrency = 4

type storeRepository interface {
	FindByStoreID(ctx context.Context, storeID string) (*models.Store, error)
	Create(ctx context.Context, store *models.Store) error
	Update(ctx context.Context, store *models.Store) error
}

type geocodeResolver interface {
	Resolve(ctx context.Context, input string) (types.Coordinates, error)
}

// RowResult records the outcome of one input row.
type RowResult struct {
	RowNumber int                   `json:"row_number"`
	StoreID   string                `json:"store_id"`
	Status    enums.ImportRowStatus `json:"status"`
	Error     string                `json:"error,omitempty"`
}

// Report aggregates a completed import batch. Results preserve input row
// order regardless of processing order.
type Report struct {
	TotalRows int         `json:"total_rows"`
	Created   int         `json:"created"`
	Updated   int         `json:"updated"`
	Failed    int         `json:"failed"`
	Results   []RowResult `json:"results"`
}

// Service reconciles bulk CSV uploads against the store table.
type Service interface {
	ImportCSV(ctx context.Context, upload io.Reader) (*Report, error)
}

type service struct {
	repo        storeRepository
	geocoder    geocodeResolver
	logg        *logger.Logger
	concurrency int
	maxRows     int
}

// ServiceParams collects the import service dependencies.
type ServiceParams struct {
	Repo     storeRepository
	Geocoder geocodeResolver
	Logger   *logger.Logger
	Config   config.ImportConfig
}

// NewService builds the import reconciler.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	if params.Geocoder == nil {
		return nil, fmt.Errorf("geocode resolver required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	concurrency := params.Config.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	return &service{
		repo:        params.Repo,
		geocoder:    params.Geocoder,
		logg:        params.Logger,
		concurrency: concurrency,
		maxRows:     params.Config.MaxRows,
	}, nil
}

func (s *service) ImportCSV(ctx context.Context, upload io.Reader) (*Report, error) {
	rows, err := parseCSV(upload, s.maxRows)
	if err != nil {
		return nil, err
	}

	// Rows are independent; results land at the row's input index so the
	// report order never depends on completion order.
	results := make([]RowResult, len(rows))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)
	for i := range rows {
		i := i
		group.Go(func() error {
			results[i] = s.processRow(groupCtx, i+1, rows[i])
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "import worker")
	}

	report := &Report{TotalRows: len(rows), Results: results}
	for _, result := range results {
		switch result.Status {
		case enums.ImportRowCreated:
			report.Created++
		case enums.ImportRowUpdated:
			report.Updated++
		default:
			report.Failed++
		}
	}
	s.logg.Info(ctx, fmt.Sprintf("import finished: %d rows, %d created, %d updated, %d failed",
		report.TotalRows, report.Created, report.Updated, report.Failed))
	return report, nil
}

func (s *service) processRow(ctx context.Context, rowNumber int, row rawRow) RowResult {
	result := RowResult{RowNumber: rowNumber, StoreID: row.StoreID, Status: enums.ImportRowFailed}

	if err := ctx.Err(); err != nil {
		result.Error = "import canceled"
		return result
	}
	if row.ParseErr != nil {
		result.Error = row.ParseErr.Error()
		return result
	}

	parsed, err := validateRow(row)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	existing, err := s.repo.FindByStoreID(ctx, parsed.storeID)
	switch {
	case err == nil:
		if err := s.updateExisting(ctx, existing, parsed); err != nil {
			result.Error = err.Error()
			return result
		}
		result.Status = enums.ImportRowUpdated
		return result
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.createNew(ctx, parsed); err != nil {
			result.Error = err.Error()
			return result
		}
		result.Status = enums.ImportRowCreated
		return result
	default:
		result.Error = fmt.Sprintf("lookup store: %v", err)
		return result
	}
}

// updateExisting applies the mutable fields only. Address and coordinates
// are fixed once a store exists, matching the PATCH restriction.
func (s *service) updateExisting(ctx context.Context, store *models.Store, parsed parsedRow) error {
	store.Name = parsed.name
	store.StoreType = parsed.storeType
	store.Status = parsed.status
	store.Phone = parsed.phone
	store.Services = parsed.services
	store.HoursMon = parsed.hours[0]
	store.HoursTue = parsed.hours[1]
	store.HoursWed = parsed.hours[2]
	store.HoursThu = parsed.hours[3]
	store.HoursFri = parsed.hours[4]
	store.HoursSat = parsed.hours[5]
	store.HoursSun = parsed.hours[6]
	if err := s.repo.Update(ctx, store); err != nil {
		return fmt.Errorf("update store: %w", err)
	}
	return nil
}

func (s *service) createNew(ctx context.Context, parsed parsedRow) error {
	coords := parsed.coords
	if coords == nil {
		resolved, err := s.geocoder.Resolve(ctx, parsed.formattedAddress())
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil {
				return fmt.Errorf("geocode address: %s", typed.Message())
			}
			return fmt.Errorf("geocode address: %v", err)
		}
		coords = &resolved
	}

	store := &models.Store{
		StoreID:           parsed.storeID,
		Name:              parsed.name,
		StoreType:         parsed.storeType,
		Status:            parsed.status,
		Latitude:          coords.Latitude,
		Longitude:         coords.Longitude,
		AddressStreet:     parsed.street,
		AddressCity:       parsed.city,
		AddressState:      parsed.state,
		AddressPostalCode: parsed.postalCode,
		AddressCountry:    parsed.country,
		Phone:             parsed.phone,
		Services:          parsed.services,
		HoursMon:          parsed.hours[0],
		HoursTue:          parsed.hours[1],
		HoursWed:          parsed.hours[2],
		HoursThu:          parsed.hours[3],
		HoursFri:          parsed.hours[4],
		HoursSat:          parsed.hours[5],
		HoursSun:          parsed.hours[6],
	}
	if err := s.repo.Create(ctx, store); err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	return nil
}

// parsedRow is a validated row ready for reconciliation.
type parsedRow struct {
	storeID    string
	name       string
	storeType  enums.StoreType
	status     enums.StoreStatus
	coords     *types.Coordinates
	street     string
	city       string
	state      string
	postalCode string
	country    string
	phone      *string
	services   []string
	hours      [7]string
}

func (p parsedRow) formattedAddress() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s", p.street, p.city, p.state, p.postalCode, p.country)
}

func validateRow(row rawRow) (parsedRow, error) {
	parsed := parsedRow{
		storeID:    row.StoreID,
		name:       row.Name,
		street:     row.AddressStreet,
		city:       row.AddressCity,
		state:      row.AddressState,
		postalCode: row.AddressPostal,
		country:    row.AddressCtry,
		services:   splitServices(row.Services),
	}
	if parsed.storeID == "" {
		return parsedRow{}, fmt.Errorf("store_id is required")
	}
	if parsed.name == "" {
		return parsedRow{}, fmt.Errorf("name is required")
	}

	storeType, err := enums.ParseStoreType(row.StoreType)
	if err != nil {
		return parsedRow{}, err
	}
	parsed.storeType = storeType

	parsed.status = enums.StoreStatusActive
	if row.Status != "" {
		status, err := enums.ParseStoreStatus(row.Status)
		if err != nil {
			return parsedRow{}, err
		}
		parsed.status = status
	}

	hasLat := row.Latitude != ""
	hasLon := row.Longitude != ""
	if hasLat != hasLon {
		return parsedRow{}, fmt.Errorf("latitude and longitude must be provided together")
	}
	if hasLat {
		lat, err := strconv.ParseFloat(row.Latitude, 64)
		if err != nil {
			return parsedRow{}, fmt.Errorf("invalid latitude %q", row.Latitude)
		}
		lon, err := strconv.ParseFloat(row.Longitude, 64)
		if err != nil {
			return parsedRow{}, fmt.Errorf("invalid longitude %q", row.Longitude)
		}
		coords := types.Coordinates{Latitude: lat, Longitude: lon}
		if err := coords.Validate(); err != nil {
			return parsedRow{}, err
		}
		parsed.coords = &coords
	} else if parsed.street == "" || parsed.city == "" || parsed.state == "" || parsed.postalCode == "" {
		return parsedRow{}, fmt.Errorf("either coordinates or a complete address is required")
	}

	if parsed.country == "" {
		parsed.country = "US"
	}
	if row.Phone != "" {
		phone := row.Phone
		parsed.phone = &phone
	}

	for i, value := range row.Hours {
		if value == "" {
			parsed.hours[i] = stores.HoursClosed
			continue
		}
		if err := stores.ValidateHours(value); err != nil {
			return parsedRow{}, err
		}
		parsed.hours[i] = value
	}
	return parsed, nil
}
