package controllers

import (
	"net/http"

	"github.com/mariasandoval/storelocator-backend/api/responses"
	"github.com/mariasandoval/storelocator-backend/api/validators"
	"github.com/mariasandoval/storelocator-backend/internal/search"
	"github.com/mariasandoval/storelocator-backend/pkg/enums"
	pkgerrors "github.com/mariasandoval/storelocator-backend/pkg/errors"
	"github.com/mariasandoval/storelocator-backend/pkg/logger"
	"github.com/mariasandoval/storelocator-backend/pkg/pagination"
	"github.com/mariasandoval/storelocator-backend/pkg/types"
)

type searchLocationBody struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type searchFiltersBody struct {
	RadiusMiles float64  `json:"radius_miles"`
	StoreType   *string  `json:"store_type"`
	Status      *string  `json:"status"`
	Services    []string `json:"services"`
	OpenNow     bool     `json:"open_now"`
}

type searchBody struct {
	Location *searchLocationBody `json:"location"`
	Address  string              `json:"address"`
	Filters  searchFiltersBody   `json:"filters"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

// StoreSearch ranks stores by distance from a point or a free-form address.
func StoreSearch(svc search.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "search service unavailable"))
			return
		}

		var body searchBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := search.Input{
			Address: body.Address,
			Filters: search.Filters{
				RadiusMiles: body.Filters.RadiusMiles,
				Services:    body.Filters.Services,
				OpenNow:     body.Filters.OpenNow,
			},
			Page: pagination.Params{Page: body.Page, PageSize: body.PageSize},
		}

		if body.Location != nil && (body.Location.Latitude != nil || body.Location.Longitude != nil) {
			if body.Location.Latitude == nil || body.Location.Longitude == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "latitude and longitude must be provided together"))
				return
			}
			input.Location = &types.Coordinates{Latitude: *body.Location.Latitude, Longitude: *body.Location.Longitude}
		}
		if body.Filters.StoreType != nil {
			storeType, err := enums.ParseStoreType(*body.Filters.StoreType)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store_type"))
				return
			}
			input.Filters.StoreType = &storeType
		}
		if body.Filters.Status != nil {
			status, err := enums.ParseStoreStatus(*body.Filters.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Filters.Status = &status
		}

		result, err := svc.Search(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
