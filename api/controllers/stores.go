package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mariasandoval/storelocator-backend/api/responses"
	"github.com/mariasandoval/storelocator-backend/api/validators"
	"github.com/mariasandoval/storelocator-backend/internal/stores"
	"github.com/mariasandoval/storelocator-backend/pkg/enums"
	pkgerrors "github.com/mariasandoval/storelocator-backend/pkg/errors"
	"github.com/mariasandoval/storelocator-backend/pkg/logger"
	"github.com/mariasandoval/storelocator-backend/pkg/pagination"
)

type storeAddressBody struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type storeHoursBody struct {
	Mon *string `json:"mon"`
	Tue *string `json:"tue"`
	Wed *string `json:"wed"`
	Thu *string `json:"thu"`
	Fri *string `json:"fri"`
	Sat *string `json:"sat"`
	Sun *string `json:"sun"`
}

func (h storeHoursBody) toInput() stores.HoursInput {
	return stores.HoursInput{
		Mon: h.Mon, Tue: h.Tue, Wed: h.Wed, Thu: h.Thu,
		Fri: h.Fri, Sat: h.Sat, Sun: h.Sun,
	}
}

type createStoreBody struct {
	StoreID   string           `json:"store_id" validate:"required"`
	Name      string           `json:"name" validate:"required"`
	StoreType string           `json:"store_type" validate:"required"`
	Status    *string          `json:"status"`
	Latitude  *float64         `json:"latitude"`
	Longitude *float64         `json:"longitude"`
	Address   storeAddressBody `json:"address"`
	Phone     *string          `json:"phone"`
	Services  []string         `json:"services"`
	Hours     storeHoursBody   `json:"hours"`
}

type updateStoreBody struct {
	Name     *string        `json:"name"`
	Status   *string        `json:"status"`
	Phone    *string        `json:"phone"`
	Services *[]string      `json:"services"`
	Hours    storeHoursBody `json:"hours"`
}

// StoreCreate registers a new store, geocoding its address when no
// coordinates are supplied.
func StoreCreate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		var body createStoreBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		storeType, err := enums.ParseStoreType(body.StoreType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store_type"))
			return
		}

		input := stores.CreateStoreInput{
			StoreID:   body.StoreID,
			Name:      body.Name,
			StoreType: storeType,
			Latitude:  body.Latitude,
			Longitude: body.Longitude,
			Address: stores.AddressInput{
				Street:     body.Address.Street,
				City:       body.Address.City,
				State:      body.Address.State,
				PostalCode: body.Address.PostalCode,
				Country:    body.Address.Country,
			},
			Phone:    body.Phone,
			Services: body.Services,
			Hours:    body.Hours.toInput(),
		}
		if body.Status != nil {
			status, err := enums.ParseStoreStatus(*body.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}

		result, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// StoreGet fetches a single store by its external identifier.
func StoreGet(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		storeID := strings.TrimSpace(chi.URLParam(r, "storeID"))
		if storeID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "store id is required"))
			return
		}

		result, err := svc.GetByStoreID(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// StoreList returns a store page filtered by optional type and status.
func StoreList(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", pagination.DefaultPage, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pageSize, err := validators.ParseQueryInt(r, "page_size", pagination.DefaultPageSize, 1, pagination.MaxPageSize)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := stores.ListStoresInput{Page: pagination.Params{Page: page, PageSize: pageSize}}
		if raw := strings.TrimSpace(r.URL.Query().Get("store_type")); raw != "" {
			storeType, err := enums.ParseStoreType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store_type"))
				return
			}
			input.StoreType = &storeType
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseStoreStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}

		result, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// StoreUpdate patches the mutable store fields. Address and coordinates
// are immutable after creation.
func StoreUpdate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		storeID := strings.TrimSpace(chi.URLParam(r, "storeID"))
		if storeID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "store id is required"))
			return
		}

		var body updateStoreBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := stores.UpdateStoreInput{
			Name:     body.Name,
			Phone:    body.Phone,
			Services: body.Services,
			Hours:    body.Hours.toInput(),
		}
		if body.Status != nil {
			status, err := enums.ParseStoreStatus(*body.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}

		result, err := svc.Update(r.Context(), storeID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// StoreDeactivate soft-deletes a store. Repeated calls succeed.
func StoreDeactivate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		storeID := strings.TrimSpace(chi.URLParam(r, "storeID"))
		if storeID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "store id is required"))
			return
		}

		if err := svc.Deactivate(r.Context(), storeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteEmpty(w)
	}
}
