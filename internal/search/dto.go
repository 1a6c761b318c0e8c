package search

import (
	"github.com/mariasandoval/storelocator-backend/internal/stores"
	"github.com/mariasandoval/storelocator-backend/pkg/enums"
	"github.com/mariasandoval/storelocator-backend/pkg/pagination"
	"github.com/mariasandoval/storelocator-backend/pkg/types"
)

// Filters narrows the candidate set before ranking. All filters are
// conjunctive.
type Filters struct {
	RadiusMiles float64
	StoreType   *enums.StoreType
	Status      *enums.StoreStatus
	Services    []string
	OpenNow     bool
}

// Input is a proximity search request. Exactly one of Location or Address
// must be set.
type Input struct {
	Location *types.Coordinates
	Address  string
	Filters  Filters
	Page     pagination.Params
}

// ResultDTO is a store row in a search response, decorated with the
// distance from the query point and the open state at search time.
type ResultDTO struct {
	stores.StoreDTO
	DistanceMiles float64 `json:"distance_miles"`
	IsOpenNow     bool    `json:"is_open_now"`
}

// ResultPageDTO is one ranked page of search results. This is the payload
// cached verbatim under the request fingerprint.
type ResultPageDTO struct {
	Data       []ResultDTO       `json:"data"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
	Origin     types.Coordinates `json:"origin"`
}
