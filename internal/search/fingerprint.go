package search

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mariasandoval/storelocator-backend/internal/geocode"
	"github.com/mariasandoval/storelocator-backend/pkg/pagination"
)

// fingerprint derives the result-cache key material for a normalized
// request. Identical (location-or-address, filters, page) tuples hash to
// the same value regardless of field ordering or address spelling
// variations.
func fingerprint(input Input, page pagination.Params) string {
	var location string
	if input.Location != nil {
		location = strconv.FormatFloat(input.Location.Latitude, 'g', -1, 64) +
			"," + strconv.FormatFloat(input.Location.Longitude, 'g', -1, 64)
	} else {
		location = geocode.Normalize(input.Address)
	}

	storeType := ""
	if input.Filters.StoreType != nil {
		storeType = input.Filters.StoreType.String()
	}
	status := ""
	if input.Filters.Status != nil {
		status = input.Filters.Status.String()
	}

	services := make([]string, 0, len(input.Filters.Services))
	for _, svc := range input.Filters.Services {
		svc = strings.ToLower(strings.TrimSpace(svc))
		if svc != "" {
			services = append(services, svc)
		}
	}
	sort.Strings(services)

	openNow := ""
	if input.Filters.OpenNow {
		openNow = "open"
	}

	canonical := strings.Join([]string{
		location,
		strconv.FormatFloat(input.Filters.RadiusMiles, 'g', -1, 64),
		storeType,
		status,
		strings.Join(services, ","),
		openNow,
		fmt.Sprintf("%d:%d", page.Page, page.PageSize),
	}, "|")

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
