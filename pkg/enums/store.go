package enums

import "fmt"

// StoreType represents the canonical store_type enum in Postgres.
type StoreType string

const (
	StoreTypeFlagship StoreType = "flagship"
	StoreTypeRegular  StoreType = "regular"
	StoreTypeOutlet   StoreType = "outlet"
	StoreTypeExpress  StoreType = "express"
)

var validStoreTypes = []StoreType{
	StoreTypeFlagship,
	StoreTypeRegular,
	StoreTypeOutlet,
	StoreTypeExpress,
}

// String implements fmt.Stringer.
func (s StoreType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StoreType.
func (s StoreType) IsValid() bool {
	for _, candidate := range validStoreTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStoreType converts raw input into a StoreType.
func ParseStoreType(value string) (StoreType, error) {
	for _, candidate := range validStoreTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid store type %q", value)
}

// StoreStatus captures the store operating lifecycle.
type StoreStatus string

const (
	StoreStatusActive            StoreStatus = "active"
	StoreStatusInactive          StoreStatus = "inactive"
	StoreStatusTemporarilyClosed StoreStatus = "temporarily_closed"
)

var validStoreStatuses = []StoreStatus{
	StoreStatusActive,
	StoreStatusInactive,
	StoreStatusTemporarilyClosed,
}

// String implements fmt.Stringer.
func (s StoreStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StoreStatus.
func (s StoreStatus) IsValid() bool {
	for _, candidate := range validStoreStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStoreStatus converts raw input into a StoreStatus.
func ParseStoreStatus(value string) (StoreStatus, error) {
	for _, candidate := range validStoreStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid store status %q", value)
}
