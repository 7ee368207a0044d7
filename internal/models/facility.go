// internal/models/facility.go
package models

import "strings"

// Column names returned by the facility query service.
const (
	ColumnBuildingName = "BUILDING_NAME"
	ColumnBuildingType = "BUILDING_TYPE"
	ColumnBuildingUse  = "BUILDING_USE"
	ColumnCity         = "CITY"
	ColumnState        = "STATE"
	ColumnFullAddress  = "FULL_ADDRESS"
	ColumnLatitude     = "LATITUDE"
	ColumnLongitude    = "LONGITUDE"
	ColumnOwnLease     = "OWN_LEASE"
	ColumnSquareFeet   = "SQUARE_FEET"
	ColumnYearBuilt    = "YEAR_BUILT"
)

// FacilityColumns is the projection order of the facility query.
var FacilityColumns = []string{
	ColumnBuildingName,
	ColumnBuildingType,
	ColumnBuildingUse,
	ColumnCity,
	ColumnState,
	ColumnFullAddress,
	ColumnLatitude,
	ColumnLongitude,
	ColumnOwnLease,
	ColumnSquareFeet,
	ColumnYearBuilt,
}

// LookupColumn maps a filter dimension ("state", "own_lease", "BUILDING_USE")
// to its column name.
func LookupColumn(dimension string) (string, bool) {
	want := strings.ToUpper(strings.TrimSpace(dimension))
	for _, c := range FacilityColumns {
		if c == want {
			return c, true
		}
	}
	return "", false
}

// Dimension is a classification dimension markers can be colored by.
type Dimension string

const (
	DimensionBuildingUse  Dimension = "building_use"
	DimensionOwnLease     Dimension = "own_lease"
	DimensionBuildingType Dimension = "building_type"
	DimensionState        Dimension = "state"
)

// Dimensions lists the accepted color_by values.
var Dimensions = []Dimension{
	DimensionBuildingUse,
	DimensionOwnLease,
	DimensionBuildingType,
	DimensionState,
}

// ParseDimension returns DimensionBuildingUse for anything outside Dimensions.
func ParseDimension(s string) Dimension {
	d := Dimension(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Dimensions {
		if d == known {
			return d
		}
	}
	return DimensionBuildingUse
}

// Filter restricts fetched rows to those whose Column is one of Values.
type Filter struct {
	Column string
	Values []string
}

// FacilityRecord is one fetched facility. Missing text columns are "";
// SquareFeet and YearBuilt are nil when the source value is null.
type FacilityRecord struct {
	Name         string
	BuildingType string
	BuildingUse  string
	City         string
	State        string
	Address      string
	Latitude     float64
	Longitude    float64
	Ownership    string
	SquareFeet   *float64
	YearBuilt    *int
}

// Value returns the record's value for a classification dimension, or ""
// for a dimension the record does not carry.
func (r FacilityRecord) Value(d Dimension) string {
	switch d {
	case DimensionBuildingUse:
		return r.BuildingUse
	case DimensionOwnLease:
		return r.Ownership
	case DimensionBuildingType:
		return r.BuildingType
	case DimensionState:
		return r.State
	default:
		return ""
	}
}
