// internal/workers/reporting/facility-map/queries/records.go
package queries

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"facility-map/internal/models"
)

var ErrUnusableResult = errors.New("query result has no usable shape")

// ToRecords converts a query result into facility records. Rows without a
// numeric latitude and longitude are dropped and counted in skipped.
func ToRecords(result *QueryResult) (records []models.FacilityRecord, skipped int, err error) {
	if result == nil {
		return nil, 0, ErrUnusableResult
	}

	index := make(map[string]int, len(result.Columns))
	for i, c := range result.Columns {
		index[strings.ToUpper(c)] = i
	}
	for _, required := range []string{models.ColumnLatitude, models.ColumnLongitude} {
		if _, ok := index[required]; !ok {
			return nil, 0, fmt.Errorf("%w: missing column %s", ErrUnusableResult, required)
		}
	}

	records = make([]models.FacilityRecord, 0, len(result.Rows))
	for _, row := range result.Rows {
		get := func(column string) interface{} {
			i, ok := index[column]
			if !ok || i >= len(row) {
				return nil
			}
			return row[i]
		}

		lat, latOK := toFloat(get(models.ColumnLatitude))
		lon, lonOK := toFloat(get(models.ColumnLongitude))
		if !latOK || !lonOK {
			skipped++
			continue
		}

		rec := models.FacilityRecord{
			Name:         toString(get(models.ColumnBuildingName)),
			BuildingType: toString(get(models.ColumnBuildingType)),
			BuildingUse:  toString(get(models.ColumnBuildingUse)),
			City:         toString(get(models.ColumnCity)),
			State:        toString(get(models.ColumnState)),
			Address:      toString(get(models.ColumnFullAddress)),
			Latitude:     lat,
			Longitude:    lon,
			Ownership:    toString(get(models.ColumnOwnLease)),
		}
		if sqft, ok := toFloat(get(models.ColumnSquareFeet)); ok {
			rec.SquareFeet = &sqft
		}
		if year, ok := toFloat(get(models.ColumnYearBuilt)); ok {
			y := int(year)
			rec.YearBuilt = &y
		}
		records = append(records, rec)
	}

	return records, skipped, nil
}

func toString(v interface{}) string {
	if v == nil {
		return ""
	}
	return cast.ToString(v)
}

// toFloat reports false for nil, non-numeric and NaN values.
func toFloat(v interface{}) (float64, bool) {
	if v == nil {
		return 0, false
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
