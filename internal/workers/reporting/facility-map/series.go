// internal/workers/reporting/facility-map/series.go
package facilitymap

import "facility-map/internal/models"

// Point is a facility projected onto the map.
type Point struct {
	Lon          float64
	Lat          float64
	Name         string
	City         string
	State        string
	BuildingType string
	BuildingUse  string
	Ownership    string
	SquareFeet   *float64
}

// Series is one legend entry: the facilities sharing a grouping value.
type Series struct {
	Label  string
	Color  string
	Points []Point
}

func newPoint(r models.FacilityRecord) Point {
	return Point{
		Lon:          r.Longitude,
		Lat:          r.Latitude,
		Name:         r.Name,
		City:         r.City,
		State:        r.State,
		BuildingType: r.BuildingType,
		BuildingUse:  r.BuildingUse,
		Ownership:    r.Ownership,
		SquareFeet:   r.SquareFeet,
	}
}

// AggregateSeries groups records by their groupBy value in first-seen order.
// Each record is colored by colorBy; a series takes the color of its first
// record.
func AggregateSeries(records []models.FacilityRecord, colorBy, groupBy models.Dimension) []Series {
	var series []Series
	index := make(map[string]int)

	for _, r := range records {
		key := r.Value(groupBy)
		i, ok := index[key]
		if !ok {
			i = len(series)
			index[key] = i
			series = append(series, Series{Label: key, Color: ClassifyColor(colorBy, r)})
		}
		series[i].Points = append(series[i].Points, newPoint(r))
	}
	return series
}
