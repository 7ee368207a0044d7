package queries

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"facility-map/internal/models"
)

const baseQuery = `SELECT BUILDING_NAME, BUILDING_TYPE, BUILDING_USE, CITY, STATE, FULL_ADDRESS, LATITUDE, LONGITUDE, OWN_LEASE, SQUARE_FEET, YEAR_BUILT FROM "facility_map" WHERE LATITUDE IS NOT NULL AND LONGITUDE IS NOT NULL`

func TestBuildFacilityQuery(t *testing.T) {
	tests := []struct {
		name      string
		filters   []models.Filter
		wantQuery string
		wantArgs  []interface{}
	}{
		{
			name:      "no filters",
			wantQuery: baseQuery,
		},
		{
			name: "single filter upper-cases values",
			filters: []models.Filter{
				{Column: models.ColumnState, Values: []string{"ca", "Wa"}},
			},
			wantQuery: baseQuery + " AND UPPER(STATE) IN ($1, $2)",
			wantArgs:  []interface{}{"CA", "WA"},
		},
		{
			name: "placeholders continue across filters",
			filters: []models.Filter{
				{Column: models.ColumnState, Values: []string{"CA"}},
				{Column: models.ColumnOwnLease, Values: []string{"own", "lease"}},
			},
			wantQuery: baseQuery + " AND UPPER(STATE) IN ($1) AND UPPER(OWN_LEASE) IN ($2, $3)",
			wantArgs:  []interface{}{"CA", "OWN", "LEASE"},
		},
		{
			name: "empty and unknown filters add no clause",
			filters: []models.Filter{
				{Column: models.ColumnBuildingUse},
				{Column: "PASSWORD", Values: []string{"x"}},
				{Column: "building_use", Values: []string{"acute"}},
			},
			wantQuery: baseQuery + " AND UPPER(BUILDING_USE) IN ($1)",
			wantArgs:  []interface{}{"ACUTE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := BuildFacilityQuery("facility_map", tt.filters)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildFacilityQuery_OneClausePerNonEmptyFilter(t *testing.T) {
	filters := []models.Filter{
		{Column: models.ColumnState, Values: []string{"CA"}},
		{Column: models.ColumnBuildingType, Values: nil},
		{Column: models.ColumnBuildingUse, Values: []string{"ACUTE", "ADMIN"}},
		{Column: models.ColumnCity, Values: []string{"Austin"}},
	}

	query, args := BuildFacilityQuery("facility_map", filters)

	assert.Equal(t, 3, strings.Count(query, " IN ("))
	assert.Len(t, args, 4)
	assert.NotContains(t, query, "Austin")
}

func TestBuildFacilityQuery_QuotesTable(t *testing.T) {
	query, _ := BuildFacilityQuery(`facility"; DROP TABLE x; --`, nil)
	assert.Contains(t, query, `FROM "facility""; DROP TABLE x; --"`)
}
