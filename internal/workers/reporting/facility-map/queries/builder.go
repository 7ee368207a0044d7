// internal/workers/reporting/facility-map/queries/builder.go
package queries

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"facility-map/internal/models"
)

// BuildFacilityQuery returns the facility projection over table, restricted to
// geolocated rows and to every filter with at least one value. Values are
// upper-cased and bound as $n arguments; the returned args line up with them.
func BuildFacilityQuery(table string, filters []models.Filter) (string, []interface{}) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(models.FacilityColumns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(pq.QuoteIdentifier(table))
	b.WriteString(" WHERE LATITUDE IS NOT NULL AND LONGITUDE IS NOT NULL")

	var args []interface{}
	for _, f := range filters {
		if len(f.Values) == 0 {
			continue
		}
		column, ok := models.LookupColumn(f.Column)
		if !ok {
			continue
		}

		placeholders := make([]string, len(f.Values))
		for i, v := range f.Values {
			args = append(args, strings.ToUpper(v))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		fmt.Fprintf(&b, " AND UPPER(%s) IN (%s)", column, strings.Join(placeholders, ", "))
	}

	return b.String(), args
}
