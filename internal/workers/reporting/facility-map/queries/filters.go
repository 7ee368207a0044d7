// internal/workers/reporting/facility-map/queries/filters.go
package queries

import (
	"github.com/spf13/cast"
	"github.com/xeipuuv/gojsonschema"

	"facility-map/internal/models"
)

const filterSchemaJSON = `{
	"type": "object",
	"required": ["dim", "val"],
	"properties": {
		"dim": {"type": "string", "minLength": 1},
		"val": {"type": "array", "items": {"type": ["string", "number", "boolean", "null"]}}
	}
}`

var filterSchema = mustSchema(filterSchemaJSON)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(err)
	}
	return schema
}

// SkippedFilter records why a raw filter entry was dropped.
type SkippedFilter struct {
	Index  int
	Reason string
}

// ParseFilters converts raw {"dim": ..., "val": [...]} entries into filters.
// Entries that are not objects, lack dim or val, carry a non-list val, have
// no values or name an unknown column are skipped and reported. Null values
// are dropped; an entry is skipped only when nothing else is left.
func ParseFilters(raw []interface{}) ([]models.Filter, []SkippedFilter) {
	var (
		filters []models.Filter
		skipped []SkippedFilter
	)

	for i, entry := range raw {
		result, err := filterSchema.Validate(gojsonschema.NewGoLoader(entry))
		if err != nil {
			skipped = append(skipped, SkippedFilter{Index: i, Reason: err.Error()})
			continue
		}
		if !result.Valid() {
			reason := "invalid filter"
			if errs := result.Errors(); len(errs) > 0 {
				reason = errs[0].String()
			}
			skipped = append(skipped, SkippedFilter{Index: i, Reason: reason})
			continue
		}

		obj, err := cast.ToStringMapE(entry)
		if err != nil {
			skipped = append(skipped, SkippedFilter{Index: i, Reason: err.Error()})
			continue
		}
		dim := cast.ToString(obj["dim"])
		column, ok := models.LookupColumn(dim)
		if !ok {
			skipped = append(skipped, SkippedFilter{Index: i, Reason: "unknown dimension " + dim})
			continue
		}

		values, err := filterValues(obj["val"])
		if err != nil {
			skipped = append(skipped, SkippedFilter{Index: i, Reason: err.Error()})
			continue
		}
		if len(values) == 0 {
			skipped = append(skipped, SkippedFilter{Index: i, Reason: "no values"})
			continue
		}

		filters = append(filters, models.Filter{Column: column, Values: values})
	}

	return filters, skipped
}

func filterValues(raw interface{}) ([]string, error) {
	items, err := cast.ToSliceE(raw)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		v, err := cast.ToStringE(item)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
