// internal/workers/reporting/facility-map/table.go
package facilitymap

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"facility-map/internal/models"
)

const notAvailable = "N/A"

// TableRow is a display-ready facility detail row.
type TableRow struct {
	Name      string
	City      string
	State     string
	Type      string
	Use       string
	Ownership string
	SqFt      string
}

// FormatSquareFeet renders v with thousands separators and no decimals, or
// "N/A" when v is nil.
func FormatSquareFeet(v *float64) string {
	return formatSquareFeet(message.NewPrinter(language.English), v)
}

func formatSquareFeet(p *message.Printer, v *float64) string {
	if v == nil {
		return notAvailable
	}
	return p.Sprintf("%.0f", *v)
}

// BuildTableRows keeps fetch order.
func BuildTableRows(records []models.FacilityRecord) []TableRow {
	p := message.NewPrinter(language.English)
	rows := make([]TableRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, TableRow{
			Name:      r.Name,
			City:      r.City,
			State:     r.State,
			Type:      r.BuildingType,
			Use:       r.BuildingUse,
			Ownership: r.Ownership,
			SqFt:      formatSquareFeet(p, r.SquareFeet),
		})
	}
	return rows
}
