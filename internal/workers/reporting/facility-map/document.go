// internal/workers/reporting/facility-map/document.go
package facilitymap

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"facility-map/internal/common/layout"
	"facility-map/internal/models"
)

const (
	headerTextColor = "#1e293b"
	borderColor     = "#e2e8f0"
	evenRowColor    = "#ffffff"
	oddRowColor     = "#f8fafc"

	chartNodeName = "FacilityMapChart"
	tableNodeName = "FacilityTable"
)

type tableColumn struct {
	key   string
	label string
	right bool
	value func(TableRow) string
}

var tableColumns = []tableColumn{
	{key: "Name", label: "Building Name", value: func(r TableRow) string { return r.Name }},
	{key: "City", label: "City", value: func(r TableRow) string { return r.City }},
	{key: "State", label: "State", value: func(r TableRow) string { return r.State }},
	{key: "Type", label: "Type", value: func(r TableRow) string { return r.Type }},
	{key: "Use", label: "Use", value: func(r TableRow) string { return r.Use }},
	{key: "Ownership", label: "Ownership", value: func(r TableRow) string { return r.Ownership }},
	{key: "SqFt", label: "Sq Ft", right: true, value: func(r TableRow) string { return r.SqFt }},
}

// DimensionTitle turns "own_lease" into "Own Lease".
func DimensionTitle(d models.Dimension) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(d), "_", " "))
}

// BuildDocument lays out the header, legend, map and detail table.
func BuildDocument(options ChartOptions, rows []TableRow, colorBy models.Dimension, count int) *layout.Document {
	palette := PaletteFor(colorBy)
	swatches := make([]layout.Swatch, 0, len(palette.Entries))
	for _, e := range palette.Entries {
		swatches = append(swatches, layout.Swatch{Label: e.Value, Color: e.Color})
	}

	return &layout.Document{
		Style: layout.Style{"padding": "20px", "font-family": "system-ui, -apple-system, sans-serif"},
		Children: []layout.Node{
			&layout.Paragraph{
				Name:  "Header",
				Text:  fmt.Sprintf("Facility Locations (%d facilities)", count),
				Style: layout.Style{"font-size": "24px", "font-weight": "bold", "margin-bottom": "10px", "color": headerTextColor},
			},
			&layout.Paragraph{
				Name:     "Legend",
				Text:     fmt.Sprintf("Color by %s: ", DimensionTitle(colorBy)),
				Style:    layout.Style{"font-size": "14px", "margin-bottom": "20px", "color": "#64748b"},
				Swatches: swatches,
			},
			&layout.HighchartsChart{
				Name:      chartNodeName,
				MinHeight: "450px",
				Style:     layout.Style{"border-radius": "8px", "margin-bottom": "20px"},
				Options:   options,
			},
			&layout.Paragraph{
				Name:  "TableHeader",
				Text:  "Facility Details",
				Style: layout.Style{"font-size": "18px", "font-weight": "bold", "margin-bottom": "15px", "color": headerTextColor},
			},
			buildTable(rows),
		},
	}
}

func buildTable(rows []TableRow) *layout.FlexContainer {
	cells := make([]layout.Node, 0, len(tableColumns)*(len(rows)+1))

	for _, c := range tableColumns {
		style := layout.Style{
			"padding":          "12px",
			"font-weight":      "bold",
			"background-color": oddRowColor,
			"border-bottom":    "2px solid " + borderColor,
		}
		if c.right {
			style["text-align"] = "right"
		}
		cells = append(cells, &layout.Paragraph{Name: "TH_" + c.key, Text: c.label, Style: style})
	}

	for i, row := range rows {
		bg := evenRowColor
		if i%2 == 1 {
			bg = oddRowColor
		}
		for _, c := range tableColumns {
			style := layout.Style{
				"padding":          "10px 12px",
				"background-color": bg,
				"border-bottom":    "1px solid " + borderColor,
				"font-size":        "14px",
			}
			if c.right {
				style["text-align"] = "right"
			}
			cells = append(cells, &layout.Paragraph{
				Name:  fmt.Sprintf("TD_%s_%d", c.key, i),
				Text:  c.value(row),
				Style: style,
			})
		}
	}

	return &layout.FlexContainer{
		Name:      tableNodeName,
		Direction: "column",
		Style: layout.Style{
			"display":               "grid",
			"grid-template-columns": "2fr 1fr 0.5fr 1fr 1fr 1fr 1fr",
			"gap":                   "0",
			"border":                "1px solid " + borderColor,
			"border-radius":         "8px",
			"overflow":              "hidden",
		},
		Children: cells,
	}
}
