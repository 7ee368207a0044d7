// internal/workers/reporting/facility-map/palette.go
package facilitymap

import (
	"strings"

	"facility-map/internal/models"
)

const defaultMarkerColor = "#6b7280"

// PaletteEntry maps an upper-cased dimension value to a marker color.
type PaletteEntry struct {
	Value string
	Color string
}

// Palette is the ordered color set of one dimension. Entry order is legend order.
type Palette struct {
	Entries []PaletteEntry
	Default string
}

var palettes = map[models.Dimension]Palette{
	models.DimensionBuildingUse: {
		Entries: []PaletteEntry{
			{Value: "AMBULATORY", Color: "#3b82f6"},
			{Value: "ADMIN", Color: "#10b981"},
			{Value: "ACUTE", Color: "#ef4444"},
		},
		Default: defaultMarkerColor,
	},
	models.DimensionOwnLease: {
		Entries: []PaletteEntry{
			{Value: "OWN", Color: "#3b82f6"},
			{Value: "LEASE", Color: "#f59e0b"},
			{Value: "OWN - CONDO", Color: "#10b981"},
		},
		Default: defaultMarkerColor,
	},
	models.DimensionBuildingType: {
		Entries: []PaletteEntry{
			{Value: "MULTI STORY", Color: "#3b82f6"},
			{Value: "SINGLE STORY", Color: "#10b981"},
		},
		Default: defaultMarkerColor,
	},
	models.DimensionState: {
		Entries: []PaletteEntry{
			{Value: "MA", Color: "#3b82f6"},
			{Value: "NH", Color: "#10b981"},
		},
		Default: defaultMarkerColor,
	},
}

// PaletteFor returns the palette of d, or the building-use palette for a
// dimension without one.
func PaletteFor(d models.Dimension) Palette {
	if p, ok := palettes[d]; ok {
		return p
	}
	return palettes[models.DimensionBuildingUse]
}

// Color resolves value case-insensitively, falling back to the default.
func (p Palette) Color(value string) string {
	want := strings.ToUpper(strings.TrimSpace(value))
	for _, e := range p.Entries {
		if e.Value == want {
			return e.Color
		}
	}
	return p.Default
}

// Colors lists every color the palette can produce, default last.
func (p Palette) Colors() []string {
	out := make([]string, 0, len(p.Entries)+1)
	for _, e := range p.Entries {
		out = append(out, e.Color)
	}
	return append(out, p.Default)
}

// ClassifyColor returns the marker color of r when colored by d.
func ClassifyColor(d models.Dimension, r models.FacilityRecord) string {
	return PaletteFor(d).Color(r.Value(d))
}
