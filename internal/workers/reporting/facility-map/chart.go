// internal/workers/reporting/facility-map/chart.go
package facilitymap

import "math"

const tooltipPointFormat = "<b>{point.name}</b><br/>{point.city}, {point.state}<br/>" +
	"Type: {point.building_type}<br/>Use: {point.building_use}<br/>" +
	"Ownership: {point.own_lease}<br/>Sq Ft: {point.square_feet:,.0f}"

// ChartOptions is the Highcharts Maps configuration of the facility map.
type ChartOptions struct {
	Chart         ChartType     `json:"chart"`
	Title         ChartTitle    `json:"title"`
	MapNavigation MapNavigation `json:"mapNavigation"`
	Drilldown     Drilldown     `json:"drilldown"`
	Tooltip       Tooltip       `json:"tooltip"`
	Legend        ChartLegend   `json:"legend"`
	Credits       Toggle        `json:"credits"`
	Series        []ChartSeries `json:"series"`
}

type ChartType struct {
	Type string `json:"type"`
	Map  string `json:"map"`
}

type ChartTitle struct {
	Text string `json:"text"`
}

type Toggle struct {
	Enabled bool `json:"enabled"`
}

type MapNavigation struct {
	Enabled               bool          `json:"enabled"`
	EnableMouseWheelZoom  bool          `json:"enableMouseWheelZoom"`
	EnableDoubleClickZoom bool          `json:"enableDoubleClickZoom"`
	ButtonOptions         ButtonOptions `json:"buttonOptions"`
}

type ButtonOptions struct {
	VerticalAlign string `json:"verticalAlign"`
}

type Drilldown struct {
	ActiveDataLabelStyle map[string]string `json:"activeDataLabelStyle"`
	DrillUpButton        DrillUpButton     `json:"drillUpButton"`
}

type DrillUpButton struct {
	RelativeTo string   `json:"relativeTo"`
	Position   Position `json:"position"`
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Tooltip struct {
	UseHTML      bool   `json:"useHTML"`
	HeaderFormat string `json:"headerFormat"`
	PointFormat  string `json:"pointFormat"`
}

type ChartLegend struct {
	Enabled       bool   `json:"enabled"`
	Align         string `json:"align"`
	VerticalAlign string `json:"verticalAlign"`
	Layout        string `json:"layout"`
}

// ChartSeries is either the base map (no Type) or a mappoint series.
type ChartSeries struct {
	Type         string     `json:"type,omitempty"`
	Name         string     `json:"name"`
	Color        string     `json:"color,omitempty"`
	BorderColor  string     `json:"borderColor,omitempty"`
	NullColor    string     `json:"nullColor,omitempty"`
	ShowInLegend *bool      `json:"showInLegend,omitempty"`
	Data         []MapPoint `json:"data,omitempty"`
	Marker       *Marker    `json:"marker,omitempty"`
}

// MapPoint carries the fields the tooltip format reads.
type MapPoint struct {
	Name         string   `json:"name"`
	Lat          float64  `json:"lat"`
	Lon          float64  `json:"lon"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	BuildingType string   `json:"building_type"`
	BuildingUse  string   `json:"building_use"`
	OwnLease     string   `json:"own_lease"`
	SquareFeet   *float64 `json:"square_feet"`
}

type Marker struct {
	Radius    int    `json:"radius"`
	LineWidth int    `json:"lineWidth"`
	LineColor string `json:"lineColor"`
}

// Bounds is the padded extent of the plotted points.
type Bounds struct {
	LonMin, LonMax float64
	LatMin, LatMax float64
}

// ComputeBounds pads longitude by 0.1 and latitude by 0.05 degrees. ok is
// false when there are no points.
func ComputeBounds(series []Series) (b Bounds, ok bool) {
	b = Bounds{
		LonMin: math.Inf(1), LonMax: math.Inf(-1),
		LatMin: math.Inf(1), LatMax: math.Inf(-1),
	}
	for _, s := range series {
		for _, p := range s.Points {
			b.LonMin = math.Min(b.LonMin, p.Lon)
			b.LonMax = math.Max(b.LonMax, p.Lon)
			b.LatMin = math.Min(b.LatMin, p.Lat)
			b.LatMax = math.Max(b.LatMax, p.Lat)
			ok = true
		}
	}
	if !ok {
		return Bounds{}, false
	}
	b.LonMin -= 0.1
	b.LonMax += 0.1
	b.LatMin -= 0.05
	b.LatMax += 0.05
	return b, true
}

// BuildChartOptions assembles the map configuration: the base map followed by
// one mappoint series per aggregated series.
func BuildChartOptions(series []Series, baseMap string) ChartOptions {
	hidden := false
	chartSeries := make([]ChartSeries, 0, len(series)+1)
	chartSeries = append(chartSeries, ChartSeries{
		Name:         "US States",
		BorderColor:  "#A0A0A0",
		NullColor:    "rgba(200, 200, 200, 0.3)",
		ShowInLegend: &hidden,
	})

	for _, s := range series {
		data := make([]MapPoint, 0, len(s.Points))
		for _, p := range s.Points {
			data = append(data, MapPoint{
				Name:         p.Name,
				Lat:          p.Lat,
				Lon:          p.Lon,
				City:         p.City,
				State:        p.State,
				BuildingType: p.BuildingType,
				BuildingUse:  p.BuildingUse,
				OwnLease:     p.Ownership,
				SquareFeet:   p.SquareFeet,
			})
		}
		chartSeries = append(chartSeries, ChartSeries{
			Type:   "mappoint",
			Name:   s.Label,
			Color:  s.Color,
			Data:   data,
			Marker: &Marker{Radius: 8, LineWidth: 2, LineColor: "#ffffff"},
		})
	}

	return ChartOptions{
		Chart: ChartType{Type: "map", Map: baseMap},
		MapNavigation: MapNavigation{
			Enabled:               true,
			EnableMouseWheelZoom:  true,
			EnableDoubleClickZoom: true,
			ButtonOptions:         ButtonOptions{VerticalAlign: "bottom"},
		},
		Drilldown: Drilldown{
			ActiveDataLabelStyle: map[string]string{
				"color":          "#FFFFFF",
				"textDecoration": "none",
				"textOutline":    "1px #000000",
			},
			DrillUpButton: DrillUpButton{RelativeTo: "spacingBox", Position: Position{X: 0, Y: 60}},
		},
		Tooltip: Tooltip{UseHTML: true, PointFormat: tooltipPointFormat},
		Legend: ChartLegend{
			Enabled:       true,
			Align:         "right",
			VerticalAlign: "top",
			Layout:        "vertical",
		},
		Credits: Toggle{Enabled: false},
		Series:  chartSeries,
	}
}
