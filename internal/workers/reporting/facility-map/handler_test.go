package facilitymap

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"facility-map/internal/common/config"
	apperrors "facility-map/internal/common/errors"
	"facility-map/internal/common/layout"
	"facility-map/internal/common/logger"
	"facility-map/internal/models"
	"facility-map/internal/workers/reporting/facility-map/queries"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeDataSource struct {
	result *queries.QueryResult
	err    error

	calls      int
	databaseID string
	query      string
	args       []interface{}
	rowLimit   int
}

func (f *fakeDataSource) ExecuteSQLQuery(_ context.Context, databaseID, query string, args []interface{}, rowLimit int) (*queries.QueryResult, error) {
	f.calls++
	f.databaseID = databaseID
	f.query = query
	f.args = args
	f.rowLimit = rowLimit
	return f.result, f.err
}

// capturingRenderer records the last document before delegating to the HTML renderer.
type capturingRenderer struct {
	next layout.Renderer
	doc  *layout.Document
}

func (c *capturingRenderer) Render(doc *layout.Document, vars map[string]interface{}) (string, error) {
	c.doc = doc
	return c.next.Render(doc, vars)
}

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) Render(doc *layout.Document, vars map[string]interface{}) (string, error) {
	args := m.Called(doc, vars)
	return args.String(0), args.Error(1)
}

func createTestConfig() *Config {
	return &Config{
		Timeout:        5 * time.Second,
		DatabaseID:     config.DefaultDatabaseID,
		Table:          config.DefaultTable,
		RowLimit:       config.DefaultRowLimit,
		SeriesGrouping: config.SeriesGroupingUse,
		BaseMap:        config.DefaultBaseMap,
	}
}

func createTestHandler(t *testing.T, cfg *Config, source queries.DataSource, renderer layout.Renderer) *Handler {
	if cfg == nil {
		cfg = createTestConfig()
	}
	return NewHandler(cfg, source, renderer, nil, logger.NewTestLogger(t))
}

func facilityRow(name, use, state string, lat, lon, sqft interface{}) []interface{} {
	return []interface{}{name, "MULTI STORY", use, "Boston", state, "1 Main St", lat, lon, "OWN", sqft, int64(1990)}
}

func resultOf(rows ...[]interface{}) *queries.QueryResult {
	return &queries.QueryResult{Success: true, Columns: models.FacilityColumns, Rows: rows}
}

func chartOptions(t *testing.T, doc *layout.Document) ChartOptions {
	t.Helper()
	node, ok := doc.Find(chartNodeName)
	require.True(t, ok)
	options, ok := node.(*layout.HighchartsChart).Options.(ChartOptions)
	require.True(t, ok)
	return options
}

func paragraphText(t *testing.T, doc *layout.Document, name string) string {
	t.Helper()
	node, ok := doc.Find(name)
	require.True(t, ok, name)
	return node.(*layout.Paragraph).Text
}

// ==========================
// Scenario Tests
// ==========================

func TestHandler_Execute_EmptyResult(t *testing.T) {
	source := &fakeDataSource{result: resultOf()}
	h := createTestHandler(t, nil, source, layout.NewHTMLRenderer())

	output, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.Equal(t, EmptyPrompt, output.FinalPrompt)
	assert.Equal(t, EmptyNarrative, output.Narrative)
	assert.Empty(t, output.Visualizations)
	assert.NotNil(t, output.Visualizations)
	assert.Zero(t, output.FacilityCount)
	assert.NotEmpty(t, output.RequestID)
}

func TestHandler_Execute_FetchFailures(t *testing.T) {
	tests := []struct {
		name   string
		source *fakeDataSource
	}{
		{name: "data source error", source: &fakeDataSource{err: apperrors.NewQueryExecutionFailedError("db", errors.New("connection refused"))}},
		{name: "timeout", source: &fakeDataSource{err: apperrors.NewQueryTimeoutError("db")}},
		{name: "unsuccessful result", source: &fakeDataSource{result: &queries.QueryResult{Success: false, Error: "syntax error"}}},
		{name: "nil result", source: &fakeDataSource{}},
		{name: "no coordinate columns", source: &fakeDataSource{result: &queries.QueryResult{Success: true, Columns: []string{"BUILDING_NAME"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := createTestHandler(t, nil, tt.source, layout.NewHTMLRenderer())

			output, err := h.Execute(context.Background(), &Input{})
			require.NoError(t, err)

			assert.Equal(t, FetchFailedPrompt, output.FinalPrompt)
			assert.Equal(t, FetchFailedNarrative, output.Narrative)
			assert.Empty(t, output.Visualizations)
			assert.Equal(t, 1, tt.source.calls)
		})
	}
}

func TestHandler_Execute_SingleUse(t *testing.T) {
	source := &fakeDataSource{result: resultOf(
		facilityRow("General Hospital", "ACUTE", "MA", 42.36, -71.06, 12345.0),
		facilityRow("North Clinic", "ACUTE", "NH", 43.2, -71.5, 800.0),
	)}
	renderer := &capturingRenderer{next: layout.NewHTMLRenderer()}
	h := createTestHandler(t, nil, source, renderer)

	output, err := h.Execute(context.Background(), &Input{ColorBy: "building_use"})
	require.NoError(t, err)

	assert.Equal(t, "Showing 2 facilities on the map. By use: 2 ACUTE.", output.FinalPrompt)
	assert.Empty(t, output.Narrative)
	assert.Equal(t, 2, output.FacilityCount)
	require.Len(t, output.Visualizations, 1)
	assert.Equal(t, VisualizationTitle, output.Visualizations[0].Title)
	assert.Contains(t, output.Visualizations[0].Layout, "Facility Locations (2 facilities)")

	options := chartOptions(t, renderer.doc)
	require.Len(t, options.Series, 2)
	assert.Equal(t, "ACUTE", options.Series[1].Name)
	assert.Equal(t, "#ef4444", options.Series[1].Color)
	assert.Len(t, options.Series[1].Data, 2)

	table, _ := renderer.doc.Find(tableNodeName)
	assert.Len(t, table.(*layout.FlexContainer).Children, 7*3)
	assert.Equal(t, "12,345", paragraphText(t, renderer.doc, "TD_SqFt_0"))
}

func TestHandler_Execute_MultipleUses(t *testing.T) {
	source := &fakeDataSource{result: resultOf(
		facilityRow("Admin Annex", "ADMIN", "MA", 42.1, -71.1, 100.0),
		facilityRow("General Hospital", "ACUTE", "MA", 42.36, -71.06, 12345.0),
		facilityRow("North Clinic", "ACUTE", "NH", 43.2, -71.5, 800.0),
	)}
	renderer := &capturingRenderer{next: layout.NewHTMLRenderer()}
	h := createTestHandler(t, nil, source, renderer)

	output, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	options := chartOptions(t, renderer.doc)
	require.Len(t, options.Series, 3)
	assert.Equal(t, "ADMIN", options.Series[1].Name)
	assert.Len(t, options.Series[1].Data, 1)
	assert.Equal(t, "ACUTE", options.Series[2].Name)
	assert.Len(t, options.Series[2].Data, 2)

	assert.Equal(t, "Showing 3 facilities on the map. By use: 2 ACUTE, 1 ADMIN.", output.FinalPrompt)
	assert.Less(t, strings.Index(output.FinalPrompt, "ACUTE"), strings.Index(output.FinalPrompt, "ADMIN"))
}

func TestHandler_Execute_NullSquareFeet(t *testing.T) {
	source := &fakeDataSource{result: resultOf(
		facilityRow("General Hospital", "ACUTE", "MA", 42.36, -71.06, nil),
	)}
	renderer := &capturingRenderer{next: layout.NewHTMLRenderer()}
	h := createTestHandler(t, nil, source, renderer)

	_, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.Equal(t, "N/A", paragraphText(t, renderer.doc, "TD_SqFt_0"))
	options := chartOptions(t, renderer.doc)
	assert.Nil(t, options.Series[1].Data[0].SquareFeet)
}

// ==========================
// Behaviour Tests
// ==========================

func TestHandler_Execute_RenderFailure(t *testing.T) {
	source := &fakeDataSource{result: resultOf(
		facilityRow("General Hospital", "ACUTE", "MA", 42.36, -71.06, 12345.0),
	)}
	renderer := new(mockRenderer)
	renderer.On("Render", mock.AnythingOfType("*layout.Document"), map[string]interface{}{}).
		Return("", errors.New(`unknown node type "<Map>"`)).Once()
	h := createTestHandler(t, nil, source, renderer)

	output, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	renderer.AssertExpectations(t)

	require.Len(t, output.Visualizations, 1)
	assert.Equal(t, `<div>Error rendering layout: unknown node type &#34;&lt;Map&gt;&#34;</div>`, output.Visualizations[0].Layout)
	assert.Equal(t, "Showing 1 facilities on the map. By use: 1 ACUTE.", output.FinalPrompt)
	assert.Equal(t, 1, output.FacilityCount)
}

func TestHandler_Execute_PassesFiltersAsArguments(t *testing.T) {
	source := &fakeDataSource{result: resultOf()}
	h := createTestHandler(t, nil, source, layout.NewHTMLRenderer())

	input, err := decodeInput(`{
		"other_filters": [
			{"dim": "state", "val": ["ma", "nh"]},
			{"dim": "building_use"},
			{"dim": "own_lease", "val": "OWN"},
			{"dim": "BUILDING_USE", "val": ["acute"]}
		],
		"color_by": "state"
	}`)
	require.NoError(t, err)

	_, err = h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultDatabaseID, source.databaseID)
	assert.Equal(t, config.DefaultRowLimit, source.rowLimit)
	assert.Equal(t, 2, strings.Count(source.query, "UPPER("))
	assert.Contains(t, source.query, "UPPER(STATE) IN ($1, $2)")
	assert.Contains(t, source.query, "UPPER(BUILDING_USE) IN ($3)")
	assert.Equal(t, []interface{}{"MA", "NH", "ACUTE"}, source.args)
}

func TestHandler_Execute_IgnoresNonListFilters(t *testing.T) {
	source := &fakeDataSource{result: resultOf()}
	h := createTestHandler(t, nil, source, layout.NewHTMLRenderer())

	_, err := h.Execute(context.Background(), &Input{OtherFilters: "state=MA"})
	require.NoError(t, err)

	assert.NotContains(t, source.query, "UPPER(")
	assert.Empty(t, source.args)
}

func TestHandler_Execute_ColorBy(t *testing.T) {
	rows := [][]interface{}{
		facilityRow("A", "ACUTE", "MA", 42.1, -71.1, 1.0),
		facilityRow("B", "ACUTE", "NH", 43.1, -71.4, 1.0),
		facilityRow("C", "ADMIN", "NH", 43.2, -71.5, 1.0),
	}

	t.Run("grouping stays on building use by default", func(t *testing.T) {
		renderer := &capturingRenderer{next: layout.NewHTMLRenderer()}
		h := createTestHandler(t, nil, &fakeDataSource{result: resultOf(rows...)}, renderer)

		_, err := h.Execute(context.Background(), &Input{ColorBy: "state"})
		require.NoError(t, err)

		options := chartOptions(t, renderer.doc)
		require.Len(t, options.Series, 3)
		assert.Equal(t, "ACUTE", options.Series[1].Name)
		assert.Equal(t, "#3b82f6", options.Series[1].Color, "first ACUTE facility is in MA")
		assert.Equal(t, "Color by State: ", paragraphText(t, renderer.doc, "Legend"))
	})

	t.Run("grouping follows color_by when configured", func(t *testing.T) {
		cfg := createTestConfig()
		cfg.SeriesGrouping = config.SeriesGroupingColorBy
		renderer := &capturingRenderer{next: layout.NewHTMLRenderer()}
		h := createTestHandler(t, cfg, &fakeDataSource{result: resultOf(rows...)}, renderer)

		_, err := h.Execute(context.Background(), &Input{ColorBy: "state"})
		require.NoError(t, err)

		options := chartOptions(t, renderer.doc)
		require.Len(t, options.Series, 3)
		assert.Equal(t, "MA", options.Series[1].Name)
		assert.Equal(t, "NH", options.Series[2].Name)
		assert.Len(t, options.Series[2].Data, 2)
	})

	t.Run("unknown color_by falls back to building use", func(t *testing.T) {
		renderer := &capturingRenderer{next: layout.NewHTMLRenderer()}
		h := createTestHandler(t, nil, &fakeDataSource{result: resultOf(rows...)}, renderer)

		_, err := h.Execute(context.Background(), &Input{ColorBy: "city"})
		require.NoError(t, err)

		assert.Equal(t, "Color by Building Use: ", paragraphText(t, renderer.doc, "Legend"))
		assert.Equal(t, "#ef4444", chartOptions(t, renderer.doc).Series[1].Color)
	})
}

func TestHandler_Execute_Idempotent(t *testing.T) {
	source := &fakeDataSource{result: resultOf(
		facilityRow("Admin Annex", "ADMIN", "MA", 42.1, -71.1, 100.0),
		facilityRow("General Hospital", "ACUTE", "MA", 42.36, -71.06, 12345.0),
	)}
	h := createTestHandler(t, nil, source, layout.NewHTMLRenderer())
	input := &Input{OtherFilters: []interface{}{map[string]interface{}{"dim": "state", "val": []interface{}{"MA"}}}}

	first, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	second, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first.Visualizations, second.Visualizations)
	assert.Equal(t, first.FinalPrompt, second.FinalPrompt)
	assert.NotEqual(t, first.RequestID, second.RequestID)
}

func TestHandler_Execute_CapsRows(t *testing.T) {
	cfg := createTestConfig()
	cfg.RowLimit = 2
	source := &fakeDataSource{result: resultOf(
		facilityRow("A", "ACUTE", "MA", 42.1, -71.1, 1.0),
		facilityRow("B", "ACUTE", "MA", 42.2, -71.2, 1.0),
		facilityRow("C", "ACUTE", "MA", 42.3, -71.3, 1.0),
	)}
	h := createTestHandler(t, cfg, source, layout.NewHTMLRenderer())

	output, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.Equal(t, 2, output.FacilityCount)
	assert.Len(t, source.result.Rows, 3)
}

func TestHandler_Execute_EscapesRecordText(t *testing.T) {
	source := &fakeDataSource{result: resultOf(
		facilityRow("<script>alert(1)</script>", "ACUTE", "MA", 42.1, -71.1, 1.0),
	)}
	h := createTestHandler(t, nil, source, layout.NewHTMLRenderer())

	output, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	rendered := output.Visualizations[0].Layout
	assert.NotContains(t, rendered, "<script>alert(1)</script>")
	assert.Contains(t, rendered, "&lt;script&gt;alert(1)&lt;/script&gt;")
}

func TestHandler_Execute_NilInput(t *testing.T) {
	h := createTestHandler(t, nil, &fakeDataSource{}, layout.NewHTMLRenderer())

	_, err := h.Execute(context.Background(), nil)

	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeParseError, stdErr.Code)
}

func TestDecodeInput(t *testing.T) {
	input, err := decodeInput(`{"color_by": "own_lease"}`)
	require.NoError(t, err)
	assert.Equal(t, "own_lease", input.ColorBy)
	assert.Nil(t, input.OtherFilters)

	_, err = decodeInput(`{"color_by": `)
	var stdErr *apperrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, apperrors.ErrCodeParseError, stdErr.Code)
	assert.Zero(t, apperrors.GetRetryCount(stdErr.Code))
}

func TestRenderErrorHTML(t *testing.T) {
	assert.Equal(t, "<div>Error rendering layout: a &amp; b</div>", renderErrorHTML(errors.New("a & b")))
}

func TestLoadConfig(t *testing.T) {
	cfg := &config.Config{
		Workers: map[string]config.WorkerConfig{TaskType: {Enabled: true, MaxJobsActive: 3, Timeout: 2500}},
		FacilityMap: config.FacilityMapConfig{
			DatabaseID:     "reporting",
			Table:          "facilities",
			RowLimit:       50,
			SeriesGrouping: config.SeriesGroupingColorBy,
			BaseMap:        "countries/us/us-all",
		},
	}

	got := LoadConfig(cfg)

	assert.Equal(t, &Config{
		Timeout:        2500 * time.Millisecond,
		DatabaseID:     "reporting",
		Table:          "facilities",
		RowLimit:       50,
		SeriesGrouping: config.SeriesGroupingColorBy,
		BaseMap:        "countries/us/us-all",
	}, got)
}
