package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	t.Setenv("DATABASE_ID", "")
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
data_sources:
  3ECBF711-29B5-4C1E-9575-208621747E04:
    host: db.local
    database: facilities
    user: reporter
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultDatabaseID, cfg.FacilityMap.DatabaseID)
	assert.Equal(t, DefaultTable, cfg.FacilityMap.Table)
	assert.Equal(t, DefaultRowLimit, cfg.FacilityMap.RowLimit)
	assert.Equal(t, SeriesGroupingUse, cfg.FacilityMap.SeriesGrouping)
	assert.Equal(t, DefaultBaseMap, cfg.FacilityMap.BaseMap)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.App.HTTPAddress)

	ds, ok := cfg.DataSource(DefaultDatabaseID)
	require.True(t, ok)
	assert.Equal(t, 5432, ds.Port)
	assert.Equal(t, "disable", ds.SSLMode)
	assert.Equal(t, 25, ds.MaxConnections)
	assert.Equal(t, "host=db.local port=5432 user=reporter password= dbname=facilities sslmode=disable", ds.GetDSN())
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("DATABASE_ID", "")
	t.Setenv("TEST_FACILITY_DB_HOST", "pg.internal")
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
data_sources:
  reporting:
    host: ${TEST_FACILITY_DB_HOST}
    database: facilities
facility_map:
  database_id: reporting
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	ds, ok := cfg.DataSource("REPORTING")
	require.True(t, ok)
	assert.Equal(t, "pg.internal", ds.Host)
}

func TestLoadFromFile_DatabaseIDFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_ID", "secondary")
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
data_sources:
  secondary:
    host: db2.local
    database: facilities
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "secondary", cfg.FacilityMap.DatabaseID)
}

func TestLoadFromFile_ValidationErrors(t *testing.T) {
	t.Setenv("DATABASE_ID", "")
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "missing broker",
			body: `
data_sources:
  3ECBF711-29B5-4C1E-9575-208621747E04:
    host: db.local
    database: facilities
`,
			wantErr: "camunda.broker_address is required",
		},
		{
			name: "missing data source",
			body: `
camunda:
  broker_address: localhost:26500
`,
			wantErr: "data_sources.3ECBF711-29B5-4C1E-9575-208621747E04 is required",
		},
		{
			name: "unknown series grouping",
			body: `
camunda:
  broker_address: localhost:26500
data_sources:
  3ECBF711-29B5-4C1E-9575-208621747E04:
    host: db.local
    database: facilities
facility_map:
  series_grouping: state
`,
			wantErr: "facility_map.series_grouping",
		},
		{
			name: "row limit above cap",
			body: `
camunda:
  broker_address: localhost:26500
data_sources:
  3ECBF711-29B5-4C1E-9575-208621747E04:
    host: db.local
    database: facilities
facility_map:
  row_limit: 5000
`,
			wantErr: "facility_map.row_limit must not exceed 1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetWorkerConfig_Fallback(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"facility-map": {Enabled: false, MaxJobsActive: 2, Timeout: 1000},
	}}

	assert.Equal(t, WorkerConfig{Enabled: false, MaxJobsActive: 2, Timeout: 1000}, GetWorkerConfig(cfg, "facility-map"))
	assert.True(t, GetWorkerConfig(cfg, "other").Enabled)
}
