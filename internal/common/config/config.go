// internal/common/config/config.go
package config

import (
	"fmt"
	"strings"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig                 `mapstructure:"app"`
	Camunda       CamundaConfig             `mapstructure:"camunda"`
	DataSources   map[string]PostgresConfig `mapstructure:"data_sources"`
	Workers       map[string]WorkerConfig   `mapstructure:"workers"`
	FacilityMap   FacilityMapConfig         `mapstructure:"facility_map"`
	Logging       LoggingConfig             `mapstructure:"logging"`
	Observability ObservabilityConfig       `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	HTTPAddress string `mapstructure:"http_address"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// PostgresConfig describes one queryable data source. Data sources are keyed
// by the database id callers pass to the query service.
type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// DataSource looks up a data source by database id. Viper lower-cases map
// keys, so ids are compared case-insensitively.
func (c *Config) DataSource(databaseID string) (PostgresConfig, bool) {
	ds, ok := c.DataSources[strings.ToLower(databaseID)]
	return ds, ok
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
}

// FacilityMapConfig holds settings for the facility-map worker.
type FacilityMapConfig struct {
	DatabaseID     string `mapstructure:"database_id"`
	Table          string `mapstructure:"table"`
	RowLimit       int    `mapstructure:"row_limit"`
	SeriesGrouping string `mapstructure:"series_grouping"` // building_use | color_by
	BaseMap        string `mapstructure:"base_map"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ObservabilityConfig holds metrics and tracing settings.
type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}
