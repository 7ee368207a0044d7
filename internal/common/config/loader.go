// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultDatabaseID     = "3ECBF711-29B5-4C1E-9575-208621747E04"
	DefaultTable          = "facility_map"
	DefaultRowLimit       = 1000
	MaxRowLimit           = 1000
	DefaultBaseMap        = "countries/us/us-all"
	SeriesGroupingUse     = "building_use"
	SeriesGroupingColorBy = "color_by"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top
// and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// expandEnvVars resolves ${VAR} placeholders left in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

func overrideEmptyConfig(cfg *Config) {
	if val := os.Getenv("DATABASE_ID"); val != "" {
		cfg.FacilityMap.DatabaseID = val
	}

	ds, ok := cfg.DataSource(cfg.FacilityMap.DatabaseID)
	if !ok {
		return
	}
	if ds.User == "" {
		ds.User = os.Getenv("DB_USER")
	}
	if ds.Password == "" {
		ds.Password = os.Getenv("DB_PASSWORD")
	}
	cfg.DataSources[strings.ToLower(cfg.FacilityMap.DatabaseID)] = ds
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "facility-map-worker"
	}
	if cfg.App.HTTPAddress == "" {
		cfg.App.HTTPAddress = ":8080"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	sources := make(map[string]PostgresConfig, len(cfg.DataSources))
	for key, ds := range cfg.DataSources {
		if ds.Port == 0 {
			ds.Port = 5432
		}
		if ds.MaxConnections == 0 {
			ds.MaxConnections = 25
		}
		if ds.MaxIdle == 0 {
			ds.MaxIdle = 5
		}
		if ds.SSLMode == "" {
			ds.SSLMode = "disable"
		}
		sources[strings.ToLower(key)] = ds
	}
	cfg.DataSources = sources

	if cfg.FacilityMap.DatabaseID == "" {
		cfg.FacilityMap.DatabaseID = DefaultDatabaseID
	}
	if cfg.FacilityMap.Table == "" {
		cfg.FacilityMap.Table = DefaultTable
	}
	if cfg.FacilityMap.RowLimit <= 0 {
		cfg.FacilityMap.RowLimit = DefaultRowLimit
	}
	if cfg.FacilityMap.SeriesGrouping == "" {
		cfg.FacilityMap.SeriesGrouping = SeriesGroupingUse
	}
	if cfg.FacilityMap.BaseMap == "" {
		cfg.FacilityMap.BaseMap = DefaultBaseMap
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = cfg.App.Name
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required")
	}

	ds, ok := cfg.DataSource(cfg.FacilityMap.DatabaseID)
	if !ok {
		return fmt.Errorf("data_sources.%s is required", cfg.FacilityMap.DatabaseID)
	}
	if ds.Host == "" {
		return fmt.Errorf("data_sources.%s.host is required", cfg.FacilityMap.DatabaseID)
	}
	if ds.Database == "" {
		return fmt.Errorf("data_sources.%s.database is required", cfg.FacilityMap.DatabaseID)
	}

	if cfg.FacilityMap.RowLimit > MaxRowLimit {
		return fmt.Errorf("facility_map.row_limit must not exceed %d, got %d", MaxRowLimit, cfg.FacilityMap.RowLimit)
	}

	switch cfg.FacilityMap.SeriesGrouping {
	case SeriesGroupingUse, SeriesGroupingColorBy:
	default:
		return fmt.Errorf("facility_map.series_grouping must be %q or %q, got %q",
			SeriesGroupingUse, SeriesGroupingColorBy, cfg.FacilityMap.SeriesGrouping)
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
	}
}
