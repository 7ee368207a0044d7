// internal/workers/reporting/facility-map/config.go
package facilitymap

import (
	"time"

	"facility-map/internal/common/config"
)

type Config struct {
	Timeout        time.Duration
	DatabaseID     string
	Table          string
	RowLimit       int
	SeriesGrouping string // building_use | color_by
	BaseMap        string
}

// LoadConfig builds the worker config from the application config.
func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		Timeout:        config.GetDuration(config.GetWorkerConfig(cfg, TaskType).Timeout),
		DatabaseID:     cfg.FacilityMap.DatabaseID,
		Table:          cfg.FacilityMap.Table,
		RowLimit:       cfg.FacilityMap.RowLimit,
		SeriesGrouping: cfg.FacilityMap.SeriesGrouping,
		BaseMap:        cfg.FacilityMap.BaseMap,
	}
}
