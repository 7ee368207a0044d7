// internal/workers/reporting/facility-map/handler.go
package facilitymap

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/spf13/cast"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"facility-map/internal/common/config"
	apperrors "facility-map/internal/common/errors"
	"facility-map/internal/common/layout"
	"facility-map/internal/common/logger"
	"facility-map/internal/common/metrics"
	"facility-map/internal/common/observability"
	"facility-map/internal/models"
	"facility-map/internal/workers/reporting/facility-map/queries"
)

const TaskType = "facility-map"

const (
	VisualizationTitle = "Facility Map"

	FetchFailedPrompt    = "Failed to retrieve facility data."
	FetchFailedNarrative = "Error loading facility data."
	EmptyPrompt          = "No facilities found matching the criteria."
	EmptyNarrative       = "No facility data available."

	defaultTimeout = 30 * time.Second
)

// Report outcomes, used as metric labels.
const (
	outcomeRendered     = "rendered"
	outcomeRenderFailed = "render_failed"
	outcomeEmpty        = "empty"
	outcomeFetchFailed  = "fetch_failed"
)

type Handler struct {
	config       *Config
	source       queries.DataSource
	renderer     layout.Renderer
	obs          *observability.Observability
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, source queries.DataSource, renderer layout.Renderer, obs *observability.Observability, log logger.Logger) *Handler {
	if obs == nil {
		obs = observability.NewNoop()
	}
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		source:       source,
		renderer:     renderer,
		obs:          obs,
		errorHandler: apperrors.NewErrorHandler(l),
		logger:       l,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	timeout := h.config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	input, err := decodeInput(job.Variables)
	if err == nil {
		var output *Output
		output, err = h.Execute(ctx, input)
		if err == nil {
			h.completeJob(client, job, output)
			metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
			metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
			h.obs.RecordJobProcessed(ctx, "completed")
			h.obs.RecordJobDuration(ctx, time.Since(start), "completed")
			return
		}
	}

	stdErr := apperrors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.obs.RecordJobProcessed(ctx, "failed")
	h.obs.RecordJobDuration(ctx, time.Since(start), "failed")
	h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func decodeInput(variables string) (*Input, error) {
	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, apperrors.NewParseError(err)
	}
	return &input, nil
}

// Execute builds the facility map report. Fetch failures, empty results and
// rendering failures all produce an Output; only a nil input is an error.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewParseError(fmt.Errorf("nil input"))
	}

	colorBy := models.ParseDimension(input.ColorBy)
	if requested := strings.TrimSpace(input.ColorBy); requested != "" && !strings.EqualFold(requested, string(colorBy)) {
		h.logger.Warn("unknown color_by, using building_use", map[string]interface{}{"colorBy": input.ColorBy})
	}
	groupBy := models.DimensionBuildingUse
	if h.config.SeriesGrouping == config.SeriesGroupingColorBy {
		groupBy = colorBy
	}

	ctx, span := h.obs.StartSpan(ctx, "facility-map.execute",
		attribute.String("color_by", string(colorBy)),
		attribute.String("group_by", string(groupBy)),
	)
	defer span.End()

	output := &Output{RequestID: uuid.NewString(), Visualizations: []Visualization{}}

	filters := h.parseFilters(input.OtherFilters)
	query, args := queries.BuildFacilityQuery(h.config.Table, filters)

	records, err := h.fetch(ctx, query, args)
	if err != nil {
		h.logger.Warn("facility fetch failed", map[string]interface{}{
			"requestId":  output.RequestID,
			"databaseId": h.config.DatabaseID,
			"error":      err,
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		metrics.FacilityMapOutcomes.WithLabelValues(outcomeFetchFailed).Inc()
		output.FinalPrompt = FetchFailedPrompt
		output.Narrative = FetchFailedNarrative
		return output, nil
	}
	metrics.FacilityMapRows.Observe(float64(len(records)))

	if len(records) == 0 {
		metrics.FacilityMapOutcomes.WithLabelValues(outcomeEmpty).Inc()
		output.FinalPrompt = EmptyPrompt
		output.Narrative = EmptyNarrative
		return output, nil
	}

	series := AggregateSeries(records, colorBy, groupBy)
	if b, ok := ComputeBounds(series); ok {
		h.logger.Debug("facility bounds", map[string]interface{}{
			"lonMin": b.LonMin, "lonMax": b.LonMax,
			"latMin": b.LatMin, "latMax": b.LatMax,
		})
	}
	doc := BuildDocument(BuildChartOptions(series, h.config.BaseMap), BuildTableRows(records), colorBy, len(records))

	outcome := outcomeRendered
	rendered, err := h.renderer.Render(doc, map[string]interface{}{})
	if err != nil {
		stdErr := apperrors.NewRenderFailedError(err)
		h.logger.Error("layout rendering failed", map[string]interface{}{
			"requestId": output.RequestID,
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
		span.RecordError(err)
		rendered = renderErrorHTML(err)
		outcome = outcomeRenderFailed
	}
	metrics.FacilityMapOutcomes.WithLabelValues(outcome).Inc()

	h.logger.Info("facility map built", map[string]interface{}{
		"requestId":  output.RequestID,
		"facilities": len(records),
		"series":     len(series),
		"nodes":      doc.Count(),
		"outcome":    outcome,
	})

	output.FinalPrompt = ComposeSummary(records)
	output.Visualizations = append(output.Visualizations, Visualization{Title: VisualizationTitle, Layout: rendered})
	output.FacilityCount = len(records)
	return output, nil
}

func (h *Handler) parseFilters(raw interface{}) []models.Filter {
	if raw == nil {
		return nil
	}
	entries, err := cast.ToSliceE(raw)
	if err != nil {
		stdErr := apperrors.NewInvalidFilterFormatError(err.Error())
		h.logger.Warn("other_filters is not a list, ignoring", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
		return nil
	}

	filters, skipped := queries.ParseFilters(entries)
	for _, s := range skipped {
		h.logger.Debug("skipping filter", map[string]interface{}{
			"errorCode": string(apperrors.ErrCodeInvalidFilterFormat),
			"index":     s.Index,
			"reason":    s.Reason,
		})
	}
	return filters
}

func (h *Handler) fetch(ctx context.Context, query string, args []interface{}) ([]models.FacilityRecord, error) {
	result, err := h.source.ExecuteSQLQuery(ctx, h.config.DatabaseID, query, args, h.config.RowLimit)
	if err != nil {
		return nil, err
	}
	if result == nil || !result.Success {
		msg := "unknown error"
		if result != nil && result.Error != "" {
			msg = result.Error
		}
		return nil, apperrors.NewQueryExecutionFailedError(h.config.DatabaseID, fmt.Errorf("query failed: %s", msg))
	}
	if h.config.RowLimit > 0 && len(result.Rows) > h.config.RowLimit {
		capped := *result
		capped.Rows = result.Rows[:h.config.RowLimit]
		result = &capped
	}

	records, skipped, err := queries.ToRecords(result)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		h.logger.Debug("dropped rows without coordinates", map[string]interface{}{"count": skipped})
	}
	return records, nil
}

func renderErrorHTML(err error) string {
	return fmt.Sprintf("<div>Error rendering layout: %s</div>", html.EscapeString(err.Error()))
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
	}
}
