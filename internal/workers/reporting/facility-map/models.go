// internal/workers/reporting/facility-map/models.go
package facilitymap

// Input is the job variables of a facility-map job.
type Input struct {
	OtherFilters interface{} `json:"other_filters"`
	ColorBy      string      `json:"color_by"`
}

// Output is the job result. Visualizations is empty when nothing was fetched.
type Output struct {
	FinalPrompt    string          `json:"final_prompt"`
	Narrative      string          `json:"narrative"`
	Visualizations []Visualization `json:"visualizations"`
	RequestID      string          `json:"request_id"`
	FacilityCount  int             `json:"facility_count"`
}

type Visualization struct {
	Title  string `json:"title"`
	Layout string `json:"layout"`
}
