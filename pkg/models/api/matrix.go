package api

// Stage is one pipeline stage as exposed by the API.
type Stage struct {
	Field string `json:"field"`
	Name  string `json:"name"`
}

type Period struct {
	Key   string `json:"key"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type MatrixRow struct {
	DealID     string            `json:"deal_id"`
	DealName   string            `json:"deal_name"`
	CreatedAt  string            `json:"created_at,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Cells      []string          `json:"cells"`
}

type Matrix struct {
	Periods []Period    `json:"periods"`
	Rows    []MatrixRow `json:"rows"`
}

type StagnationRecord struct {
	DealID          string `json:"deal_id"`
	DealName        string `json:"deal_name"`
	CurrentStage    string `json:"current_stage"`
	StagnantPeriods int    `json:"stagnant_periods"`
	TotalPeriods    int    `json:"total_periods"`
}

type Snapshot struct {
	ID          string `json:"id"`
	ExtractedAt string `json:"extracted_at"`
	Source      string `json:"source"`
	DealCount   int    `json:"deal_count"`
}
