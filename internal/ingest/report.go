package ingest

// Status is the per-file outcome of a batch run.
type Status string

const (
	StatusOK                Status = "OK"
	StatusDuplicate         Status = "DUPLICATE"
	StatusSkippedNoParser   Status = "SKIPPED - no parser"
	StatusSkippedUnreadable Status = "SKIPPED - unreadable"
	StatusParseFailed       Status = "ERROR - parse failed"
)

// FileResult records what happened to a single input file.
type FileResult struct {
	Path    string `json:"path"`
	Status  Status `json:"status"`
	Detail  string `json:"detail,omitempty"`
	MovedTo string `json:"moved_to,omitempty"`
}

// Report summarizes one batch.
type Report struct {
	Results []FileResult `json:"results"`

	OK         int `json:"ok"`
	Duplicates int `json:"duplicates"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`

	OrdersUpserted    int `json:"orders_upserted"`
	LineItemsUpserted int `json:"line_items_upserted"`
	PartsTracked      int `json:"parts_tracked"`
}

func (r *Report) add(res FileResult) {
	r.Results = append(r.Results, res)
	switch res.Status {
	case StatusOK:
		r.OK++
	case StatusDuplicate:
		r.Duplicates++
	case StatusSkippedNoParser, StatusSkippedUnreadable:
		r.Skipped++
	case StatusParseFailed:
		r.Failed++
	}
}
