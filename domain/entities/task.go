package entities

import "time"

// ResultStatus represents the outcome of a test procedure
type ResultStatus string

const (
	ResultPending ResultStatus = "pending"
	ResultPassed  ResultStatus = "passed"
	ResultFailed  ResultStatus = "failed"
	ResultSkipped ResultStatus = "skipped"
)

// ProcedureResult records one procedure run
type ProcedureResult struct {
	Name      string        `json:"name"`
	Status    ResultStatus  `json:"status"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// RunReport aggregates the results of one runner invocation
type RunReport struct {
	ID         string            `json:"id"`
	Engine     string            `json:"engine"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Results    []ProcedureResult `json:"results"`
}

// Count returns how many results have the given status
func (r *RunReport) Count(status ResultStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Passed reports whether every procedure ran and none failed
func (r *RunReport) Passed() bool {
	return r.Count(ResultFailed) == 0 && r.Count(ResultSkipped) == 0
}
