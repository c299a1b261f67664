package domain

import "time"

// FetchKind tags a FetchResult.
type FetchKind int

const (
	FetchOK FetchKind = iota
	FetchSkipped
)

func (k FetchKind) String() string {
	switch k {
	case FetchOK:
		return "ok"
	case FetchSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// FetchResult is the outcome of fetching one registration. A skipped fetch is
// not an error: the run carries on without that row.
type FetchResult struct {
	ID     RegistrationID
	Kind   FetchKind
	Record Record // set when Kind == FetchOK
	Reason error  // set when Kind == FetchSkipped
}

func Fetched(id RegistrationID, rec Record) FetchResult {
	return FetchResult{ID: id, Kind: FetchOK, Record: rec}
}

func Skipped(id RegistrationID, reason error) FetchResult {
	return FetchResult{ID: id, Kind: FetchSkipped, Reason: reason}
}

func (r FetchResult) OK() bool { return r.Kind == FetchOK }

// RunStatus is the overall outcome of a report run.
type RunStatus string

const (
	// RunSucceeded means a report file was written.
	RunSucceeded RunStatus = "succeeded"
	// RunNoData means nothing could be fetched, so no file was written.
	RunNoData RunStatus = "no_data"
	// RunFailed means a fatal error stopped the run; see RunResult.Err.
	RunFailed RunStatus = "failed"
)

// RunResult is what a run hands back to its caller instead of exiting.
type RunResult struct {
	RunID     string
	Status    RunStatus
	Listed    int
	Fetched   int
	Skipped   int
	Path      string // written file, empty unless Status == RunSucceeded
	Err       error  // set when Status == RunFailed
	StartedAt time.Time
	Duration  time.Duration
}

func (r RunResult) Failed() bool { return r.Status == RunFailed }
