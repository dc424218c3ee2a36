package domain

// RunState is the terminal state reported by an agent executor run.
type RunState string

const (
	RunStateComplete RunState = "complete"
	RunStateFailed   RunState = "failed"
	RunStateOther    RunState = "other"
)

// RunResult is the outcome of a single blocking executor run. It is a tagged
// variant rather than an untyped map: Complete carries the extracted textual
// output, Failed carries nothing, and Other preserves the raw state tag of an
// executor that stopped in some state the core does not model.
type RunResult struct {
	State    RunState
	StateTag string // raw executor state when State == RunStateOther
	Output   string // final textual output, set only when State == RunStateComplete
}

// CompleteResult builds a successful run result carrying the final output.
func CompleteResult(output string) RunResult {
	return RunResult{State: RunStateComplete, Output: output}
}

// FailedResult builds a failed run result.
func FailedResult() RunResult {
	return RunResult{State: RunStateFailed}
}

// OtherResult builds a result for an unrecognized executor state.
func OtherResult(tag string) RunResult {
	return RunResult{State: RunStateOther, StateTag: tag}
}

// Completed reports whether the run finished successfully.
func (r RunResult) Completed() bool {
	return r.State == RunStateComplete
}
