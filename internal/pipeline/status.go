package pipeline

// Status is the lifecycle state of the interpretation pipeline.
type Status string

const (
	StatusIdle                   Status = "idle"
	StatusSubmitting             Status = "submitting"
	StatusAwaitingInterpretation Status = "awaiting_interpretation"
	StatusInterpretationReady    Status = "interpretation_ready"
	StatusGeneratingDiagrams     Status = "generating_diagrams"
	StatusComplete               Status = "complete"
	StatusErrored                Status = "errored"
)

// Active reports whether a pipeline instance is in flight. A submit
// while active is rejected under the single-flight policy.
func (s Status) Active() bool {
	switch s {
	case StatusSubmitting, StatusAwaitingInterpretation, StatusInterpretationReady, StatusGeneratingDiagrams:
		return true
	}
	return false
}

// Terminal reports whether the pipeline has settled.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusErrored || s == StatusIdle
}
