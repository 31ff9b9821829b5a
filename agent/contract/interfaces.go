package contract

import "context"

// Agent is the uniform capability contract every specialized handler
// implements. Handle never returns a Go error: every failure mode is
// translated into a failure Response with a diagnostic, and the handler
// must honor ctx cancellation on blocking work.
type Agent interface {
	Describe() Descriptor
	Handle(ctx context.Context, subQuery string, call CallContext) Response
}

// Classifier turns a query plus the registered capability catalog into a
// dispatch decision. Implementations must be deterministic for identical
// inputs.
type Classifier interface {
	Classify(ctx context.Context, q Query, caps []Descriptor) (Decision, error)
}
