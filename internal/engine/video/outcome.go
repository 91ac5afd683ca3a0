package video

// OutcomeKind tells apart the three ways a fallback-chain step can end.
type OutcomeKind int

const (
	OutcomeEmpty OutcomeKind = iota
	OutcomeData
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeData:
		return "data"
	case OutcomeFailed:
		return "failed"
	default:
		return "empty"
	}
}

// Outcome is the evaluated result of one step in a fallback chain.
// "Empty but fine" and "failed" both send the chain to its next step,
// but callers can still tell them apart.
type Outcome[T any] struct {
	Kind  OutcomeKind
	Items []T
	Err   error
}

// Evaluate tags the result of a source call.
func Evaluate[T any](items []T, err error) Outcome[T] {
	switch {
	case err != nil:
		return Outcome[T]{Kind: OutcomeFailed, Err: err}
	case len(items) == 0:
		return Outcome[T]{Kind: OutcomeEmpty}
	default:
		return Outcome[T]{Kind: OutcomeData, Items: items}
	}
}

// OK reports whether the step produced data.
func (o Outcome[T]) OK() bool { return o.Kind == OutcomeData }
