package sandboxes

import "time"

// Result is the outcome of one program execution.
type Result struct {
	// Answer joins every report call with newlines.
	Answer   string
	Reported bool
	// Err holds any parse, runtime or cancellation failure of the program.
	Err             error
	LeafCalls       int64
	FallbackApplied bool
	// FallbackSkipped is set when a keyword filter matched nothing and no leaf was asked afterwards.
	FallbackSkipped bool
	Duration        time.Duration
}
