package domain

// Answer is the orchestrator's result type. It is decided once at the
// orchestrator boundary: callers always receive text, even on internal
// failure, and never need to special-case empty output.
type Answer struct {
	// Text is the answer text. On failure it is a clearly marked
	// error string, never empty.
	Text string

	// Provider names the completion provider that produced the text,
	// or "canned" for the greeting short-circuit.
	Provider string

	// Sources lists the document IDs of the passages used as context.
	Sources []string

	// Failed is true when every completion attempt errored and Text
	// carries the marked error string.
	Failed bool
}
