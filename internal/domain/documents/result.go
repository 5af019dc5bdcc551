package documents

// Outcome tells callers what a failed or successful compose left behind.
type Outcome string

const (
	// OutcomeCreated: the document row exists and its PDF is published.
	OutcomeCreated Outcome = "created"

	// OutcomeNothingHappened: no code, no PDF, no row.
	OutcomeNothingHappened Outcome = "nothing_happened"

	// OutcomeSequenceBurned: a code was allocated but no document carries it.
	OutcomeSequenceBurned Outcome = "sequence_burned"
)

// Result is returned by Compose and Promote alongside any error.
type Result struct {
	Outcome    Outcome   `json:"outcome"`
	BurnedCode string    `json:"burned_code,omitempty"`
	Document   *Document `json:"document,omitempty"`
}
