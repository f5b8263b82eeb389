package domain

// SessionReference identifies a legislative sitting and, optionally, one item
// within it, as read from a portal URL.
type SessionReference struct {
	SessionID string
	ItemIndex string // empty when the URL carries no item
}

// HasItem reports whether the reference carries an item index.
func (r SessionReference) HasItem() bool {
	return r.ItemIndex != ""
}

// Resolution is the outcome of resolving a SessionReference. It is a closed
// set: the only implementations are Resolved and NeedsChoice.
type Resolution interface {
	isResolution()
}

// Resolved carries the single upstream vote identifier.
type Resolved struct {
	VoteID string
	Title  *string
}

// NeedsChoice lists candidate votes when no heuristic could pick one. The
// caller must re-resolve with one of the option ids as override.
type NeedsChoice struct {
	Options []VoteOption
}

func (Resolved) isResolution()    {}
func (NeedsChoice) isResolution() {}

// VoteOption is one disambiguation candidate.
type VoteOption struct {
	ID          string  `json:"id"`
	Description *string `json:"descricao"`
}

// RawVoteEntry is an upstream vote entry as decoded from JSON. Its schema is
// not guaranteed; readers must treat every field as optional.
type RawVoteEntry map[string]any

// VoteRow is the canonical per-legislator row. Missing upstream fields are
// empty strings, never absent.
type VoteRow struct {
	Name       string `json:"nome"`
	VoteChoice string `json:"tipoVoto"`
	Party      string `json:"partido"`
	State      string `json:"uf"`
}

// VoteListResult is the populated (or explained-empty) vote table.
type VoteListResult struct {
	VoteID string    `json:"idVotacao"`
	Title  *string   `json:"titulo"`
	Rows   []VoteRow `json:"rows"`
	// Note explains an empty Rows; it is never set when rows are present.
	Note string `json:"nota,omitempty"`
	// Truncated is set when pagination stopped at the page cap.
	Truncated bool `json:"truncado,omitempty"`
}

// ListOutcome is the outcome of listing votes: either *VoteListResult or
// NeedsChoice, when resolution could not settle on a single vote.
type ListOutcome interface {
	isListOutcome()
}

func (*VoteListResult) isListOutcome() {}
func (NeedsChoice) isListOutcome()     {}

// ExhaustionReason tells why pagination stopped.
type ExhaustionReason int

const (
	// ExhaustionComplete means the last page had no continuation link (or
	// the page cap was reached, see fetcher.Result).
	ExhaustionComplete ExhaustionReason = iota

	// ExhaustionUpstreamAbsent means upstream answered not-found: the vote
	// has no individually recorded votes.
	ExhaustionUpstreamAbsent
)

func (r ExhaustionReason) String() string {
	switch r {
	case ExhaustionComplete:
		return "complete"
	case ExhaustionUpstreamAbsent:
		return "upstream_absent"
	default:
		return "unknown"
	}
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
