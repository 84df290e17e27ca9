package chat

import "time"

// MessageRole describes who a message is from.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// Message is a single finalized entry in the conversation history. History is
// append-only; a message is never mutated after finalization.
type Message struct {
	ID      string
	Role    MessageRole
	Content string

	// ToolCalls is the frozen snapshot of the tool invocations that ran
	// during the turn that produced this message.
	ToolCalls []ToolCallRecord
	// Citations are the source references backing parts of the content,
	// deduplicated by resource id in first-seen order.
	Citations []Citation
	// Images are the image results surfaced during the turn, deduplicated
	// by id in first-seen order.
	Images []ImageResult

	CreatedAt time.Time
}

// ToolCallStatus describes the lifecycle of a single tool invocation.
type ToolCallStatus string

const (
	ToolCallStatusRunning   ToolCallStatus = "running"
	ToolCallStatusCompleted ToolCallStatus = "completed"
)

// ToolCallRecord tracks one server-side tool invocation from start to
// completion. Records are mutated in place while a turn is streaming and
// frozen onto the finalized message when the turn settles.
type ToolCallRecord struct {
	ID        string
	Name      string
	Arguments string
	Status    ToolCallStatus
	Result    string

	StartedAt time.Time
	Duration  time.Duration
}

// CitationRelevance classifies how strongly a citation backs the answer.
type CitationRelevance string

const (
	CitationRelevancePrimary    CitationRelevance = "primary"
	CitationRelevanceSupporting CitationRelevance = "supporting"
)

// Citation is a reference to a source resource backing part of an answer.
type Citation struct {
	ResourceID   string
	ResourceName string
	// PageNumber is nil when the source has no page-level location.
	PageNumber *int
	Section    string
	Relevance  CitationRelevance
}

// ImageResult is an image surfaced by an attachment-fetch or image-search
// capability during a turn.
type ImageResult struct {
	ID          string
	URL         string
	Caption     string
	Description string
}

// Usage carries the token counters reported by the backend for a turn.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Add folds another turn's counters into the totals.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
}

// Answer is the complete response returned by the non-streaming path. Its
// citation list is taken verbatim from the server; no client-side
// deduplication is applied.
type Answer struct {
	Content    string
	Citations  []Citation
	Confidence float64
}
