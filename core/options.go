package session

import (
	"context"
	"iter"
	"time"

	"github.com/rulewise/chat-core/core/chat"
	"github.com/rulewise/chat-core/core/events"
)

// AssistantClient is the transport the session drives. assistant.Client is
// the production implementation; tests substitute scripted fakes.
type AssistantClient interface {
	// StreamTurn yields raw event-record payloads for one turn in arrival
	// order. The sequence ends without error on normal completion.
	StreamTurn(ctx context.Context, messages []chat.Message) iter.Seq2[string, error]
	// CompleteTurn returns one complete answer, bypassing streaming.
	CompleteTurn(ctx context.Context, messages []chat.Message) (*chat.Answer, error)
}

type SessionOption func(*Session)

// WithBaseContext sets the context every turn derives its cancellation from.
// Cancelling it cancels any in-flight turn.
func WithBaseContext(ctx context.Context) SessionOption {
	return func(s *Session) { s.baseContext = ctx }
}

// WithPrimaryScoreThreshold overrides the score cutoff above which a
// resource-search match is classified as a primary citation.
func WithPrimaryScoreThreshold(threshold float64) SessionOption {
	return func(s *Session) { s.primaryThreshold = threshold }
}

// WithEventHandler registers a handler for every typed session event, in
// emission order. Callback options below are a convenience layer over the
// same stream.
func WithEventHandler(handler func(events.Event)) SessionOption {
	return func(s *Session) { s.eventHandler = handler }
}

// WithResponseCallback registers a callback for streamed response segments.
func WithResponseCallback(callback func(segment string)) SessionOption {
	return func(s *Session) { s.callbacks.onResponse = callback }
}

// WithResponseEndCallback registers a callback fired once the response text
// stream for a turn is complete.
func WithResponseEndCallback(callback func()) SessionOption {
	return func(s *Session) { s.callbacks.onResponseEnd = callback }
}

// WithToolCallStartedCallback registers a callback for tool invocation start.
func WithToolCallStartedCallback(callback func(id, name string)) SessionOption {
	return func(s *Session) { s.callbacks.onToolCallStarted = callback }
}

// WithToolCallCompletedCallback registers a callback for tool invocation
// completion.
func WithToolCallCompletedCallback(callback func(id, name string, duration time.Duration)) SessionOption {
	return func(s *Session) { s.callbacks.onToolCallCompleted = callback }
}

// WithCitationCallback registers a callback for citations accepted into the
// current turn. Duplicates by resource id never reach the callback.
func WithCitationCallback(callback func(citation chat.Citation)) SessionOption {
	return func(s *Session) { s.callbacks.onCitation = callback }
}

// WithImageCallback registers a callback for image results accepted into the
// current turn. Duplicates by id never reach the callback.
func WithImageCallback(callback func(image chat.ImageResult)) SessionOption {
	return func(s *Session) { s.callbacks.onImage = callback }
}

// WithUsageCallback registers a callback for per-turn token usage.
func WithUsageCallback(callback func(usage chat.Usage)) SessionOption {
	return func(s *Session) { s.callbacks.onUsage = callback }
}

// WithErrorCallback registers a callback for terminal turn errors.
// Deliberate cancellation does not trigger it.
func WithErrorCallback(callback func(err error)) SessionOption {
	return func(s *Session) { s.callbacks.onError = callback }
}

// WithCancellationCallback registers a callback fired when a turn is
// deliberately cancelled.
func WithCancellationCallback(callback func()) SessionOption {
	return func(s *Session) { s.callbacks.onCancellation = callback }
}

type sessionCallbacks struct {
	onResponse          func(string)
	onResponseEnd       func()
	onToolCallStarted   func(string, string)
	onToolCallCompleted func(string, string, time.Duration)
	onCitation          func(chat.Citation)
	onImage             func(chat.ImageResult)
	onUsage             func(chat.Usage)
	onError             func(error)
	onCancellation      func()
}

type sendOptions struct {
	streaming bool
}

type SendOption func(*sendOptions)

// WithoutStreaming makes the turn use the single-shot completion path: one
// request, one complete answer with citations already attached.
func WithoutStreaming() SendOption {
	return func(o *sendOptions) { o.streaming = false }
}
