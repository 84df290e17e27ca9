package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/rulewise/chat-core/core/chat"
	"github.com/rulewise/chat-core/core/events"
)

// activeTurn is the scratch state of the one in-flight turn. Send creates it,
// the dispatcher mutates it as records arrive, and settlement either freezes
// it into a history message or discards it.
type activeTurn struct {
	id     string
	prompt string

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	content      *textBuffer
	toolCalls    []chat.ToolCallRecord
	toolIndex    map[string]int
	citations    []chat.Citation
	citationSeen map[string]struct{}
	images       []chat.ImageResult
	imageSeen    map[string]struct{}
	usage        chat.Usage

	primaryThreshold float64
	emit             eventEmitter
	clock            func() time.Time

	cancelled atomic.Bool
}

func newActiveTurn(ctx context.Context, prompt string, primaryThreshold float64, emit eventEmitter, clock func() time.Time) *activeTurn {
	turnContext, cancel := context.WithCancel(ctx)
	return &activeTurn{
		id:     uuid.NewString(),
		prompt: prompt,
		ctx:    turnContext,
		cancel: cancel,

		content:      newTextBuffer(),
		toolIndex:    map[string]int{},
		citationSeen: map[string]struct{}{},
		imageSeen:    map[string]struct{}{},

		primaryThreshold: primaryThreshold,
		emit:             emit,
		clock:            clock,
	}
}

// Cancel marks the turn cancelled and cancels its context, aborting any
// in-flight request. Idempotent.
func (t *activeTurn) Cancel() {
	if !t.cancelled.CompareAndSwap(false, true) {
		return
	}
	t.cancel()
	t.content.Clear()
}

func (t *activeTurn) IsCancelled() bool {
	return t.cancelled.Load()
}

// finalize freezes the scratch state into an assistant history message.
func (t *activeTurn) finalize() chat.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.content.TextComplete()
	message := chat.Message{
		ID:        t.id,
		Role:      chat.MessageRoleAssistant,
		Content:   t.content.String(),
		CreatedAt: t.clock(),
	}
	copier.Copy(&message.ToolCalls, t.toolCalls)
	copier.Copy(&message.Citations, t.citations)
	copier.Copy(&message.Images, t.images)
	return message
}

// adoptAnswer replaces the scratch state with a complete non-streamed answer.
// Citations are taken verbatim; the first-seen dedup does not apply here.
func (t *activeTurn) adoptAnswer(answer *chat.Answer) {
	t.mu.Lock()
	t.citations = nil
	copier.Copy(&t.citations, answer.Citations)
	t.mu.Unlock()

	t.content.AddChunk(answer.Content)
	t.emit(events.NewAssistantResponseSegment(answer.Content))
}

func (t *activeTurn) usageSnapshot() chat.Usage {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.usage
}

func (t *activeTurn) pendingState() (content string, toolCalls []chat.ToolCallRecord, citations []chat.Citation, images []chat.ImageResult) {
	t.mu.Lock()
	defer t.mu.Unlock()

	copier.Copy(&toolCalls, t.toolCalls)
	copier.Copy(&citations, t.citations)
	copier.Copy(&images, t.images)
	return t.content.String(), toolCalls, citations, images
}
