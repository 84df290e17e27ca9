// Package session implements the conversation engine: it drives streamed
// assistant turns over an AssistantClient, folds the event stream into
// conversation state, and exposes point-in-time snapshots for presentation.
//
// A session holds at most one in-flight turn. Sending while a turn is
// streaming cancels the previous turn; its partial output is discarded and
// never reaches history.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/rulewise/chat-core/core/capabilities"
	"github.com/rulewise/chat-core/core/chat"
	"github.com/rulewise/chat-core/core/chat/assistant"
	"github.com/rulewise/chat-core/core/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Phase is the session's coarse lifecycle state as seen by presentation.
type Phase string

const (
	// PhaseIdle means no turn is in flight and no error is pending.
	PhaseIdle Phase = "idle"
	// PhaseStreaming means a turn is in flight.
	PhaseStreaming Phase = "streaming"
	// PhaseFailed means the last turn settled with a terminal error that has
	// not been dismissed yet.
	PhaseFailed Phase = "failed"
)

// Session is a single conversation with the assistant backend.
type Session struct {
	mu          sync.RWMutex
	messages    []chat.Message
	activeTurn  *activeTurn
	terminalErr error
	totalUsage  chat.Usage

	client           AssistantClient
	emit             eventEmitter
	eventHandler     func(events.Event)
	callbacks        sessionCallbacks
	primaryThreshold float64
	baseContext      context.Context
	clock            func() time.Time

	closeOnce sync.Once
	closed    chan struct{}
	turns     sync.WaitGroup
}

// New creates a session driving the given client. The zero configuration
// streams turns, classifies citations against the default score threshold,
// and emits no events.
func New(client AssistantClient, opts ...SessionOption) *Session {
	s := &Session{
		client:           client,
		emit:             noopEventEmitter,
		primaryThreshold: capabilities.DefaultPrimaryScoreThreshold,
		baseContext:      context.Background(),
		clock:            time.Now,
		closed:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.emit = newCallbackEventEmitter(s.callbacks, s.eventHandler)
	return s
}

// Send appends the prompt to history and starts a new turn. A blank prompt
// is rejected without side effects. If a turn is already in flight it is
// cancelled first; only the new turn can settle into history.
func (s *Session) Send(prompt string, opts ...SendOption) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrBlankPrompt
	}
	select {
	case <-s.closed:
		return ErrSessionClosed
	default:
	}

	options := sendOptions{streaming: true}
	for _, opt := range opts {
		opt(&options)
	}

	s.mu.Lock()
	if s.activeTurn != nil {
		s.activeTurn.Cancel()
	}
	s.terminalErr = nil
	s.messages = append(s.messages, chat.Message{
		ID:        uuid.NewString(),
		Role:      chat.MessageRoleUser,
		Content:   prompt,
		CreatedAt: s.clock(),
	})
	history := make([]chat.Message, len(s.messages))
	copy(history, s.messages)

	turn := newActiveTurn(s.baseContext, prompt, s.primaryThreshold, s.emit, s.clock)
	s.activeTurn = turn
	s.mu.Unlock()

	s.emit(events.NewTurnStarted(turn.id, prompt))

	s.turns.Add(1)
	go func() {
		defer s.turns.Done()
		if options.streaming {
			s.processStreamingTurn(turn, history)
		} else {
			s.processCompleteTurn(turn, history)
		}
	}()
	return nil
}

// CancelTurn deliberately cancels the in-flight turn, if any. Partial output
// is discarded; history keeps the user prompt.
func (s *Session) CancelTurn() {
	s.mu.Lock()
	turn := s.activeTurn
	s.mu.Unlock()

	if turn != nil {
		turn.Cancel()
	}
}

// Clear cancels any in-flight turn and resets the session to an empty idle
// state: no history, no pending error, zeroed usage totals.
func (s *Session) Clear() {
	s.mu.Lock()
	if s.activeTurn != nil {
		s.activeTurn.Cancel()
		s.activeTurn = nil
	}
	s.messages = nil
	s.terminalErr = nil
	s.totalUsage = chat.Usage{}
	s.mu.Unlock()
}

// DismissError acknowledges a settled turn failure, returning the session to
// idle. History is unaffected.
func (s *Session) DismissError() {
	s.mu.Lock()
	s.terminalErr = nil
	s.mu.Unlock()
}

// Close cancels any in-flight turn and waits for it to settle. Subsequent
// Send calls fail with ErrSessionClosed. Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		s.CancelTurn()
		s.turns.Wait()
	})
}

// Snapshot is a point-in-time view of session state, safe to read while a
// turn is streaming.
type Snapshot struct {
	Phase   Phase
	History []chat.Message

	// PendingContent through PendingImages mirror the in-flight turn's
	// scratch state; all are empty unless Phase is streaming.
	PendingContent   string
	PendingToolCalls []chat.ToolCallRecord
	PendingCitations []chat.Citation
	PendingImages    []chat.ImageResult

	// Err is the undismissed terminal error of the last settled turn.
	Err error
	// Usage accumulates token counters across all settled turns.
	Usage chat.Usage
}

// Snapshot returns a point-in-time view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	snapshot := Snapshot{
		Phase: PhaseIdle,
		Err:   s.terminalErr,
		Usage: s.totalUsage,
	}
	copier.Copy(&snapshot.History, s.messages)
	turn := s.activeTurn
	s.mu.RUnlock()

	if turn != nil && !turn.IsCancelled() {
		snapshot.Phase = PhaseStreaming
		snapshot.PendingContent, snapshot.PendingToolCalls, snapshot.PendingCitations, snapshot.PendingImages = turn.pendingState()
	} else if snapshot.Err != nil {
		snapshot.Phase = PhaseFailed
	}
	return snapshot
}

// History returns a copy of the finalized conversation history.
func (s *Session) History() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := make([]chat.Message, len(s.messages))
	copy(history, s.messages)
	return history
}

func (s *Session) processStreamingTurn(turn *activeTurn, history []chat.Message) {
	ctx, span := tracer.Start(turn.ctx, "process streaming turn",
		trace.WithAttributes(attribute.String("turn.id", turn.id)),
	)
	defer span.End()

	// Streamed text reaches subscribers through the content buffer: the
	// dispatcher appends chunks, this loop drains them in order. Cancelling
	// the turn clears the buffer and releases the loop.
	segmentsDone := make(chan struct{})
	go func() {
		defer close(segmentsDone)
		for chunk := range turn.content.Chunks {
			if turn.IsCancelled() {
				return
			}
			s.emit(events.NewAssistantResponseSegment(chunk))
		}
	}()

	var terminal error
streamLoop:
	for payload, err := range s.client.StreamTurn(ctx, history) {
		if err != nil {
			terminal = err
			break streamLoop
		}
		if turn.IsCancelled() {
			break streamLoop
		}
		if err := turn.apply(assistant.DecodeRecord(payload)); err != nil {
			terminal = err
			break streamLoop
		}
	}

	turn.content.TextComplete()
	<-segmentsDone

	s.settle(turn, terminal, span)
}

func (s *Session) processCompleteTurn(turn *activeTurn, history []chat.Message) {
	ctx, span := tracer.Start(turn.ctx, "process complete turn",
		trace.WithAttributes(attribute.String("turn.id", turn.id)),
	)
	defer span.End()

	answer, err := s.client.CompleteTurn(ctx, history)
	if err != nil {
		s.settle(turn, err, span)
		return
	}

	if !turn.IsCancelled() {
		turn.adoptAnswer(answer)
	}
	s.settle(turn, nil, span)
}

// settle resolves a finished turn exactly once: append its message to
// history, record its terminal error, or discard it as cancelled. A turn
// that was superseded by a newer Send always settles as cancelled.
func (s *Session) settle(turn *activeTurn, terminal error, span trace.Span) {
	defer turn.cancel()

	s.mu.Lock()
	owned := s.activeTurn == turn
	if owned {
		s.activeTurn = nil
	}

	if !owned || turn.IsCancelled() || errors.Is(terminal, context.Canceled) {
		s.mu.Unlock()
		s.emit(events.NewTurnCancelled(turn.id))
		return
	}

	if terminal != nil {
		s.terminalErr = terminal
		s.mu.Unlock()

		span.RecordError(terminal)
		span.SetStatus(codes.Error, terminal.Error())
		s.emit(events.NewTurnFailed(turn.id, terminal))
		return
	}

	message := turn.finalize()
	s.messages = append(s.messages, message)
	s.totalUsage.Add(turn.usageSnapshot())
	s.mu.Unlock()

	s.emit(events.NewAssistantResponseFinal(message.Content))
	s.emit(events.NewTurnCompleted(turn.id, message))
}
