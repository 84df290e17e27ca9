package events

import "github.com/rulewise/chat-core/core/chat"

const (
	// KindTurnStarted identifies the start of a new turn.
	KindTurnStarted Kind = "turn_state.started"
	// KindTurnCompleted identifies normal turn settlement.
	KindTurnCompleted Kind = "turn_state.completed"
	// KindTurnFailed identifies turn settlement with a terminal error.
	KindTurnFailed Kind = "turn_state.failed"
	// KindTurnCancelled identifies deliberate turn cancellation.
	KindTurnCancelled Kind = "turn_state.cancelled"
)

// TurnStarted marks the start of a turn.
type TurnStarted struct {
	Base
	TurnID string
	Prompt string
}

// NewTurnStarted creates a turn started event.
func NewTurnStarted(turnID, prompt string) TurnStarted {
	return TurnStarted{Base: NewBase(KindTurnStarted), TurnID: turnID, Prompt: prompt}
}

// TurnCompleted marks normal settlement; Message is the finalized assistant
// message appended to history.
type TurnCompleted struct {
	Base
	TurnID  string
	Message chat.Message
}

// NewTurnCompleted creates a turn completed event.
func NewTurnCompleted(turnID string, message chat.Message) TurnCompleted {
	return TurnCompleted{Base: NewBase(KindTurnCompleted), TurnID: turnID, Message: message}
}

// TurnFailed marks settlement with a terminal error. History is unchanged.
type TurnFailed struct {
	Base
	TurnID string
	Err    error
}

// NewTurnFailed creates a turn failed event.
func NewTurnFailed(turnID string, err error) TurnFailed {
	return TurnFailed{Base: NewBase(KindTurnFailed), TurnID: turnID, Err: err}
}

// TurnCancelled marks deliberate cancellation. Not a failure; history is
// unchanged and no error is surfaced.
type TurnCancelled struct {
	Base
	TurnID string
}

// NewTurnCancelled creates a turn cancelled event.
func NewTurnCancelled(turnID string) TurnCancelled {
	return TurnCancelled{Base: NewBase(KindTurnCancelled), TurnID: turnID}
}
