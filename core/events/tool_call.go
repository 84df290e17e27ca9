package events

import "time"

const (
	// KindToolCallStarted identifies tool invocation start.
	KindToolCallStarted Kind = "tool_call.started"
	// KindToolCallUpdated identifies tool invocation argument availability.
	KindToolCallUpdated Kind = "tool_call.updated"
	// KindToolCallCompleted identifies tool invocation completion.
	KindToolCallCompleted Kind = "tool_call.completed"
)

// ToolCallStarted marks the start of a server-side tool invocation.
type ToolCallStarted struct {
	Base
	ID   string
	Name string
}

// NewToolCallStarted creates a tool call started event.
func NewToolCallStarted(id, name string) ToolCallStarted {
	return ToolCallStarted{Base: NewBase(KindToolCallStarted), ID: id, Name: name}
}

// ToolCallUpdated marks the arrival of an invocation's arguments.
type ToolCallUpdated struct {
	Base
	ID        string
	Name      string
	Arguments string
}

// NewToolCallUpdated creates a tool call updated event.
func NewToolCallUpdated(id, name, arguments string) ToolCallUpdated {
	return ToolCallUpdated{Base: NewBase(KindToolCallUpdated), ID: id, Name: name, Arguments: arguments}
}

// ToolCallCompleted marks a finished tool invocation.
type ToolCallCompleted struct {
	Base
	ID       string
	Name     string
	Result   string
	Duration time.Duration
}

// NewToolCallCompleted creates a tool call completed event.
func NewToolCallCompleted(id, name, result string, duration time.Duration) ToolCallCompleted {
	return ToolCallCompleted{Base: NewBase(KindToolCallCompleted), ID: id, Name: name, Result: result, Duration: duration}
}
