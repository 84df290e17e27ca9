package session

import (
	"errors"
	"fmt"
)

var (
	// ErrBlankPrompt is returned by Send when the prompt is empty or only
	// whitespace. No turn is started and no message is appended.
	ErrBlankPrompt = errors.New("prompt is blank")
	// ErrSessionClosed is returned by Send after Close.
	ErrSessionClosed = errors.New("session is closed")
)

// AssistantError is a failure the backend reported inside the event stream.
// It settles the turn as failed, with streamed-so-far state discarded.
type AssistantError struct {
	Message string
}

func (e *AssistantError) Error() string {
	return fmt.Sprintf("assistant reported an error: %s", e.Message)
}
