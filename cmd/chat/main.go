// Command chat is a terminal client for a rules-assistant conversation. It
// connects to the endpoint in RULEWISE_API_URL, authenticating with the
// credential in RULEWISE_API_KEY.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	session "github.com/rulewise/chat-core/core"
	"github.com/rulewise/chat-core/core/chat/assistant"
	"github.com/rulewise/chat-core/core/events"
)

const defaultEndpoint = "http://localhost:8080/v1/chat"

func main() {
	endpoint := os.Getenv("RULEWISE_API_URL")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	client := assistant.NewClient(endpoint, assistant.EnvToken("RULEWISE_API_KEY"))

	sessionEvents := make(chan events.Event, 64)
	s := session.New(client, session.WithEventHandler(func(event events.Event) {
		// The UI rerenders from a session snapshot on every wakeup, so a
		// dropped event only delays a redraw. Never block the session on a
		// slow terminal.
		select {
		case sessionEvents <- event:
		default:
		}
	}))
	defer s.Close()

	program := tea.NewProgram(newModel(s, sessionEvents), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
