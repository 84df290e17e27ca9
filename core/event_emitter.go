package session

import "github.com/rulewise/chat-core/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

// newCallbackEventEmitter fans every typed event out to the registered
// event handler and to the matching convenience callback.
func newCallbackEventEmitter(callbacks sessionCallbacks, handler func(events.Event)) eventEmitter {
	return func(event events.Event) {
		if handler != nil {
			handler(event)
		}

		switch typedEvent := event.(type) {
		case events.AssistantResponseSegment:
			if callbacks.onResponse != nil {
				callbacks.onResponse(typedEvent.Segment)
			}
		case events.AssistantResponseFinal:
			if callbacks.onResponseEnd != nil {
				callbacks.onResponseEnd()
			}
		case events.ToolCallStarted:
			if callbacks.onToolCallStarted != nil {
				callbacks.onToolCallStarted(typedEvent.ID, typedEvent.Name)
			}
		case events.ToolCallCompleted:
			if callbacks.onToolCallCompleted != nil {
				callbacks.onToolCallCompleted(typedEvent.ID, typedEvent.Name, typedEvent.Duration)
			}
		case events.CitationAdded:
			if callbacks.onCitation != nil {
				callbacks.onCitation(typedEvent.Citation)
			}
		case events.ImageAdded:
			if callbacks.onImage != nil {
				callbacks.onImage(typedEvent.Image)
			}
		case events.UsageRecorded:
			if callbacks.onUsage != nil {
				callbacks.onUsage(typedEvent.Usage)
			}
		case events.TurnFailed:
			if callbacks.onError != nil {
				callbacks.onError(typedEvent.Err)
			}
		case events.TurnCancelled:
			if callbacks.onCancellation != nil {
				callbacks.onCancellation()
			}
		}
	}
}
