package session

import (
	"encoding/json"

	"github.com/rulewise/chat-core/core/capabilities"
	"github.com/rulewise/chat-core/core/chat"
	"github.com/rulewise/chat-core/core/chat/assistant"
	"github.com/rulewise/chat-core/core/events"
)

// apply folds one decoded stream event into the turn's scratch state and
// emits the matching session events. A non-nil return is terminal for the
// turn; everything streamed so far is then discarded.
func (t *activeTurn) apply(event assistant.Event) error {
	if t.IsCancelled() {
		return nil
	}

	switch typedEvent := event.(type) {
	case assistant.TextDelta:
		t.appendContent(typedEvent.Text)
	case assistant.LegacyText:
		t.appendContent(typedEvent.Text)
	case assistant.ToolInputStart:
		t.startToolCall(typedEvent.ID, typedEvent.ToolName)
	case assistant.ToolInputAvailable:
		t.attachToolInput(typedEvent.ID, typedEvent.Input)
	case assistant.ToolOutputAvailable:
		t.completeToolCall(typedEvent.ID, typedEvent.Output)
	case assistant.ContextData:
		t.addContextData(typedEvent.Citations, typedEvent.Images)
	case assistant.Finish:
		t.recordUsage(typedEvent.Usage)
	case assistant.ErrorEvent:
		return &AssistantError{Message: typedEvent.Message}
	}
	return nil
}

// appendContent feeds the streamed-content buffer. Subscribers receive the
// text as segment events from the buffer's consumer loop, not from here.
func (t *activeTurn) appendContent(text string) {
	if text == "" {
		return
	}
	t.content.AddChunk(text)
}

func (t *activeTurn) startToolCall(id, name string) {
	t.mu.Lock()
	if _, exists := t.toolIndex[id]; exists {
		t.mu.Unlock()
		logger.Warn("duplicate tool invocation start ignored", "tool_call_id", id)
		return
	}
	t.toolIndex[id] = len(t.toolCalls)
	t.toolCalls = append(t.toolCalls, chat.ToolCallRecord{
		ID:        id,
		Name:      name,
		Status:    chat.ToolCallStatusRunning,
		StartedAt: t.clock(),
	})
	t.mu.Unlock()

	t.emit(events.NewToolCallStarted(id, name))
}

func (t *activeTurn) attachToolInput(id string, input json.RawMessage) {
	t.mu.Lock()
	index, exists := t.toolIndex[id]
	if !exists {
		t.mu.Unlock()
		logger.Warn("tool input for unknown invocation ignored", "tool_call_id", id)
		return
	}
	t.toolCalls[index].Arguments = string(input)
	record := t.toolCalls[index]
	t.mu.Unlock()

	t.emit(events.NewToolCallUpdated(record.ID, record.Name, record.Arguments))
}

func (t *activeTurn) completeToolCall(id string, output json.RawMessage) {
	t.mu.Lock()
	index, exists := t.toolIndex[id]
	if !exists {
		t.mu.Unlock()
		logger.Warn("tool output for unknown invocation ignored", "tool_call_id", id)
		return
	}
	t.toolCalls[index].Status = chat.ToolCallStatusCompleted
	t.toolCalls[index].Result = string(output)
	t.toolCalls[index].Duration = t.clock().Sub(t.toolCalls[index].StartedAt)
	record := t.toolCalls[index]
	t.mu.Unlock()

	t.emit(events.NewToolCallCompleted(record.ID, record.Name, record.Result, record.Duration))
	t.extractArtifacts(record.Name, output)
}

// extractArtifacts turns recognized capability output into citations and
// image results. Unrecognized tool names and undecodable output carry no
// artifacts; the turn continues either way.
func (t *activeTurn) extractArtifacts(toolName string, output json.RawMessage) {
	switch {
	case capabilities.IsResourceSearch(toolName):
		matches, err := capabilities.DecodeMatches(output)
		if err != nil {
			logger.Debug("skipping undecodable resource-search output", "tool", toolName, "error", err)
			return
		}
		for _, match := range matches {
			t.addCitation(match.Citation(t.primaryThreshold))
		}
	case capabilities.IsImageSource(toolName):
		items, err := capabilities.DecodeAttachments(output)
		if err != nil {
			logger.Debug("skipping undecodable attachment output", "tool", toolName, "error", err)
			return
		}
		for _, item := range items {
			t.addImage(item.Image())
		}
	}
}

func (t *activeTurn) addContextData(citations []chat.Citation, images []chat.ImageResult) {
	for _, citation := range citations {
		t.addCitation(citation)
	}
	for _, image := range images {
		t.addImage(image)
	}
}

// addCitation accepts a citation unless one with the same resource id was
// already seen this turn. First seen wins, including its relevance.
func (t *activeTurn) addCitation(citation chat.Citation) {
	t.mu.Lock()
	if _, seen := t.citationSeen[citation.ResourceID]; seen {
		t.mu.Unlock()
		return
	}
	t.citationSeen[citation.ResourceID] = struct{}{}
	t.citations = append(t.citations, citation)
	t.mu.Unlock()

	t.emit(events.NewCitationAdded(citation))
}

// addImage accepts an image result unless its id was already seen this turn.
func (t *activeTurn) addImage(image chat.ImageResult) {
	t.mu.Lock()
	if _, seen := t.imageSeen[image.ID]; seen {
		t.mu.Unlock()
		return
	}
	t.imageSeen[image.ID] = struct{}{}
	t.images = append(t.images, image)
	t.mu.Unlock()

	t.emit(events.NewImageAdded(image))
}

func (t *activeTurn) recordUsage(usage chat.Usage) {
	t.mu.Lock()
	t.usage = usage
	t.mu.Unlock()

	t.emit(events.NewUsageRecorded(usage))
}
