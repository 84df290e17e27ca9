package assistant

import (
	"encoding/json"

	"github.com/rulewise/chat-core/core/chat"
)

type requestBody struct {
	Messages []wireMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func toWireMessages(messages []chat.Message) []wireMessage {
	wireMessages := make([]wireMessage, 0, len(messages))
	for _, message := range messages {
		wireMessages = append(wireMessages, wireMessage{
			Role:    string(message.Role),
			Content: message.Content,
		})
	}
	return wireMessages
}

type wireCitation struct {
	ResourceID   string `json:"resource_id"`
	ResourceName string `json:"resource_name"`
	PageNumber   *int   `json:"page_number,omitempty"`
	Section      string `json:"section,omitempty"`
	Relevance    string `json:"relevance,omitempty"`
}

func (c wireCitation) toCitation() chat.Citation {
	return chat.Citation{
		ResourceID:   c.ResourceID,
		ResourceName: c.ResourceName,
		PageNumber:   c.PageNumber,
		Section:      c.Section,
		Relevance:    chat.CitationRelevance(c.Relevance),
	}
}

func toCitations(wireCitations []wireCitation) []chat.Citation {
	var citations []chat.Citation
	for _, citation := range wireCitations {
		citations = append(citations, citation.toCitation())
	}
	return citations
}

type wireImage struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Caption     string `json:"caption,omitempty"`
	Description string `json:"description,omitempty"`
}

func toImages(wireImages []wireImage) []chat.ImageResult {
	var images []chat.ImageResult
	for _, image := range wireImages {
		images = append(images, chat.ImageResult{
			ID:          image.ID,
			URL:         image.URL,
			Caption:     image.Caption,
			Description: image.Description,
		})
	}
	return images
}

// Event is one decoded record from the stream. The concrete types below form
// the complete set of recognized kinds; anything that does not decode into one
// of them becomes a LegacyText.
type Event interface {
	streamEvent()
}

// TextDelta appends a text fragment to the streamed content.
type TextDelta struct {
	ID   string
	Text string
}

// ToolInputStart announces that the server started a tool invocation.
type ToolInputStart struct {
	ID       string
	ToolName string
}

// ToolInputAvailable carries the full arguments of a started tool invocation.
type ToolInputAvailable struct {
	ID    string
	Input json.RawMessage
}

// ToolOutputAvailable carries the result of a completed tool invocation.
type ToolOutputAvailable struct {
	ID     string
	Output json.RawMessage
}

// Finish reports the turn's token usage once generation ends.
type Finish struct {
	ID           string
	FinishReason string
	Usage        chat.Usage
}

// ContextData bulk-delivers citations and images that were extracted
// server-side.
type ContextData struct {
	ID        string
	Citations []chat.Citation
	Images    []chat.ImageResult
}

// ErrorEvent is a terminal failure reported inside the stream.
type ErrorEvent struct {
	ID      string
	Message string
}

// LegacyText is the backward-compatible fallback for records that are not
// structured events: the raw payload is treated as plain response text.
type LegacyText struct {
	Text string
}

func (TextDelta) streamEvent()           {}
func (ToolInputStart) streamEvent()      {}
func (ToolInputAvailable) streamEvent()  {}
func (ToolOutputAvailable) streamEvent() {}
func (Finish) streamEvent()              {}
func (ContextData) streamEvent()         {}
func (ErrorEvent) streamEvent()          {}
func (LegacyText) streamEvent()          {}

type wireEvent struct {
	Type         string          `json:"type"`
	ID           string          `json:"id"`
	Text         string          `json:"text"`
	ToolName     string          `json:"toolName"`
	Input        json.RawMessage `json:"input"`
	Output       json.RawMessage `json:"output"`
	FinishReason string          `json:"finishReason"`
	TotalUsage   *wireUsage      `json:"totalUsage"`
	Error        string          `json:"error"`
	Citations    []wireCitation  `json:"citations"`
	Images       []wireImage     `json:"images"`
}

type wireUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
}

// DecodeRecord turns one raw record payload into a typed event. Malformed or
// unrecognized payloads decode to LegacyText; decoding never fails.
func DecodeRecord(payload string) Event {
	var record wireEvent
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return LegacyText{Text: payload}
	}

	switch record.Type {
	case "text-delta":
		return TextDelta{ID: record.ID, Text: record.Text}
	case "tool-input-start":
		return ToolInputStart{ID: record.ID, ToolName: record.ToolName}
	case "tool-input-available":
		return ToolInputAvailable{ID: record.ID, Input: record.Input}
	case "tool-output-available":
		return ToolOutputAvailable{ID: record.ID, Output: record.Output}
	case "finish":
		finish := Finish{ID: record.ID, FinishReason: record.FinishReason}
		if record.TotalUsage != nil {
			finish.Usage = chat.Usage{
				PromptTokens:     record.TotalUsage.PromptTokens,
				CompletionTokens: record.TotalUsage.CompletionTokens,
			}
		}
		return finish
	case "context-data":
		return ContextData{
			ID:        record.ID,
			Citations: toCitations(record.Citations),
			Images:    toImages(record.Images),
		}
	case "error":
		return ErrorEvent{ID: record.ID, Message: record.Error}
	default:
		return LegacyText{Text: payload}
	}
}
