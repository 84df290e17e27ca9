// Package capabilities describes the server-side tools the assistant may
// invoke during a turn and decodes their outputs into conversation artifacts.
//
// The engine never executes these tools itself; it only recognizes their
// names in the event stream and turns resource-search output into citations
// and attachment/image-search output into image results.
package capabilities

import (
	"encoding/json"
	"fmt"

	"github.com/rulewise/chat-core/core/chat"
)

const (
	// SearchResources looks up source resources (rulebooks, guides) that
	// back an answer; its output is a list of scored matches.
	SearchResources = "search_resources"
	// FetchAttachment retrieves a stored attachment by reference.
	FetchAttachment = "fetch_attachment"
	// SearchImages finds images related to the current question.
	SearchImages = "search_images"
)

// DefaultPrimaryScoreThreshold separates primary citations from supporting
// ones. The cutoff is a tuning heuristic, kept overridable rather than
// hard-coded at the call sites.
const DefaultPrimaryScoreThreshold = 0.5

// IsResourceSearch reports whether output of the named tool should be read as
// scored resource matches.
func IsResourceSearch(toolName string) bool {
	return toolName == SearchResources
}

// IsImageSource reports whether output of the named tool should be read as
// attachment/image items.
func IsImageSource(toolName string) bool {
	return toolName == FetchAttachment || toolName == SearchImages
}

// ScoredMatch is one resource-search result.
type ScoredMatch struct {
	ResourceID   string  `json:"resource_id"`
	ResourceName string  `json:"resource_name"`
	PageNumber   *int    `json:"page_number,omitempty"`
	Section      string  `json:"section,omitempty"`
	Score        float64 `json:"score"`
}

// Citation converts the match into a citation, classifying relevance against
// the given score threshold.
func (m ScoredMatch) Citation(primaryThreshold float64) chat.Citation {
	return chat.Citation{
		ResourceID:   m.ResourceID,
		ResourceName: m.ResourceName,
		PageNumber:   m.PageNumber,
		Section:      m.Section,
		Relevance:    ClassifyRelevance(m.Score, primaryThreshold),
	}
}

// ClassifyRelevance marks a match primary when its score exceeds the
// threshold, supporting otherwise.
func ClassifyRelevance(score, primaryThreshold float64) chat.CitationRelevance {
	if score > primaryThreshold {
		return chat.CitationRelevancePrimary
	}
	return chat.CitationRelevanceSupporting
}

// AttachmentItem is one attachment-fetch or image-search result.
type AttachmentItem struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Caption     string `json:"caption,omitempty"`
	Description string `json:"description,omitempty"`
}

// Image converts the item into an image result.
func (i AttachmentItem) Image() chat.ImageResult {
	return chat.ImageResult{
		ID:          i.ID,
		URL:         i.URL,
		Caption:     i.Caption,
		Description: i.Description,
	}
}

// DecodeMatches parses resource-search output. The backend has emitted both a
// bare array and a wrapped object over time, so both are accepted.
func DecodeMatches(output json.RawMessage) ([]ScoredMatch, error) {
	var matches []ScoredMatch
	if err := decodeList(output, &matches); err != nil {
		return nil, fmt.Errorf("failed to decode scored matches: %w", err)
	}
	return matches, nil
}

// DecodeAttachments parses attachment-fetch or image-search output, accepting
// the same array/wrapper variants as DecodeMatches.
func DecodeAttachments(output json.RawMessage) ([]AttachmentItem, error) {
	var items []AttachmentItem
	if err := decodeList(output, &items); err != nil {
		return nil, fmt.Errorf("failed to decode attachment items: %w", err)
	}
	return items, nil
}

func decodeList(output json.RawMessage, target any) error {
	if len(output) == 0 {
		return nil
	}

	if err := json.Unmarshal(output, target); err == nil {
		return nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(output, &wrapped); err != nil {
		return fmt.Errorf("output is neither a list nor a wrapper object: %w", err)
	}
	for _, key := range []string{"matches", "results", "items"} {
		if list, ok := wrapped[key]; ok {
			return json.Unmarshal(list, target)
		}
	}
	return fmt.Errorf("wrapper object carries no recognized list key")
}
