package capabilities

import (
	"encoding/json"
	"testing"

	"github.com/rulewise/chat-core/core/chat"
)

func TestClassifyRelevanceUsesStrictThreshold(t *testing.T) {
	testCases := []struct {
		name      string
		score     float64
		threshold float64
		expected  chat.CitationRelevance
	}{
		{name: "above threshold is primary", score: 0.9, threshold: 0.5, expected: chat.CitationRelevancePrimary},
		{name: "below threshold is supporting", score: 0.2, threshold: 0.5, expected: chat.CitationRelevanceSupporting},
		{name: "exactly at threshold is supporting", score: 0.5, threshold: 0.5, expected: chat.CitationRelevanceSupporting},
		{name: "custom threshold", score: 0.6, threshold: 0.7, expected: chat.CitationRelevanceSupporting},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := ClassifyRelevance(testCase.score, testCase.threshold); got != testCase.expected {
				t.Fatalf("expected relevance %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestScoredMatchCitationCarriesLocation(t *testing.T) {
	page := 12
	match := ScoredMatch{
		ResourceID:   "res-1",
		ResourceName: "Core Rulebook",
		PageNumber:   &page,
		Section:      "Combat",
		Score:        0.8,
	}

	citation := match.Citation(DefaultPrimaryScoreThreshold)

	if citation.ResourceID != "res-1" || citation.ResourceName != "Core Rulebook" {
		t.Fatalf("expected resource identity to carry over, got %+v", citation)
	}
	if citation.PageNumber == nil || *citation.PageNumber != 12 {
		t.Fatalf("expected page number 12, got %v", citation.PageNumber)
	}
	if citation.Section != "Combat" {
		t.Fatalf("expected section %q, got %q", "Combat", citation.Section)
	}
	if citation.Relevance != chat.CitationRelevancePrimary {
		t.Fatalf("expected primary relevance, got %q", citation.Relevance)
	}
}

func TestDecodeMatchesAcceptsListAndWrapperShapes(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
		want    int
	}{
		{name: "bare list", payload: `[{"resource_id":"a","score":0.9},{"resource_id":"b","score":0.1}]`, want: 2},
		{name: "matches wrapper", payload: `{"matches":[{"resource_id":"a","score":0.9}]}`, want: 1},
		{name: "results wrapper", payload: `{"results":[{"resource_id":"a","score":0.9}]}`, want: 1},
		{name: "empty payload", payload: ``, want: 0},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			matches, err := DecodeMatches(json.RawMessage(testCase.payload))
			if err != nil {
				t.Fatalf("expected decode to succeed, got %v", err)
			}
			if len(matches) != testCase.want {
				t.Fatalf("expected %d matches, got %d", testCase.want, len(matches))
			}
		})
	}
}

func TestDecodeMatchesRejectsNonListShapes(t *testing.T) {
	if _, err := DecodeMatches(json.RawMessage(`"not a list"`)); err == nil {
		t.Fatalf("expected an error for a scalar payload")
	}
	if _, err := DecodeMatches(json.RawMessage(`{"unexpected":[]}`)); err == nil {
		t.Fatalf("expected an error for an unrecognized wrapper key")
	}
}

func TestDecodeAttachmentsAcceptsItemsWrapper(t *testing.T) {
	items, err := DecodeAttachments(json.RawMessage(`{"items":[{"id":"img-1","url":"https://example.test/1.png"}]}`))
	if err != nil {
		t.Fatalf("expected decode to succeed, got %v", err)
	}
	if len(items) != 1 || items[0].ID != "img-1" {
		t.Fatalf("expected one item with id img-1, got %+v", items)
	}

	image := items[0].Image()
	if image.URL != "https://example.test/1.png" {
		t.Fatalf("expected url to carry over, got %q", image.URL)
	}
}

func TestToolNameClassification(t *testing.T) {
	if !IsResourceSearch(SearchResources) {
		t.Fatalf("expected %q to classify as resource search", SearchResources)
	}
	if IsResourceSearch(SearchImages) {
		t.Fatalf("expected %q not to classify as resource search", SearchImages)
	}
	if !IsImageSource(FetchAttachment) || !IsImageSource(SearchImages) {
		t.Fatalf("expected attachment and image tools to classify as image sources")
	}
	if IsImageSource("roll_dice") {
		t.Fatalf("expected an unrecognized tool not to classify as an image source")
	}
}
