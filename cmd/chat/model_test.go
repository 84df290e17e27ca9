package main

import (
	"strings"
	"testing"
	"time"

	session "github.com/rulewise/chat-core/core"
	"github.com/rulewise/chat-core/core/capabilities"
	"github.com/rulewise/chat-core/core/chat"
)

func TestRenderToolCallLabelsRunningCallsFromCatalog(t *testing.T) {
	var b strings.Builder
	renderToolCall(&b, chat.ToolCallRecord{
		ID:     "call-1",
		Name:   capabilities.SearchResources,
		Status: chat.ToolCallStatusRunning,
	})

	line := b.String()
	if !strings.Contains(line, capabilities.SearchResources) {
		t.Fatalf("expected the tool name in the line, got %q", line)
	}
	if !strings.Contains(line, "Search the resource library") {
		t.Fatalf("expected the catalog description for a running call, got %q", line)
	}
}

func TestRenderToolCallShowsDurationWhenCompleted(t *testing.T) {
	var b strings.Builder
	renderToolCall(&b, chat.ToolCallRecord{
		ID:       "call-1",
		Name:     capabilities.SearchImages,
		Status:   chat.ToolCallStatusCompleted,
		Duration: 1500 * time.Millisecond,
	})

	line := b.String()
	if !strings.Contains(line, "1.5s") {
		t.Fatalf("expected the rounded duration, got %q", line)
	}
	if strings.Contains(line, "Search for images") {
		t.Fatalf("expected no catalog description once completed, got %q", line)
	}
}

func TestRenderTranscriptShowsCitationLocations(t *testing.T) {
	page := 80
	snapshot := session.Snapshot{
		Phase: session.PhaseIdle,
		History: []chat.Message{
			{Role: chat.MessageRoleUser, Content: "how does grappling work"},
			{
				Role:    chat.MessageRoleAssistant,
				Content: "Grappling is an opposed check.",
				Citations: []chat.Citation{{
					ResourceID:   "res-1",
					ResourceName: "Core Rulebook",
					PageNumber:   &page,
					Section:      "Combat",
					Relevance:    chat.CitationRelevancePrimary,
				}},
			},
		},
	}

	transcript := renderTranscript(snapshot, 80)
	if !strings.Contains(transcript, "Core Rulebook, p.80 (Combat)") {
		t.Fatalf("expected the citation location line, got %q", transcript)
	}
	if !strings.Contains(transcript, "[primary]") {
		t.Fatalf("expected the relevance marker, got %q", transcript)
	}
}
