package session

import (
	"testing"
	"time"
)

func TestTextBufferDeliversChunksInOrder(t *testing.T) {
	buffer := newTextBuffer()
	buffer.AddChunk("a")
	buffer.AddChunk("b")
	buffer.TextComplete()

	var chunks []string
	for chunk := range buffer.Chunks {
		chunks = append(chunks, chunk)
	}

	if len(chunks) != 2 || chunks[0] != "a" || chunks[1] != "b" {
		t.Fatalf("expected ordered chunks, got %v", chunks)
	}
	if got := buffer.String(); got != "ab" {
		t.Fatalf("expected joined content %q, got %q", "ab", got)
	}
}

func TestTextBufferBlocksUntilMoreTextArrives(t *testing.T) {
	buffer := newTextBuffer()

	received := make(chan string, 2)
	go func() {
		for chunk := range buffer.Chunks {
			received <- chunk
		}
		close(received)
	}()

	buffer.AddChunk("first")
	select {
	case got := <-received:
		if got != "first" {
			t.Fatalf("expected %q, got %q", "first", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the first chunk")
	}

	buffer.AddChunk("second")
	buffer.TextComplete()

	select {
	case got := <-received:
		if got != "second" {
			t.Fatalf("expected %q, got %q", "second", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the second chunk")
	}

	select {
	case _, open := <-received:
		if open {
			t.Fatalf("expected the chunk stream to end after completion")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the chunk stream to end")
	}
}

func TestTextBufferClearReleasesReaderAndDropsText(t *testing.T) {
	buffer := newTextBuffer()
	buffer.AddChunk("partial")

	done := make(chan struct{})
	go func() {
		for range buffer.Chunks {
		}
		close(done)
	}()

	// Give the reader a moment to drain and block.
	time.Sleep(20 * time.Millisecond)
	buffer.Clear()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the reader to be released")
	}

	if got := buffer.String(); got != "" {
		t.Fatalf("expected cleared buffer to be empty, got %q", got)
	}
	if buffer.AddChunk("late"); buffer.String() != "" {
		t.Fatalf("expected chunks after clear to be dropped, got %q", buffer.String())
	}
}
