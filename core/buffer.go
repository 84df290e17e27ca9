package session

import (
	"strings"
	"sync"
)

// textBuffer accumulates streamed response text. Writers append chunks as
// they arrive; at most one reader may range over Chunks concurrently, and
// String is safe at any point.
type textBuffer struct {
	mu             sync.Mutex
	chunks         []string
	chunksConsumed int
	chunksDone     bool
	chunksSignal   *sync.Cond
}

func newTextBuffer() *textBuffer {
	buffer := &textBuffer{}
	buffer.chunksSignal = sync.NewCond(&buffer.mu)
	return buffer
}

func (b *textBuffer) AddChunk(chunk string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.chunksDone {
		return
	}
	b.chunks = append(b.chunks, chunk)
	b.chunksSignal.Broadcast()
}

// TextComplete marks the buffer as finished; Chunks returns once the
// remaining chunks are consumed.
func (b *textBuffer) TextComplete() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.chunksDone = true
	b.chunksSignal.Broadcast()
}

// Chunks yields appended chunks in order, blocking until more text arrives
// or TextComplete is called.
func (b *textBuffer) Chunks(yield func(string) bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for {
		for b.chunksConsumed < len(b.chunks) {
			chunk := b.chunks[b.chunksConsumed]
			b.chunksConsumed++

			b.mu.Unlock()
			ok := yield(chunk)
			b.mu.Lock()
			if !ok {
				return
			}
		}
		if b.chunksDone {
			return
		}
		b.chunksSignal.Wait()
	}
}

func (b *textBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return strings.Join(b.chunks, "")
}

// Clear drops all accumulated text and releases any blocked Chunks reader.
func (b *textBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.chunks = nil
	b.chunksConsumed = 0
	b.chunksDone = true
	b.chunksSignal.Broadcast()
}
