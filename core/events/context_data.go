package events

import "github.com/rulewise/chat-core/core/chat"

const (
	// KindCitationAdded identifies acceptance of a new citation.
	KindCitationAdded Kind = "context.citation_added"
	// KindImageAdded identifies acceptance of a new image result.
	KindImageAdded Kind = "context.image_added"
)

// CitationAdded marks a citation newly accepted into the current turn.
// Duplicates by resource id are dropped before this event is emitted.
type CitationAdded struct {
	Base
	Citation chat.Citation
}

// NewCitationAdded creates a citation added event.
func NewCitationAdded(citation chat.Citation) CitationAdded {
	return CitationAdded{Base: NewBase(KindCitationAdded), Citation: citation}
}

// ImageAdded marks an image result newly accepted into the current turn.
// Duplicates by id are dropped before this event is emitted.
type ImageAdded struct {
	Base
	Image chat.ImageResult
}

// NewImageAdded creates an image added event.
func NewImageAdded(image chat.ImageResult) ImageAdded {
	return ImageAdded{Base: NewBase(KindImageAdded), Image: image}
}
