package events

import "github.com/rulewise/chat-core/core/chat"

// KindUsageRecorded identifies token usage reporting for a turn.
const KindUsageRecorded Kind = "usage.recorded"

// UsageRecorded carries the token counters the backend reported for the turn.
type UsageRecorded struct {
	Base
	Usage chat.Usage
}

// NewUsageRecorded creates a usage recorded event.
func NewUsageRecorded(usage chat.Usage) UsageRecorded {
	return UsageRecorded{Base: NewBase(KindUsageRecorded), Usage: usage}
}
