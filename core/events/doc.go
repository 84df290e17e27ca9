// Package events defines the typed session event contract consumed by
// presentation layers.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - assistant_response.*
//   - tool_call.*
//   - context.*
//   - usage.*
//   - turn_state.*
//
// Semantics used across the package:
//
//   - Segment: append-only text piece emitted in stream order.
//   - Final: terminal immutable text/state for the current turn phase.
//
// assistant_response events
//
//   - AssistantResponseSegment (assistant_response.segment): streamed response
//     text segment.
//   - AssistantResponseFinal (assistant_response.final): response text stream
//     is complete; carries the full assembled content.
//
// tool_call events
//
//   - ToolCallStarted (tool_call.started): the server began a tool invocation.
//   - ToolCallUpdated (tool_call.updated): the invocation's arguments became
//     available.
//   - ToolCallCompleted (tool_call.completed): the invocation finished;
//     includes its result and duration.
//
// context events
//
//   - CitationAdded (context.citation_added): a new citation was accepted into
//     the current turn (duplicates by resource id are never re-announced).
//   - ImageAdded (context.image_added): a new image result was accepted into
//     the current turn (duplicates by id are never re-announced).
//
// usage events
//
//   - UsageRecorded (usage.recorded): token counters reported for the turn.
//
// turn_state events
//
//   - TurnStarted (turn_state.started): a new turn began streaming.
//   - TurnCompleted (turn_state.completed): the turn settled normally and an
//     assistant message was appended to history.
//   - TurnFailed (turn_state.failed): the turn settled with a terminal error;
//     history is unchanged.
//   - TurnCancelled (turn_state.cancelled): the turn was deliberately
//     cancelled; not a failure, history is unchanged.
package events
