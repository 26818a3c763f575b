// Package events defines event types for turn lifecycle notifications.
package events

import (
	"time"

	"github.com/jpalomar/gastobot/pkg/models"
)

type EventType string

// Topic carries every turn lifecycle event.
const Topic = "gastobot.turns"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	TurnStartedEvent        EventType = "turn.started"
	TurnCompletedEvent      EventType = "turn.completed"
	TurnFailedEvent         EventType = "turn.failed"
	CapabilityExecutedEvent EventType = "capability.executed"
	QueryRejectedEvent      EventType = "query.rejected"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	TurnID    string         `json:"turn_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// TurnStarted is published when the orchestrator begins a run.
type TurnStarted struct {
	BaseEvent

	ExternalUserID string `json:"external_user_id"`
	HasFileRef     bool   `json:"has_file_ref"`
}

func (e TurnStarted) GetType() EventType {
	return TurnStartedEvent
}

// TurnCompleted is published when a run reaches its terminal render.
type TurnCompleted struct {
	BaseEvent

	Steps    int           `json:"steps"`
	Duration time.Duration `json:"duration"`
	Forced   bool          `json:"forced"` // loop-guard or step cap forced the terminal render
}

func (e TurnCompleted) GetType() EventType {
	return TurnCompletedEvent
}

// TurnFailed is published when a turn cannot run at all.
type TurnFailed struct {
	BaseEvent

	Error string `json:"error"`
}

func (e TurnFailed) GetType() EventType {
	return TurnFailedEvent
}

// CapabilityExecuted is published after each non-terminal capability call.
type CapabilityExecuted struct {
	BaseEvent

	Action   models.Action `json:"action"`
	Step     int           `json:"step"`
	Changed  bool          `json:"changed"`
	Duration time.Duration `json:"duration"`
}

func (e CapabilityExecuted) GetType() EventType {
	return CapabilityExecutedEvent
}

// QueryRejected is published when the status-query safety filter drops a
// candidate statement. The statement is recorded for audit, never executed.
type QueryRejected struct {
	BaseEvent

	Statement string `json:"statement"`
}

func (e QueryRejected) GetType() EventType {
	return QueryRejectedEvent
}
