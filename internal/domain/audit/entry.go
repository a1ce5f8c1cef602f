package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Action tags every appointment state transition in the audit log.
type Action string

const (
	ActionCreate     Action = "create"
	ActionCommit     Action = "commit_reservation"
	ActionReschedule Action = "reschedule"
	ActionCancel     Action = "cancel"
	ActionComplete   Action = "complete"
	ActionNoShow     Action = "no_show"
)

// Entry is one immutable audit record. Entries are written in the same
// transaction as the mutation they describe and are never updated.
type Entry struct {
	ID            uuid.UUID
	AppointmentID uuid.UUID
	Action        Action
	ActorID       *uuid.UUID // nil for guest or system actions
	OldState      json.RawMessage
	NewState      json.RawMessage
	CreatedAt     time.Time
}

// Snapshot is the appointment state captured in old/new audit snapshots.
type Snapshot struct {
	Status  string    `json:"status"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Version int32     `json:"version"`
}

func NewEntry(appointmentID uuid.UUID, action Action, actorID *uuid.UUID, oldState, newState *Snapshot) (Entry, error) {
	entry := Entry{
		ID:            uuid.New(),
		AppointmentID: appointmentID,
		Action:        action,
		ActorID:       actorID,
	}

	if oldState != nil {
		raw, err := json.Marshal(oldState)
		if err != nil {
			return Entry{}, err
		}
		entry.OldState = raw
	}
	if newState != nil {
		raw, err := json.Marshal(newState)
		if err != nil {
			return Entry{}, err
		}
		entry.NewState = raw
	}
	return entry, nil
}
