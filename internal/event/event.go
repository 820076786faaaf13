package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeRecordCreated   Type = "record.created"
	TypeRecordUpdated   Type = "record.updated"
	TypeRecordDeleted   Type = "record.deleted"
	TypeRecordRestored  Type = "record.restored"
	TypeTrashPurged     Type = "trash.purged"
	TypeActivityLogged  Type = "activity.logged"
	TypeActivityRemoved Type = "activity.removed"
)

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
	ActorID   string `json:"actor_id,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(t Type, actorID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		ActorID:   actorID,
	}
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
