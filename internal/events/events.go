// Package events carries the change notifications the API pushes to
// dashboards: a server-side hub fanning out SSE frames, a reconnecting
// client subscription, and a pure dispatcher mapping event types to the
// reloads a dashboard should run.
package events

import "encoding/json"

const (
	TypeMissionCreated = "mission.created"
	TypeMissionUpdated = "mission.updated"
	TypeMissionDeleted = "mission.deleted"
	TypeInvoiceUpdated = "invoice.updated"
)

// Message is the wire shape of one change event.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewMessage(eventType string, payload any) (Message, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: eventType, Payload: encoded}, nil
}
