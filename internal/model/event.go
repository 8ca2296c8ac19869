package model

import (
	"encoding/json"
	"time"
)

// Event is a persisted audit record, mirroring what is published to NATS.
// Subject is the identity of the changed entity, e.g. "web:prod" for an
// application or "component/nginx" for a list entry.
type Event struct {
	ID        string          `json:"id"`
	Topic     string          `json:"topic"`
	Subject   string          `json:"subject"`
	Actor     string          `json:"actor,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}
