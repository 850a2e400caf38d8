package dto

import (
	"encoding/json"
	"time"
)

// ActionLogEntry is one settled bulk action as shown on the activity page.
// Payload carries the recorded entry verbatim (requested, affected and
// skipped ids) when one was stored.
type ActionLogEntry struct {
	ID             string          `json:"id"`
	Action         string          `json:"action"`
	Kind           string          `json:"kind"`
	RequestedCount int             `json:"requestedCount"`
	AffectedCount  int             `json:"affectedCount"`
	Outcome        string          `json:"outcome"`
	ActorID        string          `json:"actorId,omitempty"`
	ActorEmail     string          `json:"actorEmail,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}
