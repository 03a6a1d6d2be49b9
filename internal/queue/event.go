// Package queue defines message payloads exchanged over the message broker
// and the publisher and consumer that move them.
package queue

// Event types published on the carpool events queue.
const (
	CarpoolCreated      = "carpool.created"
	CarpoolUpdated      = "carpool.updated"
	CarpoolFinished     = "carpool.finished"
	CarpoolArchived     = "carpool.archived"
	CarpoolUnarchived   = "carpool.unarchived"
	CarpoolDeleted      = "carpool.deleted"
	ParticipantJoined   = "participant.joined"
	ParticipantLeft     = "participant.left"
	SoberDriverAssigned = "sober_driver.assigned"
	SoberDriverCleared  = "sober_driver.cleared"
)

// CarpoolEvent is published after a carpool mutation commits.  It carries
// enough information for downstream consumers to log, notify, or trigger
// analytics without querying the primary database.
type CarpoolEvent struct {
	Type           string `json:"type"`
	CarpoolID      string `json:"carpool_id"`
	Title          string `json:"title,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	ActorID        string `json:"actor_id,omitempty"`
	AvailableSeats *int   `json:"available_seats,omitempty"`
	OccurredAt     string `json:"occurred_at"`
}
