package outbox

import (
	"encoding/json"
	"time"
)

// ActorRef identifies who produced the event: a customer acting through the
// chat front end, an operator, or the system itself.
type ActorRef struct {
	CustomerID *int64 `json:"customerId,omitempty"`
	OperatorID *int64 `json:"operatorId,omitempty"`
	Role       string `json:"role,omitempty"`
}

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// CustomerActor builds an ActorRef for a chat customer.
func CustomerActor(customerID int64) *ActorRef {
	id := customerID
	return &ActorRef{CustomerID: &id, Role: "customer"}
}

// OperatorActor builds an ActorRef for an operator.
func OperatorActor(operatorID int64) *ActorRef {
	id := operatorID
	return &ActorRef{OperatorID: &id, Role: "operator"}
}
