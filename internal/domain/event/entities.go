package event

import (
	"encoding/json"
	"time"
)

type Kind string

const (
	OfferCreated     Kind = "offer.created"
	OfferUpdated     Kind = "offer.updated"
	OfferCancelled   Kind = "offer.cancelled"
	RequestCreated   Kind = "request.created"
	RequestUpdated   Kind = "request.updated"
	RequestCancelled Kind = "request.cancelled"
	OfferMatched     Kind = "offer.matched"
	LoanCreated      Kind = "loan.created"
	LoanFunded       Kind = "loan.funded"
	LoanCancelled    Kind = "loan.cancelled"
	LoanDefaulted    Kind = "loan.defaulted"
	LoanCompleted    Kind = "loan.completed"
	PaymentMade      Kind = "payment.made"
	DocumentAdded    Kind = "document.added"
	DocumentVerified Kind = "document.verified"
	VerifierAdded    Kind = "verifier.added"
	VerifierRemoved  Kind = "verifier.removed"
	AccountDeposited Kind = "account.deposited"
)

// Event is one durable ledger notification, appended in the same
// transaction as the state change it reports. Seq is the authoritative
// order; consumers poll with their last-seen sequence.
type Event struct {
	Seq       uint64    `gorm:"primaryKey;autoIncrement;column:seq" json:"seq"`
	Kind      Kind      `gorm:"size:32;index" json:"kind"`
	RecordKey string    `gorm:"size:32;index" json:"record_key"`
	ActorID   string    `gorm:"size:32" json:"actor_id"`
	Payload   string    `gorm:"type:text" json:"payload"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Event) TableName() string { return "events" }

// New marshals the payload fields into an event row. Payload maps keep
// the numeric fields of the transition, keyed as in the API docs.
func New(kind Kind, recordKey, actorID string, payload map[string]any) *Event {
	b, _ := json.Marshal(payload)
	return &Event{Kind: kind, RecordKey: recordKey, ActorID: actorID, Payload: string(b)}
}
