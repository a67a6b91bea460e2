// Package store journals message deliveries so acknowledgement state
// survives inspection and, with the SQLite backend, process restarts.
package store

import (
	"time"

	"google.golang.org/protobuf/types/known/wrapperspb"
)

type DataAccess interface {
	// RecordDelivery journals one delivered envelope and returns its ID.
	RecordDelivery(d Delivery) (string, error)
	GetDelivery(id string) (*Delivery, error)
	// RecordAckHandle stores the foreign-runtime handle minted for a
	// delivery's pending acknowledgement.
	RecordAckHandle(id string, handle uint64) error
	// MarkAcked records that the acknowledgement for a delivery was sent.
	MarkAcked(id string) error
	ListPending() []Delivery
	DeleteDelivery(id string) error
}

type Delivery struct {
	// ID is assigned by the store on RecordDelivery.
	ID string
	// ServerFrameID is the frame ID the server used for this message.
	ServerFrameID uint64
	Envelope      []byte
	Timestamp     time.Time
	// AckHandle is the foreign-runtime handle minted for the pending
	// acknowledgement, if one was handed across the boundary.
	AckHandle *wrapperspb.UInt64Value

	Acked       bool
	LastUpdated time.Time
}
