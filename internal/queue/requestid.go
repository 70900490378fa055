package queue

import "github.com/google/uuid"

// RequestIDPrefix marks dining request ids
const RequestIDPrefix = "dnr"

// RequestID is a UUID carrying the dining request prefix, rendered "dnr-<uuid>".
type RequestID struct {
	UUID uuid.UUID
}

// NewRequestID returns a RequestID with a random UUID.
func NewRequestID() RequestID {
	return RequestID{UUID: uuid.New()}
}

func (r RequestID) String() string {
	return RequestIDPrefix + "-" + r.UUID.String()
}
