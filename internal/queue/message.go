// Package queue defines the dining request message exchanged between the
// fulfillment hook and the notifier, and the SQS adapters that carry it.
package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abirbhav/Dining-Concierge-Chatbot/internal/dialog"
	"github.com/hashicorp/go-multierror"
)

const (
	// SchemaVersion is set on every published message
	SchemaVersion = "1"

	// SchemaVersionAttribute is the SQS message attribute carrying SchemaVersion
	SchemaVersionAttribute = "schema_version"
)

// ErrMalformedMessage is returned when a message body cannot be decoded into a DiningRequest.
var ErrMalformedMessage = errors.New("malformed dining request")

// DiningRequest is the body of one queue message: the validated slots of a fulfilled dialog.
type DiningRequest struct {
	RequestID      string    `json:"request_id"`
	Location       string    `json:"location"`
	Cuisine        string    `json:"cuisine"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	NumberOfPeople string    `json:"number_of_people"`
	Email          string    `json:"email"`
	RequestedAt    time.Time `json:"requested_at"`
}

// FromSlots builds a request with a fresh request id.
func FromSlots(slots dialog.SlotSet, requestedAt time.Time) DiningRequest {
	return DiningRequest{
		RequestID:      NewRequestID().String(),
		Location:       dialog.Value(slots.Location),
		Cuisine:        dialog.Value(slots.Cuisine),
		Date:           dialog.Value(slots.Date),
		Time:           dialog.Value(slots.Time),
		NumberOfPeople: dialog.Value(slots.NumberOfPeople),
		Email:          dialog.Value(slots.Email),
		RequestedAt:    requestedAt.UTC(),
	}
}

// Encode serializes the request as a message body.
func Encode(req DiningRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode dining request: %w", err)
	}
	return string(body), nil
}

// Decode parses a message body. Any syntax error, trailing data or missing
// slot value yields an error wrapping ErrMalformedMessage.
func Decode(body string) (DiningRequest, error) {
	var req DiningRequest
	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(&req); err != nil {
		return DiningRequest{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if dec.More() {
		return DiningRequest{}, fmt.Errorf("%w: trailing data after body", ErrMalformedMessage)
	}
	if err := req.validate(); err != nil {
		return DiningRequest{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	return req, nil
}

func (r DiningRequest) validate() error {
	var result error
	fields := []struct {
		name  string
		value string
	}{
		{"location", r.Location},
		{"cuisine", r.Cuisine},
		{"date", r.Date},
		{"time", r.Time},
		{"number_of_people", r.NumberOfPeople},
		{"email", r.Email},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			result = multierror.Append(result, fmt.Errorf("%s is missing", f.name))
		}
	}
	return result
}

// String renders the request without the email address.
func (r DiningRequest) String() string {
	return fmt.Sprintf("%s: %s in %s for %s on %s at %s", r.RequestID, r.Cuisine, r.Location, r.NumberOfPeople, r.Date, r.Time)
}
