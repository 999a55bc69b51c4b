package webhook

import (
	"encoding/json"
	"errors"
)

var ErrInvalidPayload = errors.New("invalid_payload")

// Event is a verified processor webhook. It lives for one request only:
// constructed, forwarded, discarded.
type Event struct {
	Type          string
	Payload       json.RawMessage
	TransactionID string
}

type rawEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type paymentEnvelope struct {
	Payment struct {
		Entity struct {
			ID string `json:"id"`
		} `json:"entity"`
	} `json:"payment"`
}

// ParseEvent extracts the event type, opaque payload, and the payment id
// (when the payload carries one) from a raw processor webhook body.
func ParseEvent(body []byte) (*Event, error) {
	var raw rawEvent
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, ErrInvalidPayload
	}

	event := &Event{
		Type:    raw.Event,
		Payload: raw.Payload,
	}
	if len(raw.Payload) > 0 {
		var envelope paymentEnvelope
		if err := json.Unmarshal(raw.Payload, &envelope); err == nil {
			event.TransactionID = envelope.Payment.Entity.ID
		}
	}
	return event, nil
}
