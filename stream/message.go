package stream

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/matt-g-everett/linefield/field"
)

// Message is the envelope shared by every input message.
type Message struct {
	Type string `json:"type"`
}

// PointerMessage carries a pointer or touch sample from a client.
type PointerMessage struct {
	Message
	Phase  string  `json:"phase"`
	Source string  `json:"source"`
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// ResizeMessage reports a client viewport change.
type ResizeMessage struct {
	Message
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Input is a decoded input message. Exactly one field is set.
type Input struct {
	Pointer *field.PointerEvent
	Resize  *ResizeMessage
}

// DecodeInput parses a JSON input message received at the given time.
func DecodeInput(payload []byte, at time.Time) (Input, error) {
	var m Message
	if err := json.Unmarshal(payload, &m); err != nil {
		return Input{}, fmt.Errorf("decode message: %w", err)
	}

	switch m.Type {
	case "pointer":
		var pm PointerMessage
		if err := json.Unmarshal(payload, &pm); err != nil {
			return Input{}, fmt.Errorf("decode pointer message: %w", err)
		}
		ev, err := pm.Event(at)
		if err != nil {
			return Input{}, err
		}
		return Input{Pointer: &ev}, nil
	case "resize":
		var rm ResizeMessage
		if err := json.Unmarshal(payload, &rm); err != nil {
			return Input{}, fmt.Errorf("decode resize message: %w", err)
		}
		if err := rm.Validate(); err != nil {
			return Input{}, err
		}
		return Input{Resize: &rm}, nil
	}
	return Input{}, fmt.Errorf("unknown message type %q", m.Type)
}

// Validate rejects viewports no grid can be built for.
func (rm ResizeMessage) Validate() error {
	return field.ValidateViewport(rm.Width, rm.Height)
}

// Event converts the message into a tracker event.
func (pm PointerMessage) Event(at time.Time) (field.PointerEvent, error) {
	phase, err := field.ParsePhase(pm.Phase)
	if err != nil {
		return field.PointerEvent{}, err
	}
	src, err := field.ParseSource(pm.Source)
	if err != nil {
		return field.PointerEvent{}, err
	}
	return field.PointerEvent{Phase: phase, Source: src, ID: pm.ID, X: pm.X, Y: pm.Y, At: at}, nil
}
