package faults

import "time"

// Fault is a persisted record of a failed analysis attempt. The raw payload
// (model text or HTTP body) is kept verbatim: a broken prompt contract can
// only be debugged from what the model actually returned.
type Fault struct {
	ID        int64     `json:"id"`
	Phase     string    `json:"phase"` // request | normalize | persist
	Message   string    `json:"message"`
	Raw       string    `json:"raw,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
