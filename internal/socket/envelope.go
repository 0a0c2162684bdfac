package socket

import (
	"encoding/json"
	"fmt"
)

// CodeNotFound marks a read whose subject does not exist. For read
// operations it is a valid "empty" result, not a hard failure.
const CodeNotFound = "NOT_FOUND"

// Envelope is the uniform wrapper around every acknowledged request.
// Callers must inspect OK before trusting Data.
type Envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
	Code  string          `json:"code,omitempty"`
}

// NotFound reports whether the envelope carries the NOT_FOUND code.
func (e Envelope) NotFound() bool { return e.Code == CodeNotFound }

// DecodeData unmarshals the envelope's data into T.
func DecodeData[T any](env Envelope) (T, error) {
	var v T
	if len(env.Data) == 0 {
		return v, fmt.Errorf("envelope has no data")
	}
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return v, fmt.Errorf("decode envelope data: %w", err)
	}
	return v, nil
}

// frame is the wire message, shared by both directions. Outbound requests
// carry ID, Event and Payload. Inbound acknowledgements carry ID plus the
// envelope fields; inbound pushes carry Event and Data with no ID.
type frame struct {
	ID      string          `json:"id,omitempty"`
	Event   string          `json:"event,omitempty"`
	Payload any             `json:"payload,omitempty"`
	OK      *bool           `json:"ok,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
}

func (f frame) envelope() Envelope {
	ok := f.OK != nil && *f.OK
	return Envelope{OK: ok, Data: f.Data, Error: f.Error, Code: f.Code}
}
