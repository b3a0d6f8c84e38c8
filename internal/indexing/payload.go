package indexing

import (
	"encoding/json"
	"fmt"
)

// Payload is the small slice of a webhook body the resolver consults.
// Every field is optional; an absent field yields "no URL", never an
// error.
type Payload struct {
	Handle string       `json:"handle"`
	Blog   *BlogPayload `json:"blog"`
}

// BlogPayload carries the nested blog handle used for article URLs.
type BlogPayload struct {
	Handle string `json:"handle"`
}

// ParsePayload decodes raw webhook bytes into a Payload. Only invalid
// JSON is an error; a JSON document missing every field of interest is
// a valid, empty Payload.
func ParsePayload(raw []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("parse payload: %w", err)
	}
	return p, nil
}
