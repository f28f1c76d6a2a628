// Package ipc carries routed requests between the presentation process and
// the host process. Envelopes travel as JSON over a unix socket or a loopback
// listener. Date-valued payload fields are revived on receipt.
package ipc

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/tailbits/halbridge"
)

// RequestEnvelope is a routed request in transit.
type RequestEnvelope struct {
	ID    string          `json:"id,omitempty"`
	Verb  string          `json:"verb"`
	Path  string          `json:"path"`
	Query url.Values      `json:"query,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ResponseEnvelope is a routed response in transit. Data holds the raw
// payload on the sending side and the revived, decoded payload on receipt.
type ResponseEnvelope struct {
	ID     string           `json:"id"`
	Status halbridge.Status `json:"status"`
	Data   any              `json:"data,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// Ok reports whether the response succeeded.
func (e *ResponseEnvelope) Ok() bool {
	return e != nil && e.Status == halbridge.StatusOK
}

// Request converts the envelope, assigning an id when it has none. Verbs are
// matched case-insensitively; unknown verbs pass through and find no route.
func (e *RequestEnvelope) Request() *halbridge.Request {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	verb, ok := halbridge.ParseVerb(e.Verb)
	if !ok {
		verb = halbridge.Verb(e.Verb)
	}

	return &halbridge.Request{
		ID:    e.ID,
		Verb:  verb,
		Path:  e.Path,
		Query: e.Query,
		Data:  e.Data,
	}
}

// NewResponseEnvelope encodes resp for the request with the given id.
func NewResponseEnvelope(id string, resp *halbridge.Response) *ResponseEnvelope {
	env := &ResponseEnvelope{ID: id, Status: resp.Status, Error: resp.Error}
	if resp.Data == nil {
		return env
	}

	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return &ResponseEnvelope{
			ID:     id,
			Status: halbridge.StatusError,
			Error:  fmt.Sprintf("encode response: %v", err),
		}
	}
	env.Data = json.RawMessage(raw)

	return env
}

// DecodeResponse reads an envelope and revives its date fields.
func DecodeResponse(data []byte) (*ResponseEnvelope, error) {
	var env ResponseEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("ipc.DecodeResponse: %w", err)
	}
	env.Data = Revive(env.Data)
	return &env, nil
}
