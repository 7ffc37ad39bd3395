package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Request is the outbound envelope a call site hands to the gateway. Path is
// relative to the configured base address.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

// Result is the normalized response of a successful call. Payload is the
// backend's "data" member, else its "response" member, else the whole body,
// so call sites never branch on envelope shape.
type Result struct {
	Status    int
	RequestID string
	Success   bool
	Message   string
	Token     string
	Payload   json.RawMessage
	Raw       json.RawMessage
	Header    http.Header
}

// Decode unmarshals the normalized payload into T.
func Decode[T any](res *Result) (T, error) {
	var out T
	if res == nil || len(res.Payload) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(res.Payload, &out); err != nil {
		return out, fmt.Errorf("decoding payload: %w", err)
	}
	return out, nil
}

// DecodeRaw unmarshals the whole response body into v, for the few endpoints
// that put their data beside the envelope fields.
func (r *Result) DecodeRaw(v any) error {
	if r == nil || len(r.Raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return fmt.Errorf("decoding body: %w", err)
	}
	return nil
}

type envelope struct {
	Success  *bool           `json:"success"`
	Message  string          `json:"message"`
	Token    string          `json:"token"`
	Data     json.RawMessage `json:"data"`
	Response json.RawMessage `json:"response"`
}

func normalize(status int, header http.Header, body []byte) *Result {
	res := &Result{
		Status:  status,
		Success: true,
		Header:  header,
		Raw:     body,
		Payload: body,
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return res
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return res
	}
	if env.Success != nil {
		res.Success = *env.Success
	}
	res.Message = env.Message
	res.Token = env.Token
	switch {
	case present(env.Data):
		res.Payload = env.Data
	case present(env.Response):
		res.Payload = env.Response
	}
	return res
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}
