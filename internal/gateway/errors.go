package gateway

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FieldError is one field-level validation message from a 422 body.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is returned for every failed call. The gateway has already applied its
// side effects by the time a caller sees it.
type Error struct {
	Outcome     Outcome
	Status      int // 0 for network failures
	Method      string
	Path        string
	RequestID   string
	Message     string
	FieldErrors []FieldError
	Body        []byte
	Err         error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s", e.Method, e.Path, e.Outcome)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the outcome sentinel, so errors.Is(err, ErrValidation) works on any
// wrapped *Error.
func (e *Error) Is(target error) bool {
	s := e.Outcome.sentinel()
	return s != nil && target == s
}

// Fields flattens FieldErrors into a map; later duplicates win.
func (e *Error) Fields() map[string]string {
	if len(e.FieldErrors) == 0 {
		return nil
	}
	out := make(map[string]string, len(e.FieldErrors))
	for _, fe := range e.FieldErrors {
		out[fe.Field] = fe.Message
	}
	return out
}

// errorBody is the union of error shapes the backend is known to send.
type errorBody struct {
	Message  string          `json:"message"`
	Error    json.RawMessage `json:"error"`
	Errors   json.RawMessage `json:"errors"`
	Response *struct {
		Message string `json:"message"`
	} `json:"response"`
}

// parseErrorBody extracts a human message and field errors. Unknown shapes
// produce zero values rather than an error.
func parseErrorBody(body []byte) (string, []FieldError) {
	var eb errorBody
	if len(body) == 0 || json.Unmarshal(body, &eb) != nil {
		return "", nil
	}

	message := eb.Message
	if message == "" && eb.Response != nil {
		message = eb.Response.Message
	}
	if message == "" && len(eb.Error) > 0 {
		var s string
		if json.Unmarshal(eb.Error, &s) == nil {
			message = s
		}
	}
	return message, parseFieldErrors(eb.Errors)
}

// parseFieldErrors accepts either an array of {field|param|path, message|msg}
// objects or an object mapping field to message.
func parseFieldErrors(raw json.RawMessage) []FieldError {
	if len(raw) == 0 {
		return nil
	}

	var list []struct {
		Field   string `json:"field"`
		Param   string `json:"param"`
		Path    string `json:"path"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
	}
	if json.Unmarshal(raw, &list) == nil {
		out := make([]FieldError, 0, len(list))
		for _, item := range list {
			fe := FieldError{Field: firstNonEmpty(item.Field, item.Param, item.Path), Message: firstNonEmpty(item.Message, item.Msg)}
			if fe.Field == "" && fe.Message == "" {
				continue
			}
			out = append(out, fe)
		}
		return out
	}

	var byField map[string]string
	if json.Unmarshal(raw, &byField) == nil {
		out := make([]FieldError, 0, len(byField))
		for field, msg := range byField {
			out = append(out, FieldError{Field: field, Message: msg})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
		return out
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
