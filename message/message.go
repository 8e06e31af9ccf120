// Package message defines the documents exchanged with the compositor.
//
// Request is the envelope for every call. It gets serialized by the codec layer
// and wrapped in a protocol frame for transmission over the socket.
//
// Document is whatever the compositor sends back. Its shape is open-ended, so it
// is kept as a generic JSON tree at the transport boundary and decoded into typed
// values by the callers that know what they asked for.
package message

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrEmptyMethod is returned when a request has no method name.
	ErrEmptyMethod = errors.New("message: empty method")
	// ErrDecode marks a payload that is not a well-formed document or does not
	// fit the requested type.
	ErrDecode = errors.New("message: decode failed")
	// ErrMissingField marks a response that lacks a field the caller requires.
	ErrMissingField = errors.New("message: missing field")
)

// Request carries a single call to the compositor.
//
//   - Method is slash-delimited, e.g. "window-rules/view-info".
//   - Data is any JSON-encodable value, or nil when the method takes no arguments.
type Request struct {
	Method string `json:"method"`
	Data   any    `json:"data"`
}

// NewRequest returns a request for method with an optional data payload.
func NewRequest(method string, data any) *Request {
	return &Request{Method: method, Data: data}
}

// Validate reports whether r can be put on the wire.
func (r *Request) Validate() error {
	if r == nil || r.Method == "" {
		return ErrEmptyMethod
	}
	return nil
}

// Document is a decoded JSON tree. The wrapped value is one of nil, bool,
// json.Number, string, []any or map[string]any.
type Document struct {
	tree any
}

// NewDocument wraps an already decoded tree.
func NewDocument(tree any) Document {
	return Document{tree: tree}
}

// ParseDocument decodes raw JSON into a Document, keeping numbers as json.Number
// so integer ids survive untouched.
func ParseDocument(raw []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Document{}, fmt.Errorf("%w: trailing data after document", ErrDecode)
	}
	return Document{tree: tree}, nil
}

// Value returns the underlying tree.
func (d Document) Value() any {
	return d.tree
}

// Object returns the document as a JSON object, if it is one.
func (d Document) Object() (map[string]any, bool) {
	obj, ok := d.tree.(map[string]any)
	return obj, ok
}

// Has reports whether the document is an object containing key.
func (d Document) Has(key string) bool {
	obj, ok := d.Object()
	if !ok {
		return false
	}
	_, ok = obj[key]
	return ok
}

// Get returns the value under key if the document is an object containing it.
func (d Document) Get(key string) (Document, bool) {
	obj, ok := d.Object()
	if !ok {
		return Document{}, false
	}
	v, ok := obj[key]
	if !ok {
		return Document{}, false
	}
	return Document{tree: v}, true
}

// Field is Get for fields the caller cannot do without.
func (d Document) Field(key string) (Document, error) {
	v, ok := d.Get(key)
	if !ok {
		return Document{}, fmt.Errorf("%w: %q", ErrMissingField, key)
	}
	return v, nil
}

// IsEvent reports whether the document is an unsolicited push.
func (d Document) IsEvent() bool {
	return d.Has("event")
}

// EventName returns the "event" field as a string, or "" if absent.
func (d Document) EventName() string {
	return d.Text("event")
}

// IsError reports whether the compositor answered with a failure.
func (d Document) IsError() bool {
	return d.Has("error")
}

// ErrorMessage returns the "error" field as text.
func (d Document) ErrorMessage() string {
	v, ok := d.Get("error")
	if !ok {
		return ""
	}
	if s, ok := v.tree.(string); ok {
		return s
	}
	b, _ := json.Marshal(v.tree)
	return string(b)
}

// Text returns a string field, or "" if it is absent or not a string.
func (d Document) Text(key string) string {
	v, ok := d.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.tree.(string)
	return s
}

// Float returns a numeric field as float64.
func (d Document) Float(key string) (float64, bool) {
	v, ok := d.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.tree.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	}
	return 0, false
}

// Int returns a numeric field as int64.
func (d Document) Int(key string) (int64, bool) {
	v, ok := d.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.tree.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		return int64(n), n == float64(int64(n))
	}
	return 0, false
}

// Decode stores the document into the value pointed to by v.
// Fields v does not know about are ignored.
func (d Document) Decode(v any) error {
	raw, err := json.Marshal(d.tree)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.tree)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(raw []byte) error {
	parsed, err := ParseDocument(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Document) String() string {
	b, err := json.Marshal(d.tree)
	if err != nil {
		return fmt.Sprintf("%v", d.tree)
	}
	return string(b)
}
