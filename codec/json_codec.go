package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"wayfire-ipc/message"
)

// JSONCodec is the only wire format the compositor understands.
// Numbers decode as json.Number so large ids are not rounded through float64.
type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error) {
	if req, ok := v.(*message.Request); ok {
		if err := req.Validate(); err != nil {
			return nil, err
		}
	}
	return json.Marshal(v)
}

func (JSONCodec) Decode(data []byte, v any) error {
	if doc, ok := v.(*message.Document); ok {
		parsed, err := message.ParseDocument(data)
		if err != nil {
			return err
		}
		*doc = parsed
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", message.ErrDecode, err)
	}
	return nil
}

func (JSONCodec) Name() string {
	return "json"
}
