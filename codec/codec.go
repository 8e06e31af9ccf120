// Package codec turns requests into frame bodies and frame bodies into documents.
package codec

// Codec serializes values to and from frame bodies.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Name() string
}

// Default returns the codec spoken by the compositor.
func Default() Codec {
	return JSONCodec{}
}
