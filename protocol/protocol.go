// Package protocol implements the frame format spoken on the Wayfire IPC socket.
//
// Every message in either direction is a 4-byte little-endian length followed by
// exactly that many bytes of JSON. There is no magic number, version byte or
// sequence id: the receiver reads the header to learn the body length, then
// reads exactly that many bytes.
//
// Frame format:
//
//	0         4
//	┌─────────┬──────────────────────┐
//	│ bodyLen │       body ...       │
//	│ u32 LE  │ bodyLen bytes (JSON) │
//	└─────────┴──────────────────────┘
package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// HeaderSize is the width of the length prefix.
const HeaderSize = 4

// WriteFrame writes header and body to w as a single write.
// A failed or short write leaves the stream in an unknown position; callers must
// treat the underlying connection as unusable afterwards.
func WriteFrame(w io.Writer, body []byte) error {
	if uint64(len(body)) > math.MaxUint32 {
		return fmt.Errorf("frame body too large: %d bytes", len(body))
	}

	buf := make([]byte, HeaderSize+len(body))
	binary.LittleEndian.PutUint32(buf[:HeaderSize], uint32(len(body)))
	copy(buf[HeaderSize:], body)

	n, err := w.Write(buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return io.ErrShortWrite
	}
	return nil
}

// ReadFrame reads one complete frame body from r.
// io.ReadFull blocks until the whole header and the whole body have arrived, so a
// body split across several reads is never returned early.
//
// A clean close before any header byte yields io.EOF; a close in the middle of a
// frame yields io.ErrUnexpectedEOF.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	bodyLen := binary.LittleEndian.Uint32(header[:])
	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return body, nil
}
