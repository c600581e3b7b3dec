package proto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

const readChunkSize = 1024

// ProtocolError marks a frame the server cannot interpret. It is
// connection-fatal: the handler aborts the offending connection.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol: %s: %v", e.Reason, e.Err)
	}
	return "protocol: " + e.Reason
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// Decoder splits a byte stream into frames. Bytes are accumulated in a
// per-connection buffer; a single read may yield zero, one, or many frames.
type Decoder struct {
	r   io.Reader
	buf []byte
}

// NewDecoder wraps r, typically a net.Conn.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Next returns the next frame from the stream. It returns io.EOF on orderly
// peer close, a *ProtocolError for an undecodable frame, or the transport
// read error.
func (d *Decoder) Next() (Frame, error) {
	for {
		if i := bytes.IndexByte(d.buf, '\n'); i >= 0 {
			line := d.buf[:i]
			d.buf = d.buf[i+1:]
			return parseFrame(line)
		}

		chunk := make([]byte, readChunkSize)
		n, err := d.r.Read(chunk)
		if n > 0 {
			d.buf = append(d.buf, chunk[:n]...)
			continue
		}
		if err == nil {
			// A reader that keeps returning (0, nil) would spin here forever.
			err = io.ErrNoProgress
		}
		return Frame{}, err
	}
}

func parseFrame(line []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(line, &f); err != nil {
		return Frame{}, &ProtocolError{Reason: "invalid JSON frame", Err: err}
	}
	if f.Type == "" {
		return Frame{}, &ProtocolError{Reason: "frame missing type field"}
	}
	return f, nil
}

// Encode serializes v as one compact JSON object followed by '\n'.
func Encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return append(b, '\n'), nil
}
