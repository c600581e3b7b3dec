package proto

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// scriptedReader returns one scripted chunk per Read call.
type scriptedReader struct {
	chunks [][]byte
}

func (r *scriptedReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if len(r.chunks[0]) == 0 {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func TestDecoderMultipleFramesInOneRead(t *testing.T) {
	input := `{"type":"login","username":"alice","password":"pw"}` + "\n" +
		`{"type":"message","content":"hi"}` + "\n"
	d := NewDecoder(strings.NewReader(input))

	first, err := d.Next()
	if err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if first.Type != TypeLogin || deref(first.Username) != "alice" || deref(first.Password) != "pw" {
		t.Fatalf("unexpected first frame: %+v", first)
	}

	second, err := d.Next()
	if err != nil {
		t.Fatalf("second frame: %v", err)
	}
	if second.Type != TypeMessage || deref(second.Content) != "hi" {
		t.Fatalf("unexpected second frame: %+v", second)
	}

	if _, err := d.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF after last frame, got %v", err)
	}
}

func TestDecoderFrameSplitAcrossReads(t *testing.T) {
	r := &scriptedReader{chunks: [][]byte{
		[]byte(`{"type":"sta`),
		[]byte(`tus","state":"away"}` + "\n"),
	}}
	d := NewDecoder(r)

	frame, err := d.Next()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if frame.Type != TypeStatus || deref(frame.State) != "away" {
		t.Fatalf("unexpected frame: %+v", frame)
	}
}

func TestDecoderKeepsPresenceOfEmptyFields(t *testing.T) {
	input := `{"type":"message","content":""}` + "\n" +
		`{"type":"message"}` + "\n"
	d := NewDecoder(strings.NewReader(input))

	withEmpty, err := d.Next()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if withEmpty.Content == nil || *withEmpty.Content != "" {
		t.Fatalf("present empty content must decode as non-nil: %+v", withEmpty)
	}

	without, err := d.Next()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if without.Content != nil {
		t.Fatalf("missing content must decode as nil, got %q", *without.Content)
	}
}

// zeroReader returns (0, nil) forever, which io.Reader permits.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) { return 0, nil }

func TestDecoderStopsOnZeroByteReads(t *testing.T) {
	d := NewDecoder(zeroReader{})
	if _, err := d.Next(); !errors.Is(err, io.ErrNoProgress) {
		t.Fatalf("expected ErrNoProgress, got %v", err)
	}
}

func TestDecoderRejectsMalformedFrames(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"invalid json", "not-json\n"},
		{"missing type", `{"content":"hi"}` + "\n"},
		{"empty line", "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(strings.NewReader(tt.input))
			_, err := d.Next()
			var perr *ProtocolError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ProtocolError, got %v", err)
			}
		})
	}
}

func TestDecoderEOFWithoutDelimiter(t *testing.T) {
	// A dangling partial frame is dropped when the peer closes mid-line.
	d := NewDecoder(strings.NewReader(`{"type":"login"`))
	if _, err := d.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestEncodeAppendsDelimiter(t *testing.T) {
	b, err := Encode(OK(TypeLogin))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.HasSuffix(b, []byte("\n")) {
		t.Fatalf("expected trailing newline, got %q", b)
	}
	if got, want := string(b), `{"type":"login","status":"ok"}`+"\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if bytes.Count(b, []byte("\n")) != 1 {
		t.Fatalf("expected exactly one delimiter, got %q", b)
	}
}

func TestEncodeChatMessageShape(t *testing.T) {
	msg := ChatMessage{Type: TypeMessage, From: "alice", Channel: "#dev", Content: "hello", Timestamp: "2026-01-02T15:04:05Z"}
	b, err := Encode(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	d := NewDecoder(bytes.NewReader(b))
	back, err := d.Next()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Type != TypeMessage || deref(back.From) != "alice" || deref(back.Content) != "hello" {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
