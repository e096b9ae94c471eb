package websocket

import (
	"bytes"
	"testing"
)

func TestBuildAndParseFrameRoundTrip(t *testing.T) {
	payload := []byte("hello websocket")
	framed, err := buildFrame(opText, payload, true)
	if err != nil {
		t.Fatalf("buildFrame: %v", err)
	}

	frames, rest, err := parseFrames(framed)
	if err != nil {
		t.Fatalf("parseFrames: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("expected no leftover, got %d bytes", len(rest))
	}
	if len(frames) != 1 {
		t.Fatalf("expected 1 frame, got %d", len(frames))
	}
	f := frames[0]
	if !f.Fin || f.Opcode != opText {
		t.Fatalf("unexpected frame metadata: %+v", f)
	}
	if !bytes.Equal(f.Payload, payload) {
		t.Fatalf("payload = %q, want %q", f.Payload, payload)
	}
}

func TestBuildFrameIsMasked(t *testing.T) {
	framed, err := buildFrame(opText, []byte("x"), true)
	if err != nil {
		t.Fatalf("buildFrame: %v", err)
	}
	if framed[1]&0x80 == 0 {
		t.Fatal("expected MASK bit to be set on a client frame")
	}
}

func TestParseFramesExtended16BitLength(t *testing.T) {
	payload := make([]byte, 300)
	for i := range payload {
		payload[i] = byte(i)
	}
	framed, err := buildFrame(opBin, payload, true)
	if err != nil {
		t.Fatalf("buildFrame: %v", err)
	}
	frames, rest, err := parseFrames(framed)
	if err != nil {
		t.Fatalf("parseFrames: %v", err)
	}
	if len(rest) != 0 || len(frames) != 1 {
		t.Fatalf("unexpected parse result: frames=%d rest=%d", len(frames), len(rest))
	}
	if !bytes.Equal(frames[0].Payload, payload) {
		t.Fatal("payload mismatch for extended-length frame")
	}
}

func TestParseFramesIncompletePayloadLeavesLeftover(t *testing.T) {
	framed, _ := buildFrame(opText, []byte("hello"), true)
	partial := framed[:len(framed)-2]

	frames, rest, err := parseFrames(partial)
	if err != nil {
		t.Fatalf("parseFrames: %v", err)
	}
	if len(frames) != 0 {
		t.Fatalf("expected 0 complete frames, got %d", len(frames))
	}
	if len(rest) != len(partial) {
		t.Fatalf("expected full partial frame returned as leftover")
	}
}
