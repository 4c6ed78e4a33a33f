package beam

import (
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func encodeForeignEnvelope(t *testing.T) []byte {
	t.Helper()
	payload, err := msgpack.Marshal(map[string]string{"state": "online"})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	frame, err := msgpack.Marshal(Envelope{Type: "presence", Payload: payload})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return frame
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	msg := NewMessage("p1", "P1", "hello", MessageText)
	msg.FileName = "photo.png"
	msg.FileSize = "2.1 MB"
	msg.Type = MessageImage

	frame, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, ok, err := DecodeEnvelope(frame)
	if err != nil || !ok {
		t.Fatalf("decode: ok=%v err=%v", ok, err)
	}
	if got != msg {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, msg)
	}
}

func TestDecodeForeignTag(t *testing.T) {
	_, ok, err := DecodeEnvelope(encodeForeignEnvelope(t))
	if err != nil {
		t.Fatalf("foreign tag must not error: %v", err)
	}
	if ok {
		t.Fatal("foreign tag must not yield a message")
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, _, err := DecodeEnvelope([]byte{0xc1}); err == nil {
		t.Fatal("malformed frame must error")
	}
}

func TestNewMessageAssignsIdentifier(t *testing.T) {
	a := NewMessage("p1", "P1", "x", MessageText)
	b := NewMessage("p1", "P1", "x", MessageText)
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("ids not unique: %q vs %q", a.ID, b.ID)
	}
	if a.Timestamp == 0 {
		t.Fatal("timestamp not set")
	}
}

func TestParseMode(t *testing.T) {
	for raw, want := range map[string]Mode{
		"group":   ModeGroup,
		"direct":  ModeDirect,
		"":        ModeDirect,
		"GROUP":   ModeDirect,
		"unknown": ModeDirect,
	} {
		if got := ParseMode(raw); got != want {
			t.Fatalf("ParseMode(%q) = %s, want %s", raw, got, want)
		}
	}
}
