package beam

import (
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Mode classifies a beam: a one-to-one tunnel or a host-relayed group.
type Mode string

const (
	ModeDirect Mode = "direct"
	ModeGroup  Mode = "group"
)

// ParseMode maps a raw mode string onto a Mode, defaulting to direct for
// anything absent or malformed.
func ParseMode(raw string) Mode {
	if raw == string(ModeGroup) {
		return ModeGroup
	}
	return ModeDirect
}

// MessageType distinguishes conversation content kinds.
type MessageType string

const (
	MessageText   MessageType = "text"
	MessageImage  MessageType = "image"
	MessageFile   MessageType = "file"
	MessageSystem MessageType = "system"
)

// Message is one unit of conversation content. Immutable once created; the
// content string is opaque to the core (plain text or a data-URL encoding).
type Message struct {
	ID         string      `msgpack:"id"`
	SenderID   string      `msgpack:"senderId"`
	SenderName string      `msgpack:"senderName"`
	Content    string      `msgpack:"content"`
	FileName   string      `msgpack:"fileName,omitempty"`
	FileSize   string      `msgpack:"fileSize,omitempty"`
	Timestamp  int64       `msgpack:"timestamp"`
	Type       MessageType `msgpack:"type"`
}

// NewMessage creates a locally authored message with a fresh identifier.
func NewMessage(senderID, senderName, content string, msgType MessageType) Message {
	return Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		SenderName: senderName,
		Content:    content,
		Timestamp:  time.Now().UnixMilli(),
		Type:       msgType,
	}
}

// Envelope is the tagged wrapper for all data-channel payloads. Only the
// "message" kind is consumed; any other tag is ignored.
type Envelope struct {
	Type    string             `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

const EnvelopeMessage = "message"

// EncodeMessage wraps a chat message in the wire envelope.
func EncodeMessage(msg Message) ([]byte, error) {
	payload, err := msgpack.Marshal(msg)
	if err != nil {
		return nil, NewError("marshal message", err)
	}
	return msgpack.Marshal(Envelope{Type: EnvelopeMessage, Payload: payload})
}

// DecodeEnvelope parses a data-channel frame. ok is false for foreign tags,
// which callers must silently skip.
func DecodeEnvelope(data []byte) (Message, bool, error) {
	var env Envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return Message{}, false, NewError("parse envelope", err)
	}
	if env.Type != EnvelopeMessage {
		return Message{}, false, nil
	}

	var msg Message
	if err := msgpack.Unmarshal(env.Payload, &msg); err != nil {
		return Message{}, false, NewError("parse message payload", err)
	}
	return msg, true, nil
}
