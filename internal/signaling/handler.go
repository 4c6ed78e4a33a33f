package signaling

import "encoding/json"

// ConnectRequest is an inbound request from a remote peer to open a beam.
type ConnectRequest struct {
	From string
	Mode string
}

// Signal is a WebRTC signaling payload relayed from a remote peer.
type Signal struct {
	From    string
	Payload *SignalPayload
}

// Handler routes incoming signaling messages to appropriate channels.
type Handler struct {
	incoming <-chan *Message

	Identity     chan string
	Incoming     chan *ConnectRequest
	Signal       chan *Signal
	PeerGone     chan string
	Error        chan *ErrorPayload
	Disconnected chan struct{}
}

// NewHandler creates a new message handler.
func NewHandler(client *Client) *Handler {
	return newHandler(client.Incoming())
}

func newHandler(incoming <-chan *Message) *Handler {
	return &Handler{
		incoming:     incoming,
		Identity:     make(chan string, 1),
		Incoming:     make(chan *ConnectRequest, 8),
		Signal:       make(chan *Signal, 32),
		PeerGone:     make(chan string, 8),
		Error:        make(chan *ErrorPayload, 8),
		Disconnected: make(chan struct{}),
	}
}

// Start begins listening to incoming messages and routing them. When the
// server connection drops, the Disconnected channel is closed.
func (h *Handler) Start() {
	for msg := range h.incoming {

		switch msg.Type {

		case MessageTypeIdentity:
			h.Identity <- msg.To

		case MessageTypeConnectRequest:
			h.Incoming <- &ConnectRequest{From: msg.From, Mode: msg.Mode}

		case MessageTypeSignal:
			h.handleSignal(msg)

		case MessageTypePeerGone:
			h.PeerGone <- msg.From

		case MessageTypeError:
			h.handleError(msg)

		default:

		}
	}

	close(h.Disconnected)
}

// handleSignal parses the WebRTC signaling payload and sends it.
func (h *Handler) handleSignal(msg *Message) {
	var payload SignalPayload

	payloadBytes, err := json.Marshal(msg.Payload)
	if err != nil {
		h.Error <- &ErrorPayload{Error: "failed to parse signal payload"}
		return
	}

	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		h.Error <- &ErrorPayload{Error: "failed to parse signal payload"}
		return
	}

	h.Signal <- &Signal{From: msg.From, Payload: &payload}
}

// handleError parses the error message and sends it through the Error channel.
func (h *Handler) handleError(msg *Message) {
	var errPayload ErrorPayload

	payloadBytes, err := json.Marshal(msg.Payload)
	if err != nil {
		h.Error <- &ErrorPayload{Error: "unknown error from server"}
		return
	}

	if err := json.Unmarshal(payloadBytes, &errPayload); err != nil {
		h.Error <- &ErrorPayload{Error: "unknown error from server"}
		return
	}

	h.Error <- &errPayload
}
