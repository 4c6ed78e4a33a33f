package signaling

// Message represents all WebSocket messages between a beam client and the
// signal server. From is filled in by the server when relaying; To addresses
// a remote peer identity.
type Message struct {
	Type    string `json:"type"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// Message type constants.
const (
	MessageTypeConnectRequest = "connect_request"
	MessageTypeSignal         = "signal"

	MessageTypeIdentity = "identity"
	MessageTypePeerGone = "peer_gone"
	MessageTypeError    = "error"
)

// SignalPayload represents the WebRTC signaling data (SDP offer/answer or ICE candidate).
type SignalPayload struct {
	Type         string `json:"type,omitempty"`
	SDP          string `json:"sdp,omitempty"`
	ICECandidate any    `json:"ice_candidate,omitempty"`
}

// ErrorPayload represents error messages from the server. Target carries the
// peer identity a failed connect request was addressed to, when applicable.
type ErrorPayload struct {
	Error  string `json:"error"`
	Target string `json:"target,omitempty"`
}
