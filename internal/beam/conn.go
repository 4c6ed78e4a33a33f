package beam

import (
	"encoding/json"
	"sync/atomic"

	pion "github.com/pion/webrtc/v4"

	"github.com/klmtseng/BEAM-P2P/internal/config"
)

// dataChannelLabel is the single channel label beams speak over.
const dataChannelLabel = "beam"

type connState int32

const (
	stateInit connState = iota
	stateOpen
	stateClosed // terminal, connections are never resurrected
)

// Conn wraps one pion peer connection and its beam data channel. Lifecycle
// is INIT → OPEN → CLOSED; a closed Conn is discarded and a fresh one is
// created to reconnect.
type Conn struct {
	remote string
	mode   Mode
	host   bool

	pc    *pion.PeerConnection
	dc    *pion.DataChannel
	state atomic.Int32
}

func newPeerConnection(cfg *config.Config) (*pion.PeerConnection, error) {
	iceServers := []pion.ICEServer{{URLs: cfg.GetSTUNServers()}}

	turnServers := cfg.GetTURNServers()
	if turnServers != nil {
		username, password := cfg.GetTURNCredentials()
		iceServers = append(iceServers, pion.ICEServer{
			URLs:       turnServers,
			Username:   username,
			Credential: password,
		})
	}

	policy := pion.ICETransportPolicyAll
	if turnServers != nil && cfg.ForceRelay {
		policy = pion.ICETransportPolicyRelay
	}

	pc, err := pion.NewPeerConnection(pion.Configuration{
		ICEServers:         iceServers,
		ICETransportPolicy: policy,
	})
	if err != nil {
		return nil, NewError("create peer connection", err)
	}
	return pc, nil
}

func newConn(remote string, mode Mode, host bool, pc *pion.PeerConnection) *Conn {
	return &Conn{remote: remote, mode: mode, host: host, pc: pc}
}

// createDataChannel opens the dialer-side channel. Ordered and reliable:
// chat messages want transport ordering per connection.
func (c *Conn) createDataChannel() (*pion.DataChannel, error) {
	ordered := true

	dc, err := c.pc.CreateDataChannel(dataChannelLabel, &pion.DataChannelInit{
		Ordered: &ordered,
	})
	if err != nil {
		return nil, NewError("create data channel", err)
	}
	return dc, nil
}

// bindChannel attaches lifecycle handlers. post delivers events to the
// session dispatcher; no state is touched from pion callbacks directly.
func (c *Conn) bindChannel(dc *pion.DataChannel, post func(any)) {
	c.dc = dc

	dc.OnOpen(func() {
		post(evConnOpened{conn: c})
	})

	dc.OnMessage(func(msg pion.DataChannelMessage) {
		post(evConnData{conn: c, frame: msg.Data})
	})

	dc.OnClose(func() {
		post(evConnClosed{conn: c})
	})

	dc.OnError(func(err error) {
		post(evConnClosed{conn: c})
	})
}

func (c *Conn) Identity() string { return c.remote }
func (c *Conn) Mode() Mode       { return c.mode }
func (c *Conn) Host() bool       { return c.host }

func (c *Conn) IsOpen() bool {
	return connState(c.state.Load()) == stateOpen
}

func (c *Conn) markOpen() {
	c.state.CompareAndSwap(int32(stateInit), int32(stateOpen))
}

func (c *Conn) Send(data []byte) error {
	if !c.IsOpen() || c.dc == nil {
		return ErrChannelNotOpen
	}
	return c.dc.Send(data)
}

func (c *Conn) Close() error {
	if connState(c.state.Swap(int32(stateClosed))) == stateClosed {
		return nil
	}
	return c.pc.Close()
}

// setRemoteOffer applies the remote offer and produces an answer.
func (c *Conn) setRemoteOffer(sdp string) (*pion.SessionDescription, error) {
	offer := pion.SessionDescription{Type: pion.SDPTypeOffer, SDP: sdp}
	if err := c.pc.SetRemoteDescription(offer); err != nil {
		return nil, NewError("set remote description", err)
	}

	answer, err := c.pc.CreateAnswer(nil)
	if err != nil {
		return nil, NewError("create answer", err)
	}
	if err = c.pc.SetLocalDescription(answer); err != nil {
		return nil, NewError("set local description", err)
	}
	return c.pc.LocalDescription(), nil
}

// setRemoteAnswer applies the remote answer on the dialer side.
func (c *Conn) setRemoteAnswer(sdp string) error {
	answer := pion.SessionDescription{Type: pion.SDPTypeAnswer, SDP: sdp}
	if err := c.pc.SetRemoteDescription(answer); err != nil {
		return NewError("set remote description", err)
	}
	return nil
}

// createOffer produces the dialer-side offer.
func (c *Conn) createOffer() (*pion.SessionDescription, error) {
	offer, err := c.pc.CreateOffer(nil)
	if err != nil {
		return nil, NewError("create offer", err)
	}
	if err = c.pc.SetLocalDescription(offer); err != nil {
		return nil, NewError("set local description", err)
	}
	return c.pc.LocalDescription(), nil
}

// addICECandidate applies a relayed candidate.
func (c *Conn) addICECandidate(candidate any) error {
	if candidate == nil {
		return nil
	}
	candidateBytes, _ := json.Marshal(candidate)
	var ice pion.ICECandidateInit
	if err := json.Unmarshal(candidateBytes, &ice); err != nil {
		return NewError("parse ICE candidate", err)
	}
	if err := c.pc.AddICECandidate(ice); err != nil {
		return NewError("add ICE candidate", err)
	}
	return nil
}
