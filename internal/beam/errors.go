package beam

import (
	"errors"
	"fmt"
)

var (
	ErrPeerUnreachable       = errors.New("beam target unreachable")
	ErrSignalingDisconnected = errors.New("signal server disconnected")
	ErrRelayDelivery         = errors.New("relay delivery failed")
	ErrStaleRoomWrite        = errors.New("room no longer exists")
	ErrSessionClosed         = errors.New("session closed")
	ErrNoActiveRoom          = errors.New("no active room")
	ErrChannelNotOpen        = errors.New("channel not open")
)

type BeamError struct {
	Op      string
	Peer    string
	Err     error
	Details string
}

func (e *BeamError) Error() string {
	if e.Peer != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Peer, e.Err)
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Details)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BeamError) Unwrap() error {
	return e.Err
}

func NewError(op string, err error) *BeamError {
	return &BeamError{Op: op, Err: err}
}

func NewPeerError(op, peer string, err error) *BeamError {
	return &BeamError{Op: op, Peer: peer, Err: err}
}

func WrapError(op string, err error, details string) *BeamError {
	return &BeamError{Op: op, Err: err, Details: details}
}
