package beam

import (
	"errors"
	"testing"
)

func TestBeamErrorUnwraps(t *testing.T) {
	err := NewPeerError("open beam", "brave-otter-42", ErrPeerUnreachable)
	if !errors.Is(err, ErrPeerUnreachable) {
		t.Fatal("wrapped sentinel not matched by errors.Is")
	}

	var beamErr *BeamError
	if !errors.As(err, &beamErr) {
		t.Fatal("errors.As failed to extract *BeamError")
	}
	if beamErr.Peer != "brave-otter-42" {
		t.Fatalf("peer = %q", beamErr.Peer)
	}
}

func TestBeamErrorMessageShapes(t *testing.T) {
	tests := []struct {
		err  *BeamError
		want string
	}{
		{NewError("send message", ErrChannelNotOpen), "send message: channel not open"},
		{NewPeerError("open beam", "p1", ErrPeerUnreachable), "open beam p1: beam target unreachable"},
		{WrapError("redial", ErrSignalingDisconnected, "attempt 1"), "redial: signal server disconnected (attempt 1)"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
