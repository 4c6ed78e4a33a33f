package beam

import "testing"

func TestResolveRoomKey(t *testing.T) {
	tests := []struct {
		name      string
		localHost bool
		mode      Mode
		remote    string
		want      RoomKey
	}{
		{"direct dialer", false, ModeDirect, "peer-a", DirectKey("peer-a")},
		{"direct acceptor", true, ModeDirect, "peer-a", DirectKey("peer-a")},
		{"group host", true, ModeGroup, "guest-1", GroupHostedKey()},
		{"group guest", false, ModeGroup, "host-x", GroupJoinedKey("host-x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveRoomKey(tt.localHost, tt.mode, tt.remote)
			if got != tt.want {
				t.Fatalf("ResolveRoomKey(%v, %s, %s) = %v, want %v",
					tt.localHost, tt.mode, tt.remote, got, tt.want)
			}
		})
	}
}

func TestRoomKeySymmetry(t *testing.T) {
	// Both sides of a direct beam must land on the remote's identity.
	dialer := ResolveRoomKey(false, ModeDirect, "p2")
	if id, ok := dialer.RemoteIdentity(); !ok || id != "p2" {
		t.Fatalf("dialer key remote = %q, %v", id, ok)
	}
	acceptor := ResolveRoomKey(true, ModeDirect, "p1")
	if id, ok := acceptor.RemoteIdentity(); !ok || id != "p1" {
		t.Fatalf("acceptor key remote = %q, %v", id, ok)
	}
}

func TestHostedKeyHasNoRemote(t *testing.T) {
	key := GroupHostedKey()
	if !key.Hosted() || !key.IsGroup() {
		t.Fatalf("hosted key misclassified: %+v", key)
	}
	if _, ok := key.RemoteIdentity(); ok {
		t.Fatal("hosted group key must not resolve to a single remote")
	}
}

func TestGroupJoinedKeyUsesHostIdentity(t *testing.T) {
	key := GroupJoinedKey("host-x")
	if key.Hosted() {
		t.Fatal("joined key must not be hosted")
	}
	if !key.IsGroup() {
		t.Fatal("joined key must be group")
	}
	if id, ok := key.RemoteIdentity(); !ok || id != "host-x" {
		t.Fatalf("joined key remote = %q, %v", id, ok)
	}
	if key == DirectKey("host-x") {
		t.Fatal("joined and direct keys for the same identity must differ")
	}
}
