package beam

// roomKind tags the three shapes a room identity can take.
type roomKind int

const (
	kindDirect roomKind = iota
	kindGroupHosted
	kindGroupJoined
)

// RoomKey identifies a conversation scope. It is a tagged union rather than
// a sentinel string: Direct(remote) for one-to-one tunnels, GroupHosted for
// the single shared room a host relays through, GroupJoined(host) for a
// guest's view of that room. RoomKey is comparable and used as a map key.
type RoomKey struct {
	kind     roomKind
	identity string
}

func DirectKey(remote string) RoomKey {
	return RoomKey{kind: kindDirect, identity: remote}
}

func GroupHostedKey() RoomKey {
	return RoomKey{kind: kindGroupHosted}
}

func GroupJoinedKey(host string) RoomKey {
	return RoomKey{kind: kindGroupJoined, identity: host}
}

// ResolveRoomKey applies the room-id resolution rule. It must be identical
// on the send and receive paths: a host of a group beam addresses all its
// guests through one shared room, while each guest keys the room by the
// host's identity.
func ResolveRoomKey(localIsHost bool, mode Mode, remote string) RoomKey {
	if mode == ModeGroup {
		if localIsHost {
			return GroupHostedKey()
		}
		return GroupJoinedKey(remote)
	}
	return DirectKey(remote)
}

// IsGroup reports whether the key names a group room.
func (k RoomKey) IsGroup() bool {
	return k.kind == kindGroupHosted || k.kind == kindGroupJoined
}

// Hosted reports whether the local node relays for this room.
func (k RoomKey) Hosted() bool {
	return k.kind == kindGroupHosted
}

// RemoteIdentity returns the peer identity outbound sends are addressed to,
// and ok=false for the hosted group room, which fans out instead.
func (k RoomKey) RemoteIdentity() (string, bool) {
	if k.kind == kindGroupHosted {
		return "", false
	}
	return k.identity, true
}

// String renders the key for logs and the UI: the remote identity for
// direct and joined rooms, a fixed label for the hosted group room.
func (k RoomKey) String() string {
	if k.kind == kindGroupHosted {
		return "group-beam"
	}
	return k.identity
}
