package beam

import "log/slog"

// Router classifies every inbound and outbound message into a target room
// and, when the local node hosts a group beam, re-broadcasts inbound
// messages to the other group members (star-topology relay).
type Router struct {
	registry *Registry
	store    *Store
}

func NewRouter(registry *Registry, store *Store) *Router {
	return &Router{registry: registry, store: store}
}

// HandleInbound processes one data-channel frame from conn. Frames with a
// foreign envelope tag are ignored. Returns true when a message was
// appended to room state.
func (rt *Router) HandleInbound(conn Sender, frame []byte) bool {
	msg, ok, err := DecodeEnvelope(frame)
	if err != nil {
		slog.Warn("discarding malformed frame", "peer", conn.Identity(), "error", err)
		return false
	}
	if !ok {
		return false
	}

	// Host-side relay: forward the frame as-is to every other open group
	// connection before touching local state. Exactly one forward per
	// other connection; the arrival connection is excluded, guests never
	// see their own message relayed back.
	if conn.Host() && conn.Mode() == ModeGroup {
		from := conn.Identity()
		rt.registry.Broadcast(func(other Sender) bool {
			return other.Mode() == ModeGroup && other.Identity() != from
		}, frame)
	}

	key := ResolveRoomKey(conn.Host(), conn.Mode(), conn.Identity())
	return rt.store.AppendMessage(key, msg)
}

// SendUser dispatches a user-authored message into the active room. The
// message is appended locally first (optimistic echo) regardless of
// delivery outcome.
func (rt *Router) SendUser(msg Message) (RoomKey, error) {
	key, ok := rt.store.Active()
	if !ok {
		return RoomKey{}, ErrNoActiveRoom
	}
	return key, rt.SendTo(key, msg)
}

// SendTo dispatches a user-authored message into a specific room.
func (rt *Router) SendTo(key RoomKey, msg Message) error {
	if !rt.store.AppendMessage(key, msg) {
		return NewError("send message", ErrStaleRoomWrite)
	}

	frame, err := EncodeMessage(msg)
	if err != nil {
		return err
	}

	if key.Hosted() {
		rt.registry.Broadcast(func(conn Sender) bool {
			return conn.Mode() == ModeGroup
		}, frame)
		return nil
	}

	remote, _ := key.RemoteIdentity()
	conn, ok := rt.registry.Get(remote)
	if !ok || !conn.IsOpen() {
		return NewPeerError("send message", remote, ErrChannelNotOpen)
	}
	if err := conn.Send(frame); err != nil {
		return NewPeerError("send message", remote, err)
	}
	return nil
}
