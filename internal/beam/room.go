package beam

import "time"

// Room is one conversation scope: an append-only message log plus the set
// of participant identities, in insertion order. Values handed out by the
// Store are snapshots; mutating them does not affect the Store.
type Room struct {
	Key          RoomKey
	Name         string
	Mode         Mode
	Host         bool
	Participants []string
	Messages     []Message
	LastActivity time.Time
}

// roomName picks the display name the original webapp used for each shape.
func roomName(mode Mode, host bool) string {
	if mode == ModeGroup {
		if host {
			return "My Group Beam"
		}
		return "Secure Group"
	}
	return "Direct Tunnel"
}

// snapshot returns a copy whose slices are detached from the live room.
func (r *Room) snapshot() Room {
	cp := *r
	cp.Participants = append([]string(nil), r.Participants...)
	cp.Messages = append([]Message(nil), r.Messages...)
	return cp
}

func (r *Room) addParticipant(identity string) bool {
	for _, p := range r.Participants {
		if p == identity {
			return false
		}
	}
	r.Participants = append(r.Participants, identity)
	return true
}
