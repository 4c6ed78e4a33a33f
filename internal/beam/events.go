package beam

import "github.com/klmtseng/BEAM-P2P/internal/signaling"

// Dispatcher events. Every state transition of the session — signaling
// lifecycle, connection lifecycle, timers, user operations — arrives as one
// of these and is processed to completion before the next, which stands in
// for locking on the registry and room store.
type (
	evSessionUp struct {
		client *signaling.Client
	}
	evIdentity      struct{ id string }
	evSignalingLost struct{}
	evReconnect     struct{ gen uint64 }
	evRedialFailed  struct{ err error }

	evConnect struct {
		remote string
		mode   Mode
	}
	evIncoming struct {
		from string
		mode string
	}
	evSignal struct {
		from    string
		payload *signaling.SignalPayload
	}
	evPeerGone    struct{ from string }
	evServerError struct{ payload *signaling.ErrorPayload }

	evConnOpened struct{ conn *Conn }
	evConnData   struct {
		conn  *Conn
		frame []byte
	}
	evConnClosed     struct{ conn *Conn }
	evConnectTimeout struct {
		remote string
		gen    uint64
	}

	evSend struct {
		msg  Message
		errc chan error
	}
	evRemoveRoom struct {
		key  RoomKey
		errc chan error
	}
)

// Notice is what the session reports back to its observer (the UI layer).
type Notice interface{ notice() }

// NoticeReady fires when the signal server has assigned the local identity.
type NoticeReady struct{ Identity string }

// NoticeDegraded fires when contact with the signal server is lost and
// persists if the single reconnect attempt fails.
type NoticeDegraded struct{ Err error }

// NoticeRoomOpened fires when a connection reaches OPEN and its room exists.
type NoticeRoomOpened struct{ Key RoomKey }

// NoticeRoomsChanged fires whenever room state changed; the UI re-reads
// snapshots from the store.
type NoticeRoomsChanged struct{}

// NoticeConnectFailed fires when a connect attempt is abandoned.
type NoticeConnectFailed struct {
	Remote string
	Err    error
}

func (NoticeReady) notice()         {}
func (NoticeDegraded) notice()      {}
func (NoticeRoomOpened) notice()    {}
func (NoticeRoomsChanged) notice()  {}
func (NoticeConnectFailed) notice() {}
