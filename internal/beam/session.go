package beam

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	pion "github.com/pion/webrtc/v4"

	"github.com/klmtseng/BEAM-P2P/internal/config"
	"github.com/klmtseng/BEAM-P2P/internal/signaling"
)

const (
	// connectTimeout bounds one connect handshake. A late-completing
	// handshake is not force-closed; the timer only stops waiting.
	connectTimeout = 12 * time.Second

	// reconnectDelay is the fixed backoff before the single reconnect
	// attempt after losing the signal server.
	reconnectDelay = 3 * time.Second
)

// State is the signaling-session lifecycle.
type State int

const (
	StateIdle State = iota
	StateReady
	StateDisconnected
	StateClosed
)

// attempt tracks one in-flight connect handshake. The generation makes a
// timeout firing after the attempt already resolved a provable no-op.
type attempt struct {
	conn   *Conn
	gen    uint64
	dialer bool
}

// Session owns the local peer identity and all beams hanging off it. One
// per running client. All registry and room-store mutation runs on the
// dispatcher goroutine, one event at a time.
type Session struct {
	cfg      *config.Config
	store    *Store
	registry *Registry
	router   *Router

	events  chan any
	notices chan Notice
	done    chan struct{}
	once    sync.Once

	mu       sync.RWMutex
	identity string
	state    State
	client   *signaling.Client

	// dispatcher-goroutine only
	peers          map[string]*Conn
	pending        map[string]*attempt
	attemptGen     uint64
	reconnectGen   uint64
	reconnectArmed bool
}

// NewSession creates a session and starts its dispatcher. Call Open to
// reach the signal server.
func NewSession(cfg *config.Config) *Session {
	s := &Session{
		cfg:      cfg,
		store:    NewStore(),
		registry: NewRegistry(),
		events:   make(chan any, 128),
		notices:  make(chan Notice, 64),
		done:     make(chan struct{}),
		peers:    make(map[string]*Conn),
		pending:  make(map[string]*attempt),
	}
	s.router = NewRouter(s.registry, s.store)

	go s.run()
	return s
}

// Open connects to the signal server. Idempotent: a live session is
// returned as-is. The session becomes READY once the server assigns the
// local peer identity, reported as NoticeReady.
func (s *Session) Open() error {
	if s.State() == StateReady {
		return nil
	}
	return s.dial()
}

func (s *Session) dial() error {
	client := signaling.NewClient(s.cfg.WebSocketURL)

	// A redial reclaims the identity every printed join link and QR code
	// already carries; the identity never changes once assigned.
	if prior := s.Identity(); prior != "" {
		client.Reclaim(prior)
	}

	if err := client.Connect(); err != nil {
		return NewError("connect to server", err)
	}

	handler := signaling.NewHandler(client)
	go handler.Start()
	go s.pump(handler)

	s.post(evSessionUp{client: client})
	return nil
}

// Connect initiates a beam to a remote identity. Outcomes arrive as
// notices: NoticeRoomOpened on success, NoticeConnectFailed on timeout or
// a nonexistent target. Connecting to an already-open identity surfaces
// the existing room instead of dialing again.
func (s *Session) Connect(remote string, mode Mode) {
	s.post(evConnect{remote: remote, mode: mode})
}

// SendText sends a user-authored text message into the active room.
func (s *Session) SendText(content string) error {
	return s.Send(content, MessageText, "", "")
}

// Send sends user-authored content of any kind into the active room. The
// content string is opaque to the core: plain text or a data-URL encoding
// produced by an outer collaborator.
func (s *Session) Send(content string, msgType MessageType, fileName, fileSize string) error {
	msg := NewMessage(s.Identity(), s.cfg.DisplayName, content, msgType)
	msg.FileName = fileName
	msg.FileSize = fileSize

	errc := make(chan error, 1)
	select {
	case s.events <- evSend{msg: msg, errc: errc}:
	case <-s.done:
		return ErrSessionClosed
	}
	select {
	case err := <-errc:
		return err
	case <-s.done:
		return ErrSessionClosed
	}
}

// RemoveRoom deletes a room and closes its connection(s).
func (s *Session) RemoveRoom(key RoomKey) error {
	errc := make(chan error, 1)
	select {
	case s.events <- evRemoveRoom{key: key, errc: errc}:
	case <-s.done:
		return ErrSessionClosed
	}
	select {
	case err := <-errc:
		return err
	case <-s.done:
		return ErrSessionClosed
	}
}

// Identity returns the assigned local peer identity, empty until READY.
func (s *Session) Identity() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// State returns the signaling-session state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Rooms returns snapshots of all rooms, most recently active first.
func (s *Session) Rooms() []Room {
	return s.store.Snapshot()
}

// Room returns a snapshot of one room.
func (s *Session) Room(key RoomKey) (Room, bool) {
	return s.store.Room(key)
}

// ActiveRoom returns a snapshot of the room the UI points at.
func (s *Session) ActiveRoom() (Room, bool) {
	key, ok := s.store.Active()
	if !ok {
		return Room{}, false
	}
	return s.store.Room(key)
}

// SetActiveRoom switches the active-room pointer.
func (s *Session) SetActiveRoom(key RoomKey) {
	s.store.SetActive(key)
}

// Notices returns the channel the UI consumes session notices from.
func (s *Session) Notices() <-chan Notice {
	return s.notices
}

// Close tears the session down: signal server connection and all beams.
func (s *Session) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Session) post(ev any) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func (s *Session) notify(n Notice) {
	select {
	case s.notices <- n:
	default:
		slog.Debug("dropping notice, observer not draining")
	}
}

// pump translates signaling handler channels into dispatcher events until
// the server connection drops.
func (s *Session) pump(h *signaling.Handler) {
	for {
		select {
		case id := <-h.Identity:
			s.post(evIdentity{id: id})
		case req := <-h.Incoming:
			s.post(evIncoming{from: req.From, mode: req.Mode})
		case sig := <-h.Signal:
			s.post(evSignal{from: sig.From, payload: sig.Payload})
		case from := <-h.PeerGone:
			s.post(evPeerGone{from: from})
		case errp := <-h.Error:
			s.post(evServerError{payload: errp})
		case <-h.Disconnected:
			s.post(evSignalingLost{})
			return
		case <-s.done:
			return
		}
	}
}

func (s *Session) run() {
	for {
		select {
		case <-s.done:
			s.teardown()
			return
		case ev := <-s.events:
			s.handle(ev)
		}
	}
}

func (s *Session) handle(ev any) {
	switch ev := ev.(type) {
	case evSessionUp:
		s.mu.Lock()
		s.client = ev.client
		s.mu.Unlock()
		s.reconnectArmed = false

	case evIdentity:
		s.mu.Lock()
		s.identity = ev.id
		s.state = StateReady
		s.mu.Unlock()
		slog.Info("session ready", "identity", ev.id)
		s.notify(NoticeReady{Identity: ev.id})

	case evSignalingLost:
		s.handleSignalingLost()

	case evReconnect:
		s.handleReconnect(ev.gen)

	case evRedialFailed:
		slog.Warn("reconnect failed", "error", ev.err)
		s.notify(NoticeDegraded{Err: NewError("reconnect", ErrSignalingDisconnected)})

	case evConnect:
		s.handleConnect(ev.remote, ev.mode)

	case evIncoming:
		s.handleIncoming(ev.from, ParseMode(ev.mode))

	case evSignal:
		s.handleSignal(ev.from, ev.payload)

	case evPeerGone:
		// Advisory: the peer lost its signal server connection, not
		// necessarily its data channel, and may be mid-reconnect. An
		// established beam ends only through the channel's own close
		// and ICE failure events.
		slog.Info("peer lost signal server", "peer", ev.from)

	case evServerError:
		s.handleServerError(ev.payload)

	case evConnOpened:
		s.handleConnOpened(ev.conn)

	case evConnData:
		if s.router.HandleInbound(ev.conn, ev.frame) {
			s.notify(NoticeRoomsChanged{})
		}

	case evConnClosed:
		s.dropConn(ev.conn)
		s.notify(NoticeRoomsChanged{})

	case evConnectTimeout:
		s.handleConnectTimeout(ev.remote, ev.gen)

	case evSend:
		_, err := s.router.SendUser(ev.msg)
		if err == nil {
			s.notify(NoticeRoomsChanged{})
		}
		ev.errc <- err

	case evRemoveRoom:
		ev.errc <- s.handleRemoveRoom(ev.key)
	}
}

func (s *Session) handleSignalingLost() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateDisconnected
	s.client = nil
	s.mu.Unlock()

	slog.Warn("lost signal server", "error", ErrSignalingDisconnected)
	s.notify(NoticeDegraded{Err: ErrSignalingDisconnected})

	// Exactly one reconnect attempt per outage, after a fixed backoff.
	if !s.reconnectArmed {
		s.reconnectArmed = true
		s.reconnectGen++
		gen := s.reconnectGen
		time.AfterFunc(reconnectDelay, func() {
			s.post(evReconnect{gen: gen})
		})
	}
}

func (s *Session) handleReconnect(gen uint64) {
	if gen != s.reconnectGen || s.State() != StateDisconnected {
		return
	}
	go func() {
		if err := s.dial(); err != nil {
			s.post(evRedialFailed{err: err})
		}
	}()
}

func (s *Session) handleConnect(remote string, mode Mode) {
	if remote == "" || remote == s.Identity() {
		return
	}

	// Duplicate guard: an open beam to this identity surfaces its
	// existing room instead of dialing again.
	if conn, ok := s.peers[remote]; ok {
		if conn.IsOpen() {
			key := ResolveRoomKey(conn.Host(), conn.Mode(), remote)
			s.store.SetActive(key)
			s.notify(NoticeRoomOpened{Key: key})
			return
		}
		if _, inflight := s.pending[remote]; inflight {
			return
		}
		// A timed-out handshake being redialed; retire the old attempt.
		s.dropConn(conn)
	}

	client := s.signalClient()
	if client == nil {
		s.notify(NoticeConnectFailed{Remote: remote, Err: ErrSignalingDisconnected})
		return
	}

	pc, err := newPeerConnection(s.cfg)
	if err != nil {
		s.notify(NoticeConnectFailed{Remote: remote, Err: err})
		return
	}
	conn := newConn(remote, mode, false, pc)
	s.wireConn(conn)

	dc, err := conn.createDataChannel()
	if err != nil {
		conn.Close()
		s.notify(NoticeConnectFailed{Remote: remote, Err: err})
		return
	}
	conn.bindChannel(dc, s.post)

	// Mode rides along as handshake metadata so the remote side can
	// classify the room without a separate negotiation message.
	client.SendMessage(&signaling.Message{
		Type: signaling.MessageTypeConnectRequest,
		To:   remote,
		Mode: string(mode),
	})

	offer, err := conn.createOffer()
	if err != nil {
		conn.Close()
		s.notify(NoticeConnectFailed{Remote: remote, Err: err})
		return
	}
	client.SendMessage(&signaling.Message{
		Type:    signaling.MessageTypeSignal,
		To:      remote,
		Payload: signaling.SignalPayload{Type: offer.Type.String(), SDP: offer.SDP},
	})

	s.track(conn, true)
}

func (s *Session) handleIncoming(from string, mode Mode) {
	// A second connection from the same identity replaces the first;
	// the registry's latest-registration-wins rule extends here.
	if old, ok := s.peers[from]; ok {
		s.dropConn(old)
	}

	pc, err := newPeerConnection(s.cfg)
	if err != nil {
		slog.Warn("accept failed", "peer", from, "error", err)
		return
	}
	conn := newConn(from, mode, true, pc)
	s.wireConn(conn)

	pc.OnDataChannel(func(dc *pion.DataChannel) {
		conn.bindChannel(dc, s.post)
	})

	s.track(conn, false)
}

// track records a handshaking connection and arms its attempt timer.
func (s *Session) track(conn *Conn, dialer bool) {
	s.attemptGen++
	gen := s.attemptGen
	s.peers[conn.remote] = conn
	s.pending[conn.remote] = &attempt{conn: conn, gen: gen, dialer: dialer}
	time.AfterFunc(connectTimeout, func() {
		s.post(evConnectTimeout{remote: conn.remote, gen: gen})
	})
}

func (s *Session) handleSignal(from string, payload *signaling.SignalPayload) {
	conn, ok := s.peers[from]
	if !ok {
		slog.Debug("signal for unknown peer", "peer", from)
		return
	}

	switch {
	case payload.SDP != "" && payload.Type == "offer":
		answer, err := conn.setRemoteOffer(payload.SDP)
		if err != nil {
			slog.Warn("handle offer", "peer", from, "error", err)
			return
		}
		if client := s.signalClient(); client != nil {
			client.SendMessage(&signaling.Message{
				Type:    signaling.MessageTypeSignal,
				To:      from,
				Payload: signaling.SignalPayload{Type: answer.Type.String(), SDP: answer.SDP},
			})
		}

	case payload.SDP != "" && payload.Type == "answer":
		if err := conn.setRemoteAnswer(payload.SDP); err != nil {
			slog.Warn("handle answer", "peer", from, "error", err)
		}

	case payload.ICECandidate != nil:
		if err := conn.addICECandidate(payload.ICECandidate); err != nil {
			slog.Warn("handle ICE candidate", "peer", from, "error", err)
		}
	}
}

func (s *Session) handleServerError(payload *signaling.ErrorPayload) {
	if payload.Target != "" {
		if att, ok := s.pending[payload.Target]; ok {
			s.dropConn(att.conn)
			s.notify(NoticeConnectFailed{Remote: payload.Target, Err: ErrPeerUnreachable})
			return
		}
	}
	slog.Warn("signal server error", "error", payload.Error)
}

func (s *Session) handleConnOpened(conn *Conn) {
	if s.peers[conn.remote] != conn {
		// Superseded while handshaking.
		conn.Close()
		return
	}

	conn.markOpen()
	delete(s.pending, conn.remote)
	s.registry.Register(conn)

	key := ResolveRoomKey(conn.Host(), conn.Mode(), conn.remote)
	s.store.EnsureRoom(key, conn.Mode(), conn.Host(), conn.remote)
	s.store.SetActive(key)

	// Guests learn about membership only through host-relayed traffic,
	// so the host announces each join as a system message.
	if conn.Host() && conn.Mode() == ModeGroup {
		sys := NewMessage(s.Identity(), s.cfg.DisplayName,
			fmt.Sprintf("%s joined the beam", conn.remote), MessageSystem)
		if err := s.router.SendTo(key, sys); err != nil {
			slog.Debug("join announcement", "error", err)
		}
	}

	slog.Info("beam open", "peer", conn.remote, "mode", conn.Mode(), "host", conn.Host())
	s.notify(NoticeRoomOpened{Key: key})
	s.notify(NoticeRoomsChanged{})
}

func (s *Session) handleConnectTimeout(remote string, gen uint64) {
	att, ok := s.pending[remote]
	if !ok || att.gen != gen {
		// Attempt already completed or was superseded.
		return
	}

	// Stop waiting without closing anything: a slow handshake may still
	// complete and will register on open. A truly dead attempt is reaped
	// by its own ICE failure or close events.
	delete(s.pending, remote)
	if att.dialer {
		slog.Warn("connect attempt timed out", "peer", remote)
		s.notify(NoticeConnectFailed{Remote: remote, Err: ErrPeerUnreachable})
	}
}

func (s *Session) handleRemoveRoom(key RoomKey) error {
	if _, ok := s.store.Remove(key); !ok {
		return nil
	}

	if key.Hosted() {
		for _, conn := range s.peers {
			if conn.Host() && conn.Mode() == ModeGroup {
				s.dropConn(conn)
			}
		}
	} else if remote, ok := key.RemoteIdentity(); ok {
		if conn, found := s.peers[remote]; found {
			s.dropConn(conn)
		}
	}

	s.notify(NoticeRoomsChanged{})
	return nil
}

// dropConn retires a connection: CLOSED is terminal, the entry is removed
// everywhere and never resurrected.
func (s *Session) dropConn(conn *Conn) {
	if s.peers[conn.remote] == conn {
		delete(s.peers, conn.remote)
	}
	if att, ok := s.pending[conn.remote]; ok && att.conn == conn {
		delete(s.pending, conn.remote)
	}
	if cur, ok := s.registry.Get(conn.remote); ok && cur == Sender(conn) {
		s.registry.Unregister(conn.remote)
	}
	conn.Close()
}

func (s *Session) signalClient() *signaling.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady {
		return nil
	}
	return s.client
}

func (s *Session) teardown() {
	s.mu.Lock()
	s.state = StateClosed
	client := s.client
	s.client = nil
	s.mu.Unlock()

	if client != nil {
		client.Close()
	}
	for _, conn := range s.peers {
		conn.Close()
	}
	s.peers = make(map[string]*Conn)
	s.pending = make(map[string]*attempt)
}

// wireConn attaches peer-connection level handlers shared by both sides.
func (s *Session) wireConn(conn *Conn) {
	conn.pc.OnICEConnectionStateChange(func(state pion.ICEConnectionState) {
		if state == pion.ICEConnectionStateFailed || state == pion.ICEConnectionStateClosed {
			s.post(evConnClosed{conn: conn})
		}
	})

	conn.pc.OnICECandidate(func(c *pion.ICECandidate) {
		if c == nil {
			return
		}
		if client := s.signalClient(); client != nil {
			client.SendMessage(&signaling.Message{
				Type:    signaling.MessageTypeSignal,
				To:      conn.remote,
				Payload: signaling.SignalPayload{ICECandidate: c.ToJSON()},
			})
		}
	})
}
