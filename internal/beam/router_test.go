package beam

import "testing"

func newTestRouter() (*Router, *Registry, *Store) {
	reg := NewRegistry()
	store := NewStore()
	return NewRouter(reg, store), reg, store
}

func mustDecode(t *testing.T, frame []byte) Message {
	t.Helper()
	msg, ok, err := DecodeEnvelope(frame)
	if err != nil || !ok {
		t.Fatalf("decode frame: ok=%v err=%v", ok, err)
	}
	return msg
}

// Dialer sends "hi", acceptor receives it: both sides file the message
// under the other's identity.
func TestDirectExchange(t *testing.T) {
	// Dialer side (p1 talking to p2).
	router1, reg1, store1 := newTestRouter()
	toP2 := &fakeConn{id: "p2", mode: ModeDirect}
	reg1.Register(toP2)
	store1.EnsureRoom(DirectKey("p2"), ModeDirect, false, "p2")

	msg := NewMessage("p1", "P1", "hi", MessageText)
	if err := router1.SendTo(DirectKey("p2"), msg); err != nil {
		t.Fatalf("SendTo: %v", err)
	}

	room1, _ := store1.Room(DirectKey("p2"))
	if len(room1.Messages) != 1 || room1.Messages[0].Content != "hi" {
		t.Fatalf("dialer echo = %v", room1.Messages)
	}
	if len(toP2.frames) != 1 {
		t.Fatalf("frames sent = %d, want 1", len(toP2.frames))
	}

	// Acceptor side (p2, host of the connection from p1).
	router2, _, store2 := newTestRouter()
	fromP1 := &fakeConn{id: "p1", mode: ModeDirect, host: true}
	store2.EnsureRoom(DirectKey("p1"), ModeDirect, true, "p1")

	if !router2.HandleInbound(fromP1, toP2.frames[0]) {
		t.Fatal("inbound frame not appended")
	}
	room2, _ := store2.Room(DirectKey("p1"))
	if len(room2.Messages) != 1 {
		t.Fatalf("acceptor messages = %d, want 1", len(room2.Messages))
	}
	got := room2.Messages[0]
	if got.Content != "hi" || got.SenderID != "p1" || got.ID != msg.ID {
		t.Fatalf("received message = %+v", got)
	}
}

// A frame from one guest reaches every other guest exactly once and is
// never echoed back to its sender.
func TestHostRelayExcludesArrival(t *testing.T) {
	router, reg, store := newTestRouter()
	g1 := &fakeConn{id: "g1", mode: ModeGroup, host: true}
	g2 := &fakeConn{id: "g2", mode: ModeGroup, host: true}
	g3 := &fakeConn{id: "g3", mode: ModeGroup, host: true}
	for _, c := range []*fakeConn{g1, g2, g3} {
		reg.Register(c)
		store.EnsureRoom(GroupHostedKey(), ModeGroup, true, c.id)
	}

	frame, err := EncodeMessage(NewMessage("g1", "G1", "hello all", MessageText))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	if !router.HandleInbound(g1, frame) {
		t.Fatal("inbound frame not appended")
	}

	if len(g1.frames) != 0 {
		t.Fatal("frame relayed back to its sender")
	}
	if len(g2.frames) != 1 || len(g3.frames) != 1 {
		t.Fatalf("relay counts g2=%d g3=%d, want 1 each", len(g2.frames), len(g3.frames))
	}
	room, _ := store.Room(GroupHostedKey())
	if len(room.Messages) != 1 {
		t.Fatalf("host appended %d copies, want 1", len(room.Messages))
	}
}

func TestGuestInboundFilesUnderHostKey(t *testing.T) {
	router, _, store := newTestRouter()
	host := &fakeConn{id: "host-x", mode: ModeGroup}
	store.EnsureRoom(GroupJoinedKey("host-x"), ModeGroup, false, "host-x")

	frame, _ := EncodeMessage(NewMessage("g2", "G2", "relayed", MessageText))
	if !router.HandleInbound(host, frame) {
		t.Fatal("relayed frame not appended")
	}
	room, _ := store.Room(GroupJoinedKey("host-x"))
	if len(room.Messages) != 1 || room.Messages[0].SenderID != "g2" {
		t.Fatalf("guest room = %v", room.Messages)
	}
}

func TestHostOutboundBroadcastsToAllGuests(t *testing.T) {
	router, reg, store := newTestRouter()
	g1 := &fakeConn{id: "g1", mode: ModeGroup, host: true}
	g2 := &fakeConn{id: "g2", mode: ModeGroup, host: true}
	reg.Register(g1)
	reg.Register(g2)
	store.EnsureRoom(GroupHostedKey(), ModeGroup, true, "g1")
	store.SetActive(GroupHostedKey())

	key, err := router.SendUser(NewMessage("me", "Me", "broadcast", MessageText))
	if err != nil {
		t.Fatalf("SendUser: %v", err)
	}
	if key != GroupHostedKey() {
		t.Fatalf("routed to %v, want hosted key", key)
	}
	if len(g1.frames) != 1 || len(g2.frames) != 1 {
		t.Fatalf("broadcast counts g1=%d g2=%d, want 1 each", len(g1.frames), len(g2.frames))
	}
}

func TestGuestOutboundSendsOnlyToHost(t *testing.T) {
	router, reg, store := newTestRouter()
	host := &fakeConn{id: "host-x", mode: ModeGroup}
	other := &fakeConn{id: "other", mode: ModeDirect}
	reg.Register(host)
	reg.Register(other)
	store.EnsureRoom(GroupJoinedKey("host-x"), ModeGroup, false, "host-x")

	if err := router.SendTo(GroupJoinedKey("host-x"), NewMessage("me", "Me", "up", MessageText)); err != nil {
		t.Fatalf("SendTo: %v", err)
	}
	if len(host.frames) != 1 {
		t.Fatalf("host frames = %d, want 1", len(host.frames))
	}
	if len(other.frames) != 0 {
		t.Fatal("unrelated connection received the frame")
	}
}

func TestSendUserWithoutActiveRoom(t *testing.T) {
	router, _, _ := newTestRouter()
	if _, err := router.SendUser(NewMessage("me", "Me", "hi", MessageText)); err != ErrNoActiveRoom {
		t.Fatalf("err = %v, want ErrNoActiveRoom", err)
	}
}

// The local echo lands even when the channel is gone; the caller just
// learns delivery failed.
func TestSendEchoSurvivesClosedChannel(t *testing.T) {
	router, reg, store := newTestRouter()
	dead := &fakeConn{id: "p2", mode: ModeDirect, closed: true}
	reg.Register(dead)
	store.EnsureRoom(DirectKey("p2"), ModeDirect, false, "p2")

	err := router.SendTo(DirectKey("p2"), NewMessage("me", "Me", "hi", MessageText))
	if err == nil {
		t.Fatal("send on a closed channel must fail")
	}
	room, _ := store.Room(DirectKey("p2"))
	if len(room.Messages) != 1 {
		t.Fatalf("echo count = %d, want 1", len(room.Messages))
	}
}

func TestForeignEnvelopeIgnored(t *testing.T) {
	router, _, store := newTestRouter()
	conn := &fakeConn{id: "p1", mode: ModeDirect, host: true}
	store.EnsureRoom(DirectKey("p1"), ModeDirect, true, "p1")

	frame := encodeForeignEnvelope(t)
	if router.HandleInbound(conn, frame) {
		t.Fatal("foreign envelope must not append")
	}
	room, _ := store.Room(DirectKey("p1"))
	if len(room.Messages) != 0 {
		t.Fatalf("messages = %d, want 0", len(room.Messages))
	}
}

func TestMalformedFrameIgnored(t *testing.T) {
	router, _, store := newTestRouter()
	conn := &fakeConn{id: "p1", mode: ModeDirect, host: true}
	store.EnsureRoom(DirectKey("p1"), ModeDirect, true, "p1")

	if router.HandleInbound(conn, []byte{0xc1, 0xff, 0x00}) {
		t.Fatal("malformed frame must not append")
	}
}
