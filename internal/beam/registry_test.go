package beam

import (
	"errors"
	"testing"
)

// fakeConn is a Sender backed by an in-memory frame log.
type fakeConn struct {
	id     string
	mode   Mode
	host   bool
	closed bool
	fail   bool
	frames [][]byte
}

func (f *fakeConn) Identity() string { return f.id }
func (f *fakeConn) Mode() Mode       { return f.mode }
func (f *fakeConn) Host() bool       { return f.host }
func (f *fakeConn) IsOpen() bool     { return !f.closed }

func (f *fakeConn) Send(data []byte) error {
	if f.fail {
		return errors.New("send failed")
	}
	f.frames = append(f.frames, data)
	return nil
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func TestRegisterLatestWins(t *testing.T) {
	reg := NewRegistry()
	stale := &fakeConn{id: "peer-a", mode: ModeDirect}
	fresh := &fakeConn{id: "peer-a", mode: ModeDirect}

	reg.Register(stale)
	reg.Register(fresh)

	if reg.Len() != 1 {
		t.Fatalf("registry size = %d, want 1", reg.Len())
	}
	got, ok := reg.Get("peer-a")
	if !ok || got != Sender(fresh) {
		t.Fatal("latest registration did not win")
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&fakeConn{id: "peer-a"})

	reg.Unregister("peer-a")
	reg.Unregister("peer-a")
	reg.Unregister("never-registered")

	if reg.Len() != 0 {
		t.Fatalf("registry size = %d, want 0", reg.Len())
	}
}

func TestBroadcastFiltersAndSkipsClosed(t *testing.T) {
	reg := NewRegistry()
	g1 := &fakeConn{id: "g1", mode: ModeGroup, host: true}
	g2 := &fakeConn{id: "g2", mode: ModeGroup, host: true}
	dead := &fakeConn{id: "g3", mode: ModeGroup, host: true, closed: true}
	direct := &fakeConn{id: "d1", mode: ModeDirect}
	reg.Register(g1)
	reg.Register(g2)
	reg.Register(dead)
	reg.Register(direct)

	n := reg.Broadcast(func(conn Sender) bool {
		return conn.Mode() == ModeGroup && conn.Identity() != "g1"
	}, []byte("frame"))

	if n != 1 {
		t.Fatalf("delivered = %d, want 1", n)
	}
	if len(g1.frames) != 0 || len(direct.frames) != 0 || len(dead.frames) != 0 {
		t.Fatal("broadcast hit an excluded connection")
	}
	if len(g2.frames) != 1 {
		t.Fatalf("g2 frames = %d, want 1", len(g2.frames))
	}
}

func TestBroadcastSurvivesFailedSend(t *testing.T) {
	reg := NewRegistry()
	bad := &fakeConn{id: "bad", mode: ModeGroup, fail: true}
	good := &fakeConn{id: "good", mode: ModeGroup}
	reg.Register(bad)
	reg.Register(good)

	n := reg.Broadcast(func(Sender) bool { return true }, []byte("frame"))

	if n != 1 {
		t.Fatalf("delivered = %d, want 1", n)
	}
	if len(good.frames) != 1 {
		t.Fatal("failed send blocked delivery to the remaining connection")
	}
}
