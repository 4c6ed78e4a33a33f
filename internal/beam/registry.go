package beam

import (
	"log/slog"
	"sync"
)

// Sender is one open data channel to a remote peer. The pion-backed
// implementation lives in conn.go; tests substitute fakes.
type Sender interface {
	Identity() string
	Mode() Mode
	// Host reports whether the local node accepted this connection.
	Host() bool
	IsOpen() bool
	Send(data []byte) error
	Close() error
}

// Registry is the authoritative set of currently open connections, keyed by
// remote identity. Entries are registered only once a connection reaches
// OPEN; a newer registration for the same identity wins.
type Registry struct {
	mu    sync.Mutex
	conns map[string]Sender
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Sender)}
}

// Register records an open connection, overwriting any stale prior entry
// for the same identity.
func (r *Registry) Register(conn Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[conn.Identity()] = conn
}

// Unregister removes the entry for an identity. Idempotent.
func (r *Registry) Unregister(identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, identity)
}

// Get returns the registered connection for an identity.
func (r *Registry) Get(identity string) (Sender, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[identity]
	return conn, ok
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Broadcast sends data to every registered, still-open connection
// satisfying the predicate. Delivery is best-effort: a failed send is
// logged and never blocks delivery to the rest. Returns the number of
// successful deliveries.
func (r *Registry) Broadcast(pred func(Sender) bool, data []byte) int {
	r.mu.Lock()
	targets := make([]Sender, 0, len(r.conns))
	for _, conn := range r.conns {
		if conn.IsOpen() && pred(conn) {
			targets = append(targets, conn)
		}
	}
	r.mu.Unlock()

	delivered := 0
	for _, conn := range targets {
		if err := conn.Send(data); err != nil {
			slog.Warn("broadcast delivery failed",
				"peer", conn.Identity(), "error", ErrRelayDelivery, "cause", err)
			continue
		}
		delivered++
	}
	return delivered
}
