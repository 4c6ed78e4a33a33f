package signalserver

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/klmtseng/BEAM-P2P/internal/signaling"
)

// inbound pairs a parsed message with the client that sent it.
type inbound struct {
	client *Client
	msg    *signaling.Message
}

// Hub is the central brain of the signal server. It assigns peer identities
// and relays connect requests and WebRTC signals between them.
type Hub struct {
	// clients maps assigned peer identities to connected clients.
	clients map[string]*Client

	// Register is a channel for registering new clients.
	Register chan *Client

	// Unregister is a channel for unregistering clients.
	Unregister chan *Client

	// Relay carries client messages for the hub to route.
	Relay chan *inbound
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Relay:      make(chan *inbound),
	}
}

// generateIdentity creates a random, memorable peer identity.
// Format: adjective-animal-noun (e.g., "tiny-otter-sunbeam").
func (h *Hub) generateIdentity() string {
	for {
		id := fmt.Sprintf("%s-%s-%s",
			adjectives[randomIndex(len(adjectives))],
			animals[randomIndex(len(animals))],
			nouns[randomIndex(len(nouns))],
		)

		if _, ok := h.clients[id]; !ok {
			return id
		}
	}
}

// randomIndex returns a cryptographically secure random index for a slice of given length.
func randomIndex(max int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(fmt.Sprintf("generate random index: %v", err))
	}
	return int(n.Int64())
}

// Run starts the hub's main processing loop.
// This is the single goroutine that safely manages all state.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.register(client)

		case client := <-h.Unregister:
			h.unregister(client)

		case in := <-h.Relay:
			h.route(in.client, in.msg)
		}
	}
}

func (h *Hub) register(client *Client) {
	identity := client.Requested
	if identity == "" {
		identity = h.generateIdentity()
	} else if old, ok := h.clients[identity]; ok {
		// A reconnect may race the server noticing the old connection is
		// dead. Latest connection wins; the stale unregister is a no-op.
		close(old.Send)
	}

	client.Identity = identity
	client.contacts = make(map[string]struct{})
	h.clients[client.Identity] = client

	slog.Info("client registered", "identity", client.Identity, "addr", client.Conn.RemoteAddr())

	// Tell the client who it is. This is the assignment event beam
	// sessions wait for before they are READY.
	client.Send <- &signaling.Message{
		Type: signaling.MessageTypeIdentity,
		To:   client.Identity,
	}
}

func (h *Hub) unregister(client *Client) {
	// A stale entry may already have been replaced by a reconnect.
	if h.clients[client.Identity] != client {
		return
	}
	delete(h.clients, client.Identity)

	slog.Info("client unregistered", "identity", client.Identity)

	// Notify every peer this client talked to.
	for contact := range client.contacts {
		if peer, ok := h.clients[contact]; ok {
			peer.Send <- &signaling.Message{
				Type: signaling.MessageTypePeerGone,
				From: client.Identity,
			}
		}
	}

	close(client.Send)
}

// route relays connect requests and signals to their addressed peer.
func (h *Hub) route(client *Client, msg *signaling.Message) {
	// A superseded connection may still have a message in flight; its
	// Send channel is already closed.
	if h.clients[client.Identity] != client {
		return
	}

	switch msg.Type {

	case signaling.MessageTypeConnectRequest, signaling.MessageTypeSignal:
		target, ok := h.clients[msg.To]
		if !ok {
			slog.Debug("relay failed: peer not found", "from", client.Identity, "to", msg.To)
			client.Send <- &signaling.Message{
				Type:    signaling.MessageTypeError,
				Payload: signaling.ErrorPayload{Error: "peer not found", Target: msg.To},
			}
			return
		}

		client.contacts[target.Identity] = struct{}{}
		target.contacts[client.Identity] = struct{}{}

		// Forward with the sender identity stamped on; the To field is
		// dropped so clients cannot spoof From.
		target.Send <- &signaling.Message{
			Type:    msg.Type,
			From:    client.Identity,
			Mode:    msg.Mode,
			Payload: msg.Payload,
		}

	default:
		slog.Debug("unknown message type", "type", msg.Type, "from", client.Identity)
	}
}
