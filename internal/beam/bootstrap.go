package beam

import (
	"net/url"
	"strings"
)

// JoinRef is a resolved join reference: the peer to connect to and the
// beam mode, produced by the QR/link-sharing collaborator as
// <origin>/<path>#/join/<identity>?mode=<direct|group>.
type JoinRef struct {
	Identity string
	Mode     Mode
}

// ParseJoinRef resolves a raw join reference. ok is false when no
// reference is present, which callers treat as a pure no-op. A missing or
// malformed mode defaults to direct.
func ParseJoinRef(raw string) (JoinRef, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return JoinRef{}, false
	}

	idx := strings.Index(raw, "/join/")
	if idx < 0 {
		return JoinRef{}, false
	}
	rest := raw[idx+len("/join/"):]

	identity := rest
	query := ""
	if q := strings.IndexByte(rest, '?'); q >= 0 {
		identity = rest[:q]
		query = rest[q+1:]
	}
	identity = strings.TrimSuffix(identity, "/")
	if identity == "" {
		return JoinRef{}, false
	}

	mode := ModeDirect
	if params, err := url.ParseQuery(query); err == nil {
		mode = ParseMode(params.Get("mode"))
	}

	return JoinRef{Identity: identity, Mode: mode}, true
}

// Bootstrap resolves a join reference and drives the connect flow. Called
// at startup and again whenever the reference changes during the process
// lifetime. No reference is a no-op.
func Bootstrap(s *Session, raw string) {
	ref, ok := ParseJoinRef(raw)
	if !ok {
		return
	}
	s.Connect(ref.Identity, ref.Mode)
}

// WatchJoinRefs re-evaluates join references as they arrive, until the
// channel closes.
func WatchJoinRefs(s *Session, refs <-chan string) {
	go func() {
		for raw := range refs {
			Bootstrap(s, raw)
		}
	}()
}
