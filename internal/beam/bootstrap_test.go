package beam

import (
	"errors"
	"testing"
	"time"

	"github.com/klmtseng/BEAM-P2P/internal/config"
)

func TestParseJoinRef(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want JoinRef
		ok   bool
	}{
		{
			"full link with group mode",
			"https://beam.example.com/#/join/brave-otter-42?mode=group",
			JoinRef{Identity: "brave-otter-42", Mode: ModeGroup},
			true,
		},
		{
			"full link without mode",
			"https://beam.example.com/#/join/brave-otter-42",
			JoinRef{Identity: "brave-otter-42", Mode: ModeDirect},
			true,
		},
		{
			"malformed mode falls back to direct",
			"https://beam.example.com/#/join/brave-otter-42?mode=mesh",
			JoinRef{Identity: "brave-otter-42", Mode: ModeDirect},
			true,
		},
		{
			"trailing slash before query",
			"https://beam.example.com/#/join/brave-otter-42/?mode=group",
			JoinRef{Identity: "brave-otter-42", Mode: ModeGroup},
			true,
		},
		{
			"bare fragment",
			"#/join/quiet-crane-7?mode=direct",
			JoinRef{Identity: "quiet-crane-7", Mode: ModeDirect},
			true,
		},
		{"empty", "", JoinRef{}, false},
		{"whitespace only", "   ", JoinRef{}, false},
		{"no join segment", "https://beam.example.com/#/settings", JoinRef{}, false},
		{"join segment with no identity", "https://beam.example.com/#/join/", JoinRef{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseJoinRef(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Fatalf("ref = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// expectConnectFailed drains notices until a NoticeConnectFailed arrives.
func expectConnectFailed(t *testing.T, s *Session, remote string) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case n := <-s.Notices():
			failed, ok := n.(NoticeConnectFailed)
			if !ok {
				continue
			}
			if failed.Remote != remote {
				t.Fatalf("failed remote = %q, want %q", failed.Remote, remote)
			}
			if !errors.Is(failed.Err, ErrSignalingDisconnected) {
				t.Fatalf("failed err = %v, want ErrSignalingDisconnected", failed.Err)
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for connect-failed notice")
		}
	}
}

func TestBootstrapDrivesConnect(t *testing.T) {
	s := NewSession(&config.Config{DisplayName: "Me"})
	defer s.Close()

	// No reference is a pure no-op; a real one reaches the connect path,
	// which fails here because the session was never opened.
	Bootstrap(s, "not a join reference")
	Bootstrap(s, "https://beam.example.com/#/join/ghost-peer?mode=direct")

	expectConnectFailed(t, s, "ghost-peer")
}

func TestWatchJoinRefs(t *testing.T) {
	s := NewSession(&config.Config{DisplayName: "Me"})
	defer s.Close()

	refs := make(chan string, 2)
	WatchJoinRefs(s, refs)
	refs <- "garbage"
	refs <- "#/join/quiet-crane-7?mode=group"
	close(refs)

	expectConnectFailed(t, s, "quiet-crane-7")
}
