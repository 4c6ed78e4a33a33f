package cmd

import (
	"time"

	"github.com/klmtseng/BEAM-P2P/internal/beam"
	"github.com/klmtseng/BEAM-P2P/internal/config"
	"github.com/klmtseng/BEAM-P2P/internal/ui"
)

const readyTimeout = 15 * time.Second

func loadConfig(opts config.Options) (*config.Config, error) {
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, beam.NewError("load config", err)
	}
	return cfg, nil
}

// openSession dials the signal server and blocks until the local peer
// identity has been assigned.
func openSession(cfg *config.Config) (*beam.Session, error) {
	stopSpinner := ui.RunConnectionSpinner("Connecting to signal server...")
	defer stopSpinner()

	sess := beam.NewSession(cfg)
	if err := sess.Open(); err != nil {
		sess.Close()
		return nil, err
	}

	deadline := time.After(readyTimeout)
	for {
		select {
		case n := <-sess.Notices():
			switch n := n.(type) {
			case beam.NoticeReady:
				stopSpinner()
				ui.PrintSuccessf("Online as %s", n.Identity)
				return sess, nil
			case beam.NoticeDegraded:
				sess.Close()
				return nil, beam.NewError("open session", beam.ErrSignalingDisconnected)
			}
		case <-deadline:
			sess.Close()
			return nil, beam.WrapError("open session", beam.ErrSignalingDisconnected,
				"no identity assigned in time")
		}
	}
}

// waitForBeam blocks until a connect attempt resolves either way.
func waitForBeam(sess *beam.Session, remote string) error {
	stopSpinner := ui.RunWaitingSpinner("Establishing beam...")
	defer stopSpinner()

	for {
		select {
		case n := <-sess.Notices():
			switch n := n.(type) {
			case beam.NoticeRoomOpened:
				return nil
			case beam.NoticeConnectFailed:
				if n.Remote == remote {
					return beam.NewPeerError("connect", n.Remote, n.Err)
				}
			}
		case <-time.After(connectWaitLimit):
			return beam.NewPeerError("connect", remote, beam.ErrPeerUnreachable)
		}
	}
}

// connectWaitLimit sits above the session's own 12s attempt timeout so the
// session reports the failure first.
const connectWaitLimit = 15 * time.Second
