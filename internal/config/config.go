package config

import (
	"errors"
	"fmt"
	"os"
)

// ErrRelayWithoutTURN rejects force-relay mode when no TURN server is
// configured to relay through.
var ErrRelayWithoutTURN = errors.New("force relay requires a TURN server")

// Default configuration values (production)
const (
	DefaultDomain   = "beam.qzz.io"
	DefaultSTUN     = "stun:stun.l.google.com:19302"
	DefaultTURN     = "" // Optional, empty by default
	DefaultTURNUser = "beam"
	DefaultTURNPass = "beam-secret"
	DefaultName     = "Me"
)

// Config holds application configuration
type Config struct {
	// Domain is the signal server domain
	Domain string

	// WebSocketURL is constructed from domain
	WebSocketURL string

	// DisplayName is the label attached to outgoing messages
	DisplayName string

	// ICE servers for WebRTC
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
	ForceRelay bool
}

// Options for loading config with CLI flag overrides
type Options struct {
	Domain      string
	DisplayName string
	STUNServer  string
	TURNServer  string
	TURNUser    string
	TURNPass    string
	ForceRelay  bool
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables
// 3. Hardcoded defaults - lowest priority
func Load(opts Options) (*Config, error) {
	domain := firstNonEmpty(opts.Domain, os.Getenv("BEAM_DOMAIN"), DefaultDomain)
	name := firstNonEmpty(opts.DisplayName, os.Getenv("BEAM_NAME"), DefaultName)
	stunServer := firstNonEmpty(opts.STUNServer, os.Getenv("STUN_SERVER"), DefaultSTUN)
	turnServer := firstNonEmpty(opts.TURNServer, os.Getenv("TURN_SERVER"), DefaultTURN)
	turnUser := firstNonEmpty(opts.TURNUser, os.Getenv("TURN_USERNAME"), DefaultTURNUser)
	turnPass := firstNonEmpty(opts.TURNPass, os.Getenv("TURN_PASSWORD"), DefaultTURNPass)

	if opts.ForceRelay && turnServer == "" {
		return nil, ErrRelayWithoutTURN
	}

	wsURL := fmt.Sprintf("wss://%s/ws", domain)

	return &Config{
		Domain:       domain,
		WebSocketURL: wsURL,
		DisplayName:  name,
		STUNServer:   stunServer,
		TURNServer:   turnServer,
		TURNUser:     turnUser,
		TURNPass:     turnPass,
		ForceRelay:   opts.ForceRelay,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// GetJoinLink returns the webapp join reference for a peer identity and mode
func (c *Config) GetJoinLink(identity, mode string) string {
	return fmt.Sprintf("https://%s/#/join/%s?mode=%s", c.Domain, identity, mode)
}

// GetSTUNServers returns STUN server URLs as strings
func (c *Config) GetSTUNServers() []string {
	return []string{c.STUNServer}
}

// GetTURNServers returns TURN server URLs if configured
func (c *Config) GetTURNServers() []string {
	if c.TURNServer == "" {
		return nil
	}
	return []string{
		fmt.Sprintf("%s:3478?transport=udp", c.TURNServer),
		fmt.Sprintf("%s:3478?transport=tcp", c.TURNServer),
		fmt.Sprintf("turns:%s:5349?transport=tcp", c.TURNServer),
	}
}

// GetTURNCredentials returns TURN username and password
func (c *Config) GetTURNCredentials() (string, string) {
	return c.TURNUser, c.TURNPass
}
