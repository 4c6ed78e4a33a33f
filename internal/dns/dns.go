package dns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

const (
	systemTimeout = 1 * time.Second
	raceTimeout   = 2 * time.Second
)

// fallbackServers are public resolvers raced when the system resolver
// cannot answer. Some networks block or break local DNS; the signal
// server must stay reachable anyway.
var fallbackServers = []string{
	"1.1.1.1",                // Cloudflare
	"1.0.0.1",                // Cloudflare
	"[2606:4700:4700::1111]", // Cloudflare
	"8.8.8.8",                // Google
	"8.8.4.4",                // Google
	"[2001:4860:4860::8888]", // Google
	"9.9.9.9",                // Quad9
	"149.112.112.112",        // Quad9
	"208.67.222.222",         // Cisco OpenDNS
	"208.67.220.220",         // Cisco OpenDNS
}

// Lookup resolves host to an IP, preferring the system resolver and
// racing the public fallbacks when it fails. IPv4 answers win over IPv6.
func Lookup(host string) (string, error) {
	if ip := net.ParseIP(host); ip != nil {
		return host, nil
	}

	if ip, err := systemLookup(host); err == nil {
		return ip, nil
	}

	return raceLookup(host)
}

func systemLookup(host string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), systemTimeout)
	defer cancel()

	var r net.Resolver
	ips, err := r.LookupHost(ctx, host)
	if err != nil {
		return "", err
	}
	return pickAddress(ips)
}

// raceLookup queries every fallback server concurrently and returns the
// first answer.
func raceLookup(host string) (string, error) {
	type answer struct {
		ip  string
		err error
	}

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()

	answers := make(chan answer, len(fallbackServers))
	for _, server := range fallbackServers {
		go func(server string) {
			ip, err := queryServer(ctx, host, server)
			answers <- answer{ip: ip, err: err}
		}(server)
	}

	failures := 0
	for range fallbackServers {
		select {
		case a := <-answers:
			if a.err == nil {
				return a.ip, nil
			}
			failures++
		case <-ctx.Done():
			return "", fmt.Errorf("resolve %s: fallback lookup timed out", host)
		}
	}
	return "", fmt.Errorf("resolve %s: all %d fallback servers failed", host, failures)
}

// queryServer resolves host against one specific DNS server.
func queryServer(ctx context.Context, host, server string) (string, error) {
	r := &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, net.JoinHostPort(server, "53"))
		},
	}

	ips, err := r.LookupHost(ctx, host)
	if err != nil {
		return "", err
	}
	return pickAddress(ips)
}

func pickAddress(ips []string) (string, error) {
	if len(ips) == 0 {
		return "", errors.New("no addresses returned")
	}
	for _, ip := range ips {
		if net.ParseIP(ip).To4() != nil {
			return ip, nil
		}
	}
	return ips[0], nil
}
