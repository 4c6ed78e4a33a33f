package dns

import "testing"

func TestLookupPassesThroughLiteralIPs(t *testing.T) {
	for _, ip := range []string{"127.0.0.1", "::1", "192.0.2.7"} {
		got, err := Lookup(ip)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", ip, err)
		}
		if got != ip {
			t.Fatalf("Lookup(%q) = %q", ip, got)
		}
	}
}

func TestPickAddressPrefersIPv4(t *testing.T) {
	ip, err := pickAddress([]string{"2001:db8::1", "192.0.2.7"})
	if err != nil || ip != "192.0.2.7" {
		t.Fatalf("pickAddress = %q, %v", ip, err)
	}

	ip, err = pickAddress([]string{"2001:db8::1"})
	if err != nil || ip != "2001:db8::1" {
		t.Fatalf("pickAddress v6-only = %q, %v", ip, err)
	}

	if _, err := pickAddress(nil); err == nil {
		t.Fatal("empty answer must error")
	}
}
