package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"ipv4 keeps /24", "192.168.1.47", "192.168.1.0"},
		{"ipv4 network address unchanged", "10.0.0.0", "10.0.0.0"},
		{"ipv4-mapped ipv6 treated as ipv4", "::ffff:203.0.113.9", "203.0.113.0"},
		{"ipv6 keeps /48", "2001:db8:85a3::8a2e:370:7334", "2001:db8:85a3::"},
		{"ipv6 zone dropped", "fe80::1%eth0", "fe80::"},
		{"loopback v6", "::1", "::"},
		{"empty", "", "unknown"},
		{"unknown passthrough", "unknown", "unknown"},
		{"garbage", "not-an-ip", "invalid"},
		{"host:port is not an address", "192.168.1.47:8080", "invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnonymizeIP(tt.in))
		})
	}
}

func TestAnonymizeIP_SameNetworkCollapses(t *testing.T) {
	assert.Equal(t, AnonymizeIP("198.51.100.1"), AnonymizeIP("198.51.100.254"))
	assert.NotEqual(t, AnonymizeIP("198.51.100.1"), AnonymizeIP("198.51.101.1"))
}

func TestHashUserID(t *testing.T) {
	assert.Empty(t, HashUserID(""))
	assert.Len(t, HashUserID("user-123"), 16)
	assert.Equal(t, HashUserID("user-123"), HashUserID("user-123"))
	assert.NotEqual(t, HashUserID("user-123"), HashUserID("user-124"))
}
