package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHostPort(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"plain host", "10.0.0.5:80", "10.0.0.5", 80, false},
		{"dns name", "db.internal:5432", "db.internal", 5432, false},
		{"bracketed ipv6", "[::1]:8080", "::1", 8080, false},
		{"bracketed ipv6 full", "[fe80::1%eth0]:443", "fe80::1%eth0", 443, false},
		{"missing port", "10.0.0.5", "", 0, true},
		{"missing host", ":80", "", 0, true},
		{"bad port", "host:abc", "", 0, true},
		{"port zero", "host:0", "", 0, true},
		{"port too big", "host:70000", "", 0, true},
		{"unclosed bracket", "[::1:80", "", 0, true},
		{"bracket without port", "[::1]", "", 0, true},
		{"empty", "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := ParseHostPort(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantPort, port)
		})
	}
}
