package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseHostPort splits an address into host and port. Supports
// "host:port" and bracketed IPv6 "[::1]:port".
func ParseHostPort(s string) (string, int, error) {
	if rest, ok := strings.CutPrefix(s, "["); ok {
		host, rest, found := strings.Cut(rest, "]")
		if !found {
			return "", 0, fmt.Errorf("invalid address %q: missing ']'", s)
		}
		portStr, ok := strings.CutPrefix(rest, ":")
		if !ok {
			return "", 0, fmt.Errorf("invalid address %q: missing port", s)
		}
		port, err := parsePort(s, portStr)
		if err != nil {
			return "", 0, err
		}
		return host, port, nil
	}

	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return "", 0, fmt.Errorf("invalid address %q: missing port", s)
	}
	host := s[:idx]
	if host == "" {
		return "", 0, fmt.Errorf("invalid address %q: missing host", s)
	}
	port, err := parsePort(s, s[idx+1:])
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}

func parsePort(addr, portStr string) (int, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port in %q", addr)
	}
	return port, nil
}
