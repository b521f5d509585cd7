package utils

import (
	"net/url"
	"strings"
)

func IsLocalhost(serverURL string) bool {
	u, err := url.Parse(serverURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}

// DisplayHost strips the scheme from a server URL for compact status lines.
func DisplayHost(serverURL string) string {
	u, err := url.Parse(serverURL)
	if err != nil || u.Host == "" {
		return strings.TrimPrefix(strings.TrimPrefix(serverURL, "http://"), "https://")
	}
	return u.Host
}
