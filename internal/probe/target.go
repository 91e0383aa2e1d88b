package probe

import (
	"regexp"
	"strings"
)

var schemePrefix = regexp.MustCompile(`^[a-zA-Z0-9+.-]+://`)

const (
	defaultHTTPPort  = "80"
	defaultHTTPSPort = "443"
)

// ParseTarget turns a reverse_proxy upstream into a dialable host and port.
//
// A leading "scheme://" is stripped, the rest is split on the first ":".
// Without a port, 443 is used for https:// targets and 80 otherwise. Only the
// leading digits of the port are kept, so "host:8080/path" dials 8080. A port
// that does not start with a digit, such as "{$APP_PORT}", is returned as is
// and never defaulted.
func ParseTarget(target string) (host, port string) {
	rest := schemePrefix.ReplaceAllString(target, "")

	host, raw, _ := strings.Cut(rest, ":")
	port = leadingDigits(raw)
	if port == "" && raw != "" {
		return host, raw
	}
	if port == "" {
		if strings.HasPrefix(target, "https://") {
			port = defaultHTTPSPort
		} else {
			port = defaultHTTPPort
		}
	}
	return host, port
}

func leadingDigits(s string) string {
	for i, r := range s {
		if r < '0' || r > '9' {
			return s[:i]
		}
	}
	return s
}

func validPort(port string) bool {
	return port != "" && leadingDigits(port) == port
}
