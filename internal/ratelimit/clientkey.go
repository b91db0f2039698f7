package ratelimit

import (
	"net/http"
	"regexp"
	"strings"
)

// UnknownClient is the shared key for requests without a usable IP header.
const UnknownClient = "unknown"

// clientIPHeaders are consulted in order; the first header whose first
// comma-separated token looks like an IP address wins.
var clientIPHeaders = []string{
	"X-Forwarded-For",
	"X-Real-Ip",
	"X-Client-Ip",
	"Cf-Connecting-Ip",
	"X-Forwarded",
	"Forwarded-For",
	"Forwarded",
}

var (
	ipv4Pattern = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)
	ipv6Pattern = regexp.MustCompile(`^([0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}$`)
)

// ClientKey derives the rate-limit bucket for a request.
func ClientKey(r *http.Request) string {
	if r == nil {
		return UnknownClient
	}
	for _, name := range clientIPHeaders {
		value := r.Header.Get(name)
		if value == "" {
			continue
		}
		candidate := strings.TrimSpace(strings.Split(value, ",")[0])
		if IsIPShaped(candidate) {
			return candidate
		}
	}
	return UnknownClient
}

// IsIPShaped reports whether value looks like a dotted IPv4 address or a
// fully expanded IPv6 address.
func IsIPShaped(value string) bool {
	return ipv4Pattern.MatchString(value) || ipv6Pattern.MatchString(value)
}

// MaskKey hides the middle of an address for logging.
func MaskKey(key string) string {
	if key == "" || key == UnknownClient {
		return key
	}
	if strings.Contains(key, ".") {
		parts := strings.Split(key, ".")
		if len(parts) == 4 {
			return parts[0] + "." + parts[1] + ".*." + parts[3]
		}
	}
	if strings.Contains(key, ":") {
		parts := strings.Split(key, ":")
		if len(parts) > 2 {
			return parts[0] + ":" + parts[1] + ":***:" + parts[len(parts)-1]
		}
	}
	return "***"
}
