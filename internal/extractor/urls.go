package extractor

import (
	"net/url"
	"strings"
)

// supportedHosts are the hosts ValidateURL accepts.
var supportedHosts = []string{
	"youtube.com",
	"www.youtube.com",
	"m.youtube.com",
	"youtu.be",
}

// ValidateURL reports whether raw is an absolute link on a supported host.
func ValidateURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range supportedHosts {
		if host == h {
			return true
		}
	}
	return false
}

// VideoID extracts the video identifier from a watch or short link.
func VideoID(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case host == "youtu.be":
		return strings.Trim(u.Path, "/")
	case strings.HasSuffix(host, "youtube.com"):
		if v := u.Query().Get("v"); v != "" {
			return v
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if rest, ok := strings.CutPrefix(u.Path, prefix); ok {
				return strings.Trim(rest, "/")
			}
		}
	}
	return ""
}
