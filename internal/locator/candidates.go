// Package locator finds a reachable API origin for the site and delivers
// requests to it, falling back through every plausible origin.
package locator

import (
	"net"
	"net/url"
	"strings"
)

// PageLocation is the effective location of the page (or process) that
// talks to the API.
type PageLocation struct {
	Scheme   string
	Hostname string
	Port     string
}

var defaultPage = PageLocation{Scheme: "http", Hostname: "localhost"}

// ParsePageLocation extracts scheme, hostname and port from a page URL.
// Anything unusable yields http://localhost.
func ParsePageLocation(raw string) PageLocation {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultPage
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return defaultPage
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "" {
		scheme = "http"
	}
	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	return PageLocation{Scheme: scheme, Hostname: u.Hostname(), Port: port}
}

// Origin returns scheme://host[:port] for the page as-is.
func (p PageLocation) Origin() string {
	return p.withPort(p.Port)
}

func (p PageLocation) withPort(port string) string {
	if p.Hostname == "" {
		return defaultPage.withPort(port)
	}
	scheme := p.Scheme
	if scheme == "" {
		scheme = "http"
	}
	host := p.Hostname
	if port != "" {
		host = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return scheme + "://" + host
}

// BuildCandidates returns the ordered, de-duplicated origins to try:
// the configured origin, then the dev backend port on the page's host when
// the page is served from a known dev front-end port, then the page origin.
// The result always contains the page origin.
func BuildCandidates(configured string, page PageLocation, devPorts map[string]string) []string {
	var ordered []string

	if trimmed := strings.TrimRight(strings.TrimSpace(configured), "/"); trimmed != "" {
		ordered = append(ordered, trimmed)
	}
	if backendPort, ok := devPorts[page.Port]; ok && backendPort != "" {
		ordered = append(ordered, page.withPort(backendPort))
	}
	ordered = append(ordered, page.Origin())

	return dedupe(ordered)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
