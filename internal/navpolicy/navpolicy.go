// Package navpolicy decides whether a surface may leave its configured URL.
package navpolicy

import (
	"net/url"
	"strings"
)

// Policy is the allowNavigation setting.
type Policy string

const (
	Restricted Policy = "restricted"
	SameOrigin Policy = "same-origin"
	Open       Policy = "open"
)

// Parse maps a config value to a Policy, defaulting to Restricted.
func Parse(s string) Policy {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case SameOrigin:
		return SameOrigin
	case Open:
		return Open
	default:
		return Restricted
	}
}

// Allowed reports whether a top-level navigation from the site URL home to
// target is permitted. Restricted allows only the same origin and path
// (query and fragment may change); SameOrigin allows any path on the same
// scheme, host and port.
func (p Policy) Allowed(home, target string) bool {
	if p == Open {
		return true
	}
	h, err := url.Parse(home)
	if err != nil {
		return false
	}
	t, err := url.Parse(target)
	if err != nil {
		return false
	}
	// Non-network schemes (about:blank, data:) never leave the surface.
	if t.Scheme == "about" || t.Scheme == "data" || t.Scheme == "blob" {
		return true
	}
	if !sameOrigin(h, t) {
		return false
	}
	if p == SameOrigin {
		return true
	}
	return trimPath(h.Path) == trimPath(t.Path)
}

func sameOrigin(a, b *url.URL) bool {
	return strings.EqualFold(a.Scheme, b.Scheme) &&
		strings.EqualFold(a.Hostname(), b.Hostname()) &&
		port(a) == port(b)
}

func port(u *url.URL) string {
	if p := u.Port(); p != "" {
		return p
	}
	switch strings.ToLower(u.Scheme) {
	case "http":
		return "80"
	case "https":
		return "443"
	}
	return ""
}

func trimPath(p string) string {
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return "/"
	}
	return p
}

// SameDocument reports whether two URLs point at the same page, ignoring a
// trailing slash and the fragment. The pool uses it to detect drift.
func SameDocument(a, b string) bool {
	return normalize(a) == normalize(b)
}

func normalize(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimSuffix(raw, "/")
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	return u.String()
}
