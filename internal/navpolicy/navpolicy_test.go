package navpolicy

import "testing"

func TestAllowed(t *testing.T) {
	const home = "https://dash.example.com/board"
	tests := []struct {
		name   string
		policy Policy
		target string
		want   bool
	}{
		{"restricted same page", Restricted, "https://dash.example.com/board", true},
		{"restricted trailing slash", Restricted, "https://dash.example.com/board/", true},
		{"restricted query change", Restricted, "https://dash.example.com/board?tab=2#x", true},
		{"restricted other path", Restricted, "https://dash.example.com/admin", false},
		{"restricted other host", Restricted, "https://evil.example.com/board", false},
		{"same-origin other path", SameOrigin, "https://dash.example.com/admin", true},
		{"same-origin explicit default port", SameOrigin, "https://dash.example.com:443/x", true},
		{"same-origin other port", SameOrigin, "https://dash.example.com:8443/x", false},
		{"same-origin scheme change", SameOrigin, "http://dash.example.com/board", false},
		{"same-origin other host", SameOrigin, "https://other.example.com/", false},
		{"open anything", Open, "https://other.example.com/", true},
		{"about blank", Restricted, "about:blank", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Allowed(home, tt.target); got != tt.want {
				t.Fatalf("Allowed(%q) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := map[string]Policy{
		"":            Restricted,
		"restricted":  Restricted,
		"same-origin": SameOrigin,
		"OPEN":        Open,
		"bogus":       Restricted,
	}
	for in, want := range tests {
		if got := Parse(in); got != want {
			t.Fatalf("Parse(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSameDocument(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"https://a.example/x", "https://a.example/x/", true},
		{"https://a.example/x#top", "https://a.example/x", true},
		{"https://A.example/x", "https://a.example/x", true},
		{"https://a.example/x", "https://a.example/y", false},
		{"https://a.example/x?q=1", "https://a.example/x", false},
	}
	for _, tt := range tests {
		if got := SameDocument(tt.a, tt.b); got != tt.want {
			t.Fatalf("SameDocument(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
