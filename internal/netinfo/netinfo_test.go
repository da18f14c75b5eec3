package netinfo

import (
	"errors"
	"net"
	"testing"
)

func mustCIDR(t *testing.T, s string) *net.IPNet {
	t.Helper()
	ip, n, err := net.ParseCIDR(s)
	if err != nil {
		t.Fatalf("ParseCIDR(%q) error: %v", s, err)
	}
	n.IP = ip
	return n
}

func TestSummarize(t *testing.T) {
	mac, _ := net.ParseMAC("52:54:00:12:34:56")
	links := []link{
		{name: "wlan0", up: false},
		{name: "lo", up: true, loopback: true, addrs: []*net.IPNet{mustCIDR(t, "127.0.0.1/8")}},
		{name: "eth0", up: true, mac: mac, addrs: []*net.IPNet{
			mustCIDR(t, "192.168.1.20/24"),
			mustCIDR(t, "fe80::5054:ff:fe12:3456/64"),
		}},
	}

	got := summarize(links)
	if len(got) != 2 {
		t.Fatalf("summarize() returned %d interfaces, want 2", len(got))
	}
	eth := got[0]
	if eth.Name != "eth0" || !eth.Up || eth.MAC != "52:54:00:12:34:56" {
		t.Fatalf("summarize()[0] = %+v", eth)
	}
	if len(eth.Addresses) != 1 || eth.Addresses[0] != "192.168.1.20/24" {
		t.Fatalf("eth0 addresses = %v, want [192.168.1.20/24]", eth.Addresses)
	}
	if got[1].Name != "wlan0" || got[1].Up || got[1].MAC != "" {
		t.Fatalf("summarize()[1] = %+v", got[1])
	}
}

func TestPowerMenu_DegradesOnErrors(t *testing.T) {
	c := NewCollector("1.2.3", nil)
	c.hostname = func() (string, error) { return "", errors.New("no hostname") }
	c.links = func() ([]link, error) { return nil, errors.New("netlink unavailable") }

	got := c.PowerMenu()
	if got.Version != "1.2.3" || got.Hostname != "" || got.Interfaces != nil {
		t.Fatalf("PowerMenu() = %+v", got)
	}
}

func TestPowerMenu(t *testing.T) {
	c := NewCollector("dev", nil)
	c.hostname = func() (string, error) { return "kiosk-lobby", nil }
	c.links = func() ([]link, error) {
		return []link{{name: "eth0", up: true}}, nil
	}

	got := c.PowerMenu()
	if got.Hostname != "kiosk-lobby" || len(got.Interfaces) != 1 {
		t.Fatalf("PowerMenu() = %+v", got)
	}
}
