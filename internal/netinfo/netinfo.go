// Package netinfo gathers the host facts shown in the power menu.
package netinfo

import (
	"log/slog"
	"net"
	"os"
	"sort"

	"github.com/1broseidon/kiosk/internal/kiosk"
)

// link is one interface as read from the OS.
type link struct {
	name     string
	mac      net.HardwareAddr
	up       bool
	loopback bool
	addrs    []*net.IPNet
}

// Collector builds power menu data on demand.
type Collector struct {
	version  string
	hostname func() (string, error)
	links    func() ([]link, error)
	logger   *slog.Logger
}

// NewCollector returns a collector reporting version.
func NewCollector(version string, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Collector{
		version:  version,
		hostname: os.Hostname,
		links:    listLinks,
		logger:   logger,
	}
}

// PowerMenu implements kiosk.PowerInfoFunc. Failures degrade to empty
// fields rather than hiding the menu.
func (c *Collector) PowerMenu() kiosk.PowerMenuData {
	data := kiosk.PowerMenuData{Version: c.version}

	if h, err := c.hostname(); err != nil {
		c.logger.Warn("failed to read hostname", "error", err)
	} else {
		data.Hostname = h
	}

	links, err := c.links()
	if err != nil {
		c.logger.Warn("failed to list network interfaces", "error", err)
		return data
	}
	data.Interfaces = summarize(links)
	return data
}

// summarize drops loopback devices and orders the rest by name.
func summarize(links []link) []kiosk.InterfaceInfo {
	out := make([]kiosk.InterfaceInfo, 0, len(links))
	for _, l := range links {
		if l.loopback {
			continue
		}
		info := kiosk.InterfaceInfo{Name: l.name, Up: l.up}
		if len(l.mac) > 0 {
			info.MAC = l.mac.String()
		}
		for _, a := range l.addrs {
			if a == nil || a.IP.IsLinkLocalUnicast() {
				continue
			}
			info.Addresses = append(info.Addresses, a.String())
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
