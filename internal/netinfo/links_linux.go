//go:build linux

package netinfo

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

func listLinks() ([]link, error) {
	nlLinks, err := netlink.LinkList()
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	out := make([]link, 0, len(nlLinks))
	for _, nl := range nlLinks {
		attrs := nl.Attrs()
		l := link{
			name:     attrs.Name,
			mac:      attrs.HardwareAddr,
			up:       attrs.Flags&net.FlagUp != 0 && attrs.OperState != netlink.OperDown,
			loopback: attrs.Flags&net.FlagLoopback != 0,
		}
		addrs, err := netlink.AddrList(nl, netlink.FAMILY_ALL)
		if err != nil {
			return nil, fmt.Errorf("failed to list addresses of %s: %w", attrs.Name, err)
		}
		for _, a := range addrs {
			l.addrs = append(l.addrs, a.IPNet)
		}
		out = append(out, l)
	}
	return out, nil
}
