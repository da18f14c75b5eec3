//go:build !linux

package netinfo

import (
	"fmt"
	"net"
)

func listLinks() ([]link, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}

	out := make([]link, 0, len(ifaces))
	for _, iface := range ifaces {
		l := link{
			name:     iface.Name,
			mac:      iface.HardwareAddr,
			up:       iface.Flags&net.FlagUp != 0,
			loopback: iface.Flags&net.FlagLoopback != 0,
		}
		addrs, err := iface.Addrs()
		if err != nil {
			return nil, fmt.Errorf("failed to list addresses of %s: %w", iface.Name, err)
		}
		for _, a := range addrs {
			if ipn, ok := a.(*net.IPNet); ok {
				l.addrs = append(l.addrs, ipn)
			}
		}
		out = append(out, l)
	}
	return out, nil
}
