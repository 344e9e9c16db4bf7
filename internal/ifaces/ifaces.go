// Package ifaces lists local network interfaces and their bound
// addresses, and lets the CLI pick a source endpoint for a scan.
package ifaces

import (
	"errors"
	"fmt"
	"net"

	"github.com/KilimcininKorOglu/sondaj/internal/endpoint"
)

// ErrNoSuchInterface is returned when the named interface does not exist.
var ErrNoSuchInterface = errors.New("no such interface")

// ErrNoAddressForFamily is returned when an interface has no address of
// the requested address family.
var ErrNoAddressForFamily = errors.New("interface has no address of the requested family")

// Info describes one local network interface: its name, up/loopback/
// multicast flags, and its bound IPv4/IPv6 addresses.
type Info struct {
	Name  string
	Flags net.Flags
	IPv4  []net.IP
	IPv6  []net.IP
}

// List returns Info for every local interface, in the order reported by
// net.Interfaces().
func List() ([]Info, error) {
	ifs, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	out := make([]Info, 0, len(ifs))
	for _, ifi := range ifs {
		info := Info{Name: ifi.Name, Flags: ifi.Flags}

		addrs, err := ifi.Addrs()
		if err != nil {
			out = append(out, info)
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			if v4 := ipNet.IP.To4(); v4 != nil {
				info.IPv4 = append(info.IPv4, v4)
			} else {
				info.IPv6 = append(info.IPv6, ipNet.IP)
			}
		}
		out = append(out, info)
	}
	return out, nil
}

// SourceEndpoint picks the source Endpoint for a scan: the first address
// on the named interface matching family, with port set to srcPort.
// Grounded on the teacher's getOutboundIP "first usable local address"
// pattern, but scoped to one named interface instead of the default
// route.
func SourceEndpoint(iface string, family endpoint.Family, srcPort int) (endpoint.Endpoint, error) {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return endpoint.Endpoint{}, fmt.Errorf("%w: %q", ErrNoSuchInterface, iface)
	}

	addrs, err := ifi.Addrs()
	if err != nil {
		return endpoint.Endpoint{}, fmt.Errorf("interface %q addrs: %w", iface, err)
	}

	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ep, err := endpoint.New(ipNet.IP, srcPort)
		if err != nil {
			continue
		}
		if ep.Family() == family {
			return ep, nil
		}
	}

	return endpoint.Endpoint{}, fmt.Errorf("%w: interface %q, family %v", ErrNoAddressForFamily, iface, family)
}
