// Package endpoint describes the address-family-aware source and
// destination of a probe.
package endpoint

import (
	"errors"
	"fmt"
	"net"
)

// Family identifies an IP address family.
type Family int

const (
	// FamilyV4 is IPv4.
	FamilyV4 Family = iota
	// FamilyV6 is IPv6.
	FamilyV6
)

// String returns the conventional short name for the family.
func (f Family) String() string {
	switch f {
	case FamilyV4:
		return "ipv4"
	case FamilyV6:
		return "ipv6"
	default:
		return "unknown"
	}
}

// ErrFamilyMismatch is returned when an address does not match the
// family it is being assigned to.
var ErrFamilyMismatch = errors.New("address does not match requested family")

// Endpoint is an address/port pair bound to a specific family. The zero
// value is not valid; construct via New.
type Endpoint struct {
	family Family
	addr   net.IP
	port   int
}

// New builds an Endpoint from an IP address and port, inferring the
// family from the address's natural form. IPv4-mapped IPv6 addresses
// are normalized to 4-byte form.
func New(addr net.IP, port int) (Endpoint, error) {
	if addr == nil {
		return Endpoint{}, fmt.Errorf("endpoint: nil address")
	}
	if port < 0 || port > 65535 {
		return Endpoint{}, fmt.Errorf("endpoint: port %d out of range", port)
	}

	if v4 := addr.To4(); v4 != nil {
		return Endpoint{family: FamilyV4, addr: v4, port: port}, nil
	}
	if v6 := addr.To16(); v6 != nil {
		return Endpoint{family: FamilyV6, addr: v6, port: port}, nil
	}
	return Endpoint{}, fmt.Errorf("endpoint: unrecognized address %v", addr)
}

// NewWithFamily builds an Endpoint, requiring addr to match the given
// family. Used when the family is already known (e.g. from interface
// selection) and a mismatch should be rejected rather than inferred.
func NewWithFamily(addr net.IP, port int, family Family) (Endpoint, error) {
	ep, err := New(addr, port)
	if err != nil {
		return Endpoint{}, err
	}
	if ep.family != family {
		return Endpoint{}, ErrFamilyMismatch
	}
	return ep, nil
}

// Family reports the endpoint's address family.
func (e Endpoint) Family() Family {
	return e.family
}

// IP returns the endpoint's address.
func (e Endpoint) IP() net.IP {
	return e.addr
}

// Port returns the current port.
func (e Endpoint) Port() int {
	return e.port
}

// WithPort returns a copy of the endpoint with the port replaced. The
// engine calls this once per probed port rather than mutating a shared
// endpoint in place.
func (e Endpoint) WithPort(port int) Endpoint {
	e.port = port
	return e
}

// IsIPv6 reports whether the endpoint is an IPv6 endpoint.
func (e Endpoint) IsIPv6() bool {
	return e.family == FamilyV6
}

// String renders the endpoint as "host:port".
func (e Endpoint) String() string {
	return net.JoinHostPort(e.addr.String(), fmt.Sprintf("%d", e.port))
}
