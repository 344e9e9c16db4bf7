//go:build !windows

package probe

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/sys/unix"

	"github.com/KilimcininKorOglu/sondaj/internal/endpoint"
)

// RawSocket is a non-blocking raw socket bound to a network interface,
// scoped to one address family and transport protocol.
type RawSocket struct {
	fd     int
	family endpoint.Family
	closed bool
}

// OpenRawSocket opens a raw socket for family/protocol and binds it to
// iface. On Linux this uses SO_BINDTODEVICE; on other Unix variants it
// falls back to binding the socket to the interface's first address of
// the matching family.
func OpenRawSocket(iface string, family endpoint.Family, protocol int) (*RawSocket, error) {
	fd, err := unix.Socket(afFamily(family), unix.SOCK_RAW, protocol)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSocketOpen, err)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: %v", ErrSetNonblocking, err)
	}

	if err := bindToInterface(fd, iface, family); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: %v", ErrBindInterface, err)
	}

	return &RawSocket{fd: fd, family: family}, nil
}

// Close releases the underlying descriptor. Safe to call more than once.
func (s *RawSocket) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return unix.Close(s.fd)
}

// SendTo writes b to dst.
func (s *RawSocket) SendTo(b []byte, dst endpoint.Endpoint) error {
	sa, err := sockaddrFor(dst)
	if err != nil {
		return err
	}
	if err := unix.Sendto(s.fd, b, 0, sa); err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	return nil
}

// RecvFrom reads one datagram into buf. Returns errWouldBlock (check with
// IsWouldBlock) when nothing is available right now.
func (s *RawSocket) RecvFrom(buf []byte) (int, endpoint.Endpoint, error) {
	n, from, err := unix.Recvfrom(s.fd, buf, 0)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, endpoint.Endpoint{}, errWouldBlock
		}
		return 0, endpoint.Endpoint{}, err
	}

	src, err := endpointFromSockaddr(from, s.family)
	if err != nil {
		return 0, endpoint.Endpoint{}, err
	}
	return n, src, nil
}

// PollReadable waits up to timeout for the socket to become readable.
// Returns (false, ErrPollInterrupted) if ctx is cancelled while polling.
func (s *RawSocket) PollReadable(ctx context.Context, timeout time.Duration) (bool, error) {
	if timeout < 0 {
		timeout = 0
	}

	fds := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		if err == unix.EINTR {
			if ctx.Err() != nil {
				return false, ErrPollInterrupted
			}
			return false, nil
		}
		return false, err
	}

	if ctx.Err() != nil {
		return false, ErrPollInterrupted
	}

	return n > 0 && fds[0].Revents&unix.POLLIN != 0, nil
}

func afFamily(f endpoint.Family) int {
	if f == endpoint.FamilyV6 {
		return unix.AF_INET6
	}
	return unix.AF_INET
}

func sockaddrFor(ep endpoint.Endpoint) (unix.Sockaddr, error) {
	if ep.IsIPv6() {
		var addr [16]byte
		copy(addr[:], ep.IP().To16())
		return &unix.SockaddrInet6{Port: ep.Port(), Addr: addr}, nil
	}
	ip4 := ep.IP().To4()
	if ip4 == nil {
		return nil, fmt.Errorf("endpoint %v is not a valid IPv4 address", ep)
	}
	var addr [4]byte
	copy(addr[:], ip4)
	return &unix.SockaddrInet4{Port: ep.Port(), Addr: addr}, nil
}

func endpointFromSockaddr(sa unix.Sockaddr, family endpoint.Family) (endpoint.Endpoint, error) {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return endpoint.New(net.IP(v.Addr[:]), v.Port)
	case *unix.SockaddrInet6:
		return endpoint.New(net.IP(v.Addr[:]), v.Port)
	default:
		return endpoint.Endpoint{}, fmt.Errorf("unsupported sockaddr type for family %v", family)
	}
}

// bindToInterfaceAddress binds fd to the first address of iface matching
// family. Used directly on non-Linux Unix variants, and as the fallback
// path when SO_BINDTODEVICE is unavailable on Linux.
func bindToInterfaceAddress(fd int, iface string, family endpoint.Family) error {
	ifi, err := net.InterfaceByName(iface)
	if err != nil {
		return fmt.Errorf("interface %q: %w", iface, err)
	}
	addrs, err := ifi.Addrs()
	if err != nil {
		return fmt.Errorf("interface %q addrs: %w", iface, err)
	}

	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ep, err := endpoint.New(ipNet.IP, 0)
		if err != nil {
			continue
		}
		if ep.Family() != family {
			continue
		}
		sa, err := sockaddrFor(ep)
		if err != nil {
			continue
		}
		return unix.Bind(fd, sa)
	}

	return fmt.Errorf("interface %q has no address of family %v", iface, family)
}
