//go:build windows

package probe

import (
	"context"
	"time"

	"github.com/KilimcininKorOglu/sondaj/internal/endpoint"
)

// RawSocket is unimplemented on Windows: raw sockets are not exposed the
// same way the Unix build uses them here (SIO_RCVALL requires a separate
// administrator-mode setup this tool does not attempt). Every constructor
// returns ErrUnsupportedPlatform.
type RawSocket struct{}

// OpenRawSocket always fails on Windows.
func OpenRawSocket(iface string, family endpoint.Family, protocol int) (*RawSocket, error) {
	return nil, ErrUnsupportedPlatform
}

func (s *RawSocket) Close() error { return nil }

func (s *RawSocket) SendTo(b []byte, dst endpoint.Endpoint) error {
	return ErrUnsupportedPlatform
}

func (s *RawSocket) RecvFrom(buf []byte) (int, endpoint.Endpoint, error) {
	return 0, endpoint.Endpoint{}, ErrUnsupportedPlatform
}

func (s *RawSocket) PollReadable(ctx context.Context, timeout time.Duration) (bool, error) {
	return false, ErrUnsupportedPlatform
}
