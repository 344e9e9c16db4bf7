package probe

import "errors"

// Raw-socket and probe construction errors.
var (
	// ErrSocketOpen indicates the raw socket syscall itself failed,
	// typically insufficient privileges (CAP_NET_RAW / root).
	ErrSocketOpen = errors.New("raw socket open failed")

	// ErrBindInterface indicates the socket could not be bound to the
	// requested interface by any available mechanism.
	ErrBindInterface = errors.New("failed to bind socket to interface")

	// ErrSetNonblocking indicates the non-blocking mode syscall failed.
	ErrSetNonblocking = errors.New("failed to set socket non-blocking")

	// ErrSend indicates a sendto syscall failed.
	ErrSend = errors.New("raw socket send failed")

	// ErrPollInterrupted indicates a readiness poll was cut short by
	// signal delivery or context cancellation.
	ErrPollInterrupted = errors.New("poll interrupted by signal or cancellation")

	// ErrChecksumAlloc names the case of a checksum scratch buffer smaller
	// than the segment being checksummed. No function in this package
	// returns it: ChecksumWithPseudoHeader panics on a too-short scratch,
	// and the ProbeContext constructor sizes its arena so that cannot
	// happen.
	ErrChecksumAlloc = errors.New("checksum scratch buffer too small")

	// ErrUnsupportedPlatform indicates raw-socket construction was
	// attempted on a platform without a usable bind mechanism (Windows).
	ErrUnsupportedPlatform = errors.New("raw sockets are not supported on this platform")

	// errWouldBlock is the internal signal that RecvFrom had nothing to
	// read; the engine treats it as "nothing now", not an error.
	errWouldBlock = errors.New("would block")
)

// IsWouldBlock reports whether err is the internal non-blocking-read
// sentinel (no data available yet).
func IsWouldBlock(err error) bool {
	return errors.Is(err, errWouldBlock)
}
