package probe

// IP protocol numbers used to open the raw sockets this scanner needs.
// Kept as plain constants (rather than importing golang.org/x/sys/unix
// into callers) so internal/scan can select a protocol without pulling
// in a Unix-only package itself.
const (
	ProtocolTCP    = 6
	ProtocolUDP    = 17
	ProtocolICMP   = 1
	ProtocolICMPv6 = 58
)
