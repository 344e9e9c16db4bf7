//go:build linux

package probe

import (
	"golang.org/x/sys/unix"

	"github.com/KilimcininKorOglu/sondaj/internal/endpoint"
)

// bindToInterface binds fd to iface via SO_BINDTODEVICE, falling back to
// an address bind if the device bind is refused (e.g. inside some
// containerized environments where CAP_NET_RAW is present but
// CAP_NET_ADMIN is not).
func bindToInterface(fd int, iface string, family endpoint.Family) error {
	if iface == "" {
		return nil
	}
	if err := unix.BindToDevice(fd, iface); err == nil {
		return nil
	}
	return bindToInterfaceAddress(fd, iface, family)
}
