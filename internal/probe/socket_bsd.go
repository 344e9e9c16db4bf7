//go:build darwin || freebsd || netbsd || openbsd

package probe

import "github.com/KilimcininKorOglu/sondaj/internal/endpoint"

// bindToInterface has no SO_BINDTODEVICE equivalent on these platforms, so
// it binds directly to the interface's own address.
func bindToInterface(fd int, iface string, family endpoint.Family) error {
	if iface == "" {
		return nil
	}
	return bindToInterfaceAddress(fd, iface, family)
}
