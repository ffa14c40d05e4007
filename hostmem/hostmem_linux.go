package hostmem

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func total() (uint64, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, errors.Wrap(err, "sysinfo")
	}
	// Totalram is in units of info.Unit bytes.
	return uint64(info.Totalram) * uint64(info.Unit), nil
}
