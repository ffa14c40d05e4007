package hostmem

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func total() (uint64, error) {
	size, err := unix.SysctlUint64("hw.memsize")
	if err != nil {
		return 0, errors.Wrap(err, "sysctl hw.memsize")
	}
	return size, nil
}
