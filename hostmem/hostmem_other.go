//go:build !linux && !darwin && !windows

package hostmem

import (
	"runtime"

	"github.com/pkg/errors"
)

func total() (uint64, error) {
	return 0, errors.Errorf("host memory inspection not supported on %s", runtime.GOOS)
}
