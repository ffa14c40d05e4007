package gocuda

import (
	"os"
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

// Environment knobs read by callers outside this package, queried through
// the memoized accessors below. EnvDefaultDevice is declared next to New,
// which is its only reader.
const (
	// EnvMaxJITLen overrides the upper bound on entries in the JIT kernel
	// cache. Defaults to 100.
	EnvMaxJITLen = "GOCUDA_MAX_JIT_LEN"

	// EnvSynchronousCalls, when set to "1", asks the dispatch layer to
	// synchronize after every operation instead of batching asynchronously.
	EnvSynchronousCalls = "GOCUDA_SYNCHRONOUS_CALLS"
)

const defaultMaxJITLen = 100

var (
	maxJITOnce sync.Once
	maxJITLen  int
	maxJITErr  error

	syncCallsOnce sync.Once
	syncCalls     bool
)

// MaxJITLen returns the maximum number of entries the JIT kernel cache may
// hold, read once from EnvMaxJITLen. A malformed override is reported as an
// error, there is no silent fallback, and the outcome (error included) is
// memoized for the life of the process.
func MaxJITLen() (int, error) {
	maxJITOnce.Do(func() {
		maxJITLen, maxJITErr = parseMaxJITLen(os.Getenv(EnvMaxJITLen))
	})
	return maxJITLen, maxJITErr
}

func parseMaxJITLen(value string) (int, error) {
	if value == "" {
		return defaultMaxJITLen, nil
	}
	length, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %s", EnvMaxJITLen)
	}
	return length, nil
}

// SynchronousCalls reports whether EnvSynchronousCalls was "1" when first
// queried. Memoized for the life of the process.
func SynchronousCalls() bool {
	syncCallsOnce.Do(func() {
		syncCalls = os.Getenv(EnvSynchronousCalls) == "1"
	})
	return syncCalls
}
