package sandboxes

import (
	"sync"

	"github.com/reusee/rlm/logs"
)

// Harden restricts the process once. Later calls return the first result.
type Harden func() error

func (Module) Harden(
	logger logs.Logger,
) Harden {
	return sync.OnceValue(func() error {
		return harden(logger)
	})
}
