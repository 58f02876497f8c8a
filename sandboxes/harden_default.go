//go:build !linux

package sandboxes

import "github.com/reusee/rlm/logs"

func harden(logger logs.Logger) error {
	logger.Warn("filesystem restriction is only supported on linux")
	return nil
}
