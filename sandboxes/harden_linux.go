//go:build linux

package sandboxes

import (
	"fmt"
	"syscall"
	"unsafe"

	"github.com/reusee/rlm/logs"
	"golang.org/x/sys/unix"
)

// harden makes the whole filesystem read-only for every thread of this process with Landlock.
// Kernels without Landlock only get a warning.
// Builds with cgo cannot restrict all threads and get an error wrapping syscall.ENOTSUP.
func harden(logger logs.Logger) error {
	abi, _, errNo := unix.Syscall(
		unix.SYS_LANDLOCK_CREATE_RULESET,
		0, 0, unix.LANDLOCK_CREATE_RULESET_VERSION,
	)
	if errNo != 0 {
		switch errNo {
		case unix.ENOSYS, unix.EOPNOTSUPP, unix.ENOPKG, unix.EINVAL:
			logger.Warn("landlock unavailable, running without filesystem restriction", "error", errNo)
			return nil
		}
		return fmt.Errorf("landlock_create_ruleset(version): %w", errNo)
	}
	if abi < 1 {
		logger.Warn("landlock abi 0, running without filesystem restriction")
		return nil
	}

	readRights := uint64(unix.LANDLOCK_ACCESS_FS_READ_FILE |
		unix.LANDLOCK_ACCESS_FS_READ_DIR)
	handled := readRights |
		unix.LANDLOCK_ACCESS_FS_EXECUTE |
		unix.LANDLOCK_ACCESS_FS_WRITE_FILE |
		unix.LANDLOCK_ACCESS_FS_REMOVE_DIR |
		unix.LANDLOCK_ACCESS_FS_REMOVE_FILE |
		unix.LANDLOCK_ACCESS_FS_MAKE_CHAR |
		unix.LANDLOCK_ACCESS_FS_MAKE_DIR |
		unix.LANDLOCK_ACCESS_FS_MAKE_REG |
		unix.LANDLOCK_ACCESS_FS_MAKE_SOCK |
		unix.LANDLOCK_ACCESS_FS_MAKE_FIFO |
		unix.LANDLOCK_ACCESS_FS_MAKE_BLOCK |
		unix.LANDLOCK_ACCESS_FS_MAKE_SYM
	if abi >= 2 {
		handled |= unix.LANDLOCK_ACCESS_FS_REFER
	}
	if abi >= 3 {
		handled |= unix.LANDLOCK_ACCESS_FS_TRUNCATE
	}

	attr := unix.LandlockRulesetAttr{
		Access_fs: handled,
	}
	ruleset, _, errNo := unix.Syscall(
		unix.SYS_LANDLOCK_CREATE_RULESET,
		uintptr(unsafe.Pointer(&attr)),
		unsafe.Sizeof(attr),
		0,
	)
	if errNo != 0 {
		return fmt.Errorf("landlock_create_ruleset: %w", errNo)
	}
	defer unix.Close(int(ruleset))

	rootFd, err := unix.Open("/", unix.O_PATH|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("open root: %w", err)
	}
	defer unix.Close(rootFd)
	beneath := unix.LandlockPathBeneathAttr{
		Parent_fd:      int32(rootFd),
		Allowed_access: readRights,
	}
	if _, _, errNo := unix.Syscall(
		unix.SYS_LANDLOCK_ADD_RULE,
		ruleset,
		unix.LANDLOCK_RULE_PATH_BENEATH,
		uintptr(unsafe.Pointer(&beneath)),
	); errNo != 0 {
		return fmt.Errorf("add root rule: %w", errNo)
	}

	// both calls act on the calling thread only, so they are repeated on every thread
	if _, _, errNo := syscall.AllThreadsSyscall(
		syscall.SYS_PRCTL,
		unix.PR_SET_NO_NEW_PRIVS,
		1, 0,
	); errNo != 0 {
		if errNo == syscall.ENOTSUP {
			return fmt.Errorf("prctl no_new_privs: all-threads syscall unavailable in cgo builds, build with CGO_ENABLED=0: %w", errNo)
		}
		return fmt.Errorf("prctl no_new_privs: %w", errNo)
	}
	if _, _, errNo := syscall.AllThreadsSyscall(
		unix.SYS_LANDLOCK_RESTRICT_SELF,
		ruleset,
		0, 0,
	); errNo != 0 {
		return fmt.Errorf("landlock_restrict_self: %w", errNo)
	}

	logger.Info("filesystem restricted to read-only", "abi", abi)
	return nil
}
