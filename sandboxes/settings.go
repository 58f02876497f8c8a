package sandboxes

import (
	"time"

	"github.com/reusee/rlm/cmds"
	"github.com/reusee/rlm/configs"
	"github.com/reusee/rlm/vars"
)

var (
	timeoutFlag = cmds.Var[time.Duration]("-timeout")
	safeFlag    = cmds.Switch("-safe")
	tapFlag     = cmds.Switch("-tap")
)

// ExecutionTimeout bounds one program run, leaf calls included.
type ExecutionTimeout time.Duration

const DefaultExecutionTimeout = 10 * time.Minute

func (Module) ExecutionTimeout(
	loader configs.Loader,
) ExecutionTimeout {
	return ExecutionTimeout(vars.FirstNonZero(
		*timeoutFlag,
		configs.FirstDuration(loader, "execution_timeout"),
		DefaultExecutionTimeout,
	))
}

// MaxSteps caps Starlark execution steps. Zero means no cap.
type MaxSteps uint64

func (Module) MaxSteps(
	loader configs.Loader,
) MaxSteps {
	return MaxSteps(configs.First[uint64](loader, "max_steps"))
}

// FallbackGuard enables substituting the unfiltered chunks when a program fans out over nothing after an empty filter.
type FallbackGuard bool

func (Module) FallbackGuard(
	loader configs.Loader,
) FallbackGuard {
	return FallbackGuard(*vars.FirstNonZero(
		configs.First[*bool](loader, "fallback_guard"),
		vars.PtrTo(true),
	))
}

// LeafConcurrency limits in-flight leaf calls of one fan-out. Zero means unbounded.
type LeafConcurrency int

func (Module) LeafConcurrency(
	loader configs.Loader,
) LeafConcurrency {
	return LeafConcurrency(configs.First[int](loader, "leaf_concurrency"))
}

// Safe reports whether the -safe word was given.
type Safe bool

func (Module) Safe() Safe {
	return Safe(*safeFlag)
}

// TapEnabled reports whether the -tap word was given.
type TapEnabled bool

func (Module) TapEnabled() TapEnabled {
	return TapEnabled(*tapFlag)
}
