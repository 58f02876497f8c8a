package sandboxes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reusee/rlm/debugs"
	"github.com/reusee/rlm/leaves"
	"github.com/reusee/rlm/logs"
	"github.com/reusee/rlm/metrics"
	"github.com/reusee/rlm/planners"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Execute runs a strategy program against document. Every failure of the program is reported in Result.Err.
type Execute func(ctx context.Context, document string, program planners.Program, query string) *Result

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

func (Module) Execute(
	ask leaves.Ask,
	timeout ExecutionTimeout,
	maxSteps MaxSteps,
	guard FallbackGuard,
	concurrency LeafConcurrency,
	safe Safe,
	harden Harden,
	tapEnabled TapEnabled,
	tap debugs.Tap,
	logger logs.Logger,
	newSpan logs.NewSpan,
	collectors *metrics.Collectors,
) Execute {
	return func(ctx context.Context, document string, program planners.Program, query string) (ret *Result) {
		ret = new(Result)
		t0 := time.Now()
		defer func() {
			ret.Duration = time.Since(t0)
		}()

		if safe {
			if err := harden(); err != nil {
				ret.Err = fmt.Errorf("harden: %w", err)
				logger.ErrorContext(ctx, "harden failed", "error", err)
				return
			}
		}

		ctx, _ = newSpan(ctx, "execute")
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout))
			defer cancel()
		}

		tb := &toolbox{
			ctx:         ctx,
			document:    document,
			query:       query,
			ask:         ask,
			guard:       bool(guard),
			concurrency: int(concurrency),
			logger:      logger,
			collectors:  collectors,
			newSpan:     newSpan,
		}
		predeclared := tb.predeclared()

		thread := &starlark.Thread{
			Name: "strategy",
			Print: func(_ *starlark.Thread, msg string) {
				logger.InfoContext(ctx, "strategy: "+msg)
			},
		}
		if maxSteps > 0 {
			thread.SetMaxExecutionSteps(uint64(maxSteps))
		}
		stop := context.AfterFunc(ctx, func() {
			thread.Cancel(context.Cause(ctx).Error())
		})
		defer stop()

		globals, err := run(thread, program, predeclared)

		ret.Answer = tb.answer()
		ret.Reported = len(tb.reports) > 0
		ret.LeafCalls = tb.leafCalls.Load()
		ret.FallbackApplied = tb.fallbackApplied
		ret.FallbackSkipped = err == nil && len(tb.unfiltered) > 0
		if ret.FallbackSkipped {
			logger.WarnContext(ctx, "keyword filter matched nothing and no leaf was asked afterwards",
				"chunks", len(tb.unfiltered),
			)
		}

		if err != nil {
			if cause := context.Cause(ctx); cause != nil && !errors.Is(err, cause) {
				err = errors.Join(err, cause)
			}
			ret.Err = err
			args := []any{
				"error", err,
			}
			var evalErr *starlark.EvalError
			if errors.As(err, &evalErr) {
				args = append(args, "backtrace", evalErr.Backtrace())
			}
			logger.ErrorContext(ctx, "strategy failed", args...)
		} else {
			logger.InfoContext(ctx, "strategy finished",
				"reported", ret.Reported,
				"leaf calls", ret.LeafCalls,
				"fallback", ret.FallbackApplied,
			)
		}

		if tapEnabled {
			values := make(map[string]any, len(predeclared)+len(globals)+2)
			for name, value := range predeclared {
				values[name] = value
			}
			for name, value := range globals {
				values[name] = value
			}
			values["RESULT"] = ret
			values["ask"] = func(chunk, query string) (bool, string) {
				verdict := ask(context.WithoutCancel(ctx), chunk, query)
				return verdict.Found, verdict.Answer
			}
			tap(ctx, "strategy", values)
		}

		return ret
	}
}

func run(thread *starlark.Thread, program planners.Program, predeclared starlark.StringDict) (globals starlark.StringDict, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return starlark.ExecFileOptions(fileOptions, thread, "strategy.star", string(program), predeclared)
}
