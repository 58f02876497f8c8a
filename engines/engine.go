package engines

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/reusee/rlm/generators"
	"github.com/reusee/rlm/logs"
	"github.com/reusee/rlm/metrics"
	"github.com/reusee/rlm/planners"
	"github.com/reusee/rlm/sandboxes"
)

// Engine answers queries about one document. It is not safe for concurrent use.
type Engine struct {
	document string
	state    State

	plan        planners.Plan
	execute     sandboxes.Execute
	countTokens generators.BPETokenCounter
	logger      logs.Logger
	newSpan     logs.NewSpan
	collectors  *metrics.Collectors
	output      Output
}

type Result struct {
	RunID   string
	Query   string
	Program planners.Program
	// Answer is empty unless Answered.
	Answer    string
	Answered  bool
	State     State
	Execution *sandboxes.Result
}

type NewEngine func(document string) *Engine

func (Module) NewEngine(
	plan planners.Plan,
	execute sandboxes.Execute,
	countTokens generators.BPETokenCounter,
	logger logs.Logger,
	newSpan logs.NewSpan,
	collectors *metrics.Collectors,
	output Output,
) NewEngine {
	return func(document string) *Engine {
		return &Engine{
			document:    document,
			state:       StateIdle,
			plan:        plan,
			execute:     execute,
			countTokens: countTokens,
			logger:      logger,
			newSpan:     newSpan,
			collectors:  collectors,
			output:      output,
		}
	}
}

func (e *Engine) State() State {
	return e.state
}

// Run plans a strategy for query and executes it.
// Only planning failures are returned as errors.
func (e *Engine) Run(ctx context.Context, query string) (*Result, error) {
	return e.run(ctx, query, "", true)
}

// RunProgram executes program without planning. A blank program is rejected with planners.ErrEmptyProgram.
func (e *Engine) RunProgram(ctx context.Context, query string, program planners.Program) (*Result, error) {
	return e.run(ctx, query, program, false)
}

func (e *Engine) run(ctx context.Context, query string, program planners.Program, plan bool) (ret *Result, err error) {
	ret = &Result{
		RunID: uuid.NewString(),
		Query: query,
	}
	ctx, _ = e.newSpan(ctx, "run")
	logger := e.logger.With("run", ret.RunID)
	defer func() {
		e.collectors.Runs.WithLabelValues(string(ret.State)).Inc()
		err = logs.WrapSpan(ctx, err)
	}()

	setState := func(state State) {
		logger.InfoContext(ctx, "state",
			"from", e.state,
			"to", state,
		)
		e.state = state
		ret.State = state
	}
	e.state = StateIdle
	ret.State = StateIdle

	args := []any{
		"query", query,
		"context runes", utf8.RuneCountInString(e.document),
	}
	if n, err := e.countTokens(e.document); err == nil {
		args = append(args, "context tokens", n)
	}
	logger.InfoContext(ctx, "processing", args...)

	if !plan && strings.TrimSpace(string(program)) == "" {
		setState(StateFailed)
		logger.ErrorContext(ctx, "no program given")
		return ret, fmt.Errorf("run: %w", planners.ErrEmptyProgram)
	}

	if plan {
		setState(StatePlanning)
		program, err = e.plan(ctx, query)
		if err != nil {
			setState(StateFailed)
			logger.ErrorContext(ctx, "planning failed", "error", err)
			return ret, fmt.Errorf("run: %w", err)
		}
	}
	ret.Program = program
	setState(StatePlanned)

	fmt.Fprintf(e.output, "\nStrategy program:\n%s\n%s\n%s\n\n", separator, program, separator)

	setState(StateExecuting)
	result := e.execute(ctx, e.document, program, query)
	ret.Execution = result
	setState(StateCompleted)

	if result.Reported {
		ret.Answered = true
		ret.Answer = result.Answer
		fmt.Fprintf(e.output, "\nFINAL ANSWER:\n%s\n", result.Answer)
	} else {
		fmt.Fprintf(e.output, "\nNo answer produced.\n")
	}

	return ret, nil
}
