package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/reusee/dscope"
	"github.com/reusee/rlm/cmds"
	"github.com/reusee/rlm/engines"
	"github.com/reusee/rlm/logs"
	"github.com/reusee/rlm/metrics"
	"github.com/reusee/rlm/modes"
	"github.com/reusee/rlm/planners"
	"github.com/reusee/rlm/rlmconfigs"
	"github.com/reusee/rlm/vars"
)

var (
	queryFlag       = cmds.Var[string]("query")
	fileFlag        = cmds.Var[string]("file")
	programFlag     = cmds.Var[string]("-program")
	metricsAddrFlag = cmds.Var[string]("-metrics-addr")
)

func main() {
	for _, path := range []string{".env", ".env.local"} {
		// missing files are fine, existing env wins
		_ = godotenv.Load(path)
	}

	cmds.Execute(os.Args[1:])

	if *queryFlag == "" {
		fmt.Fprintln(os.Stderr, `Error: query is required (use 'query "your question" file data.txt')`)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	scope := dscope.New(
		new(engines.Module),
		new(rlmconfigs.Module),
		modes.ForProduction(),
	)

	scope.Call(func(
		newEngine engines.NewEngine,
		serveMetrics metrics.Serve,
		logger logs.Logger,
	) {
		fatal := func(err error) {
			logger.Error("fatal", "error", err)
			cancel()
			os.Exit(1)
		}

		if *metricsAddrFlag != "" {
			go func() {
				if err := serveMetrics(ctx, *metricsAddrFlag); err != nil {
					logger.Error("metrics server", "error", err)
				}
			}()
		}

		document, err := engines.LoadDocument(vars.FirstNonZero(*fileFlag, "-"))
		if err != nil {
			fatal(err)
		}
		engine := newEngine(document)

		var result *engines.Result
		if *programFlag != "" {
			src, err := os.ReadFile(*programFlag)
			if err != nil {
				fatal(err)
			}
			result, err = engine.RunProgram(ctx, *queryFlag, planners.Program(src))
			if err != nil {
				fatal(err)
			}
		} else {
			result, err = engine.Run(ctx, *queryFlag)
			if err != nil {
				fatal(err)
			}
		}

		logger.Info("done",
			"run", result.RunID,
			"state", result.State,
			"answered", result.Answered,
			"leaf calls", result.Execution.LeafCalls,
			"duration", result.Execution.Duration,
		)
	})
}
