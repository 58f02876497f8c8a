package planners

import (
	"context"
	"errors"
	"fmt"

	"github.com/reusee/rlm/generators"
	"github.com/reusee/rlm/logs"
)

var ErrEmptyProgram = errors.New("empty program")

// Plan asks the root tier for a strategy program. The program is not validated.
type Plan func(ctx context.Context, query string) (Program, error)

func (Module) Plan(
	generator generators.RootGenerator,
	systemPrompt SystemPrompt,
	logger logs.Logger,
) Plan {
	return func(ctx context.Context, query string) (Program, error) {
		logger.InfoContext(ctx, "planning",
			"model", generator.Args().Model,
		)
		resp, err := generator.Generate(ctx, generators.Request{
			Messages: []generators.Message{
				{
					Role:    generators.RoleSystem,
					Content: string(systemPrompt),
				},
				{
					Role:    generators.RoleUser,
					Content: query,
				},
			},
		})
		if err != nil {
			return "", fmt.Errorf("plan: %w", err)
		}
		program := Program(generators.StripFences(resp.Content))
		if program == "" {
			return "", fmt.Errorf("plan: %w", ErrEmptyProgram)
		}
		logger.DebugContext(ctx, "planned",
			"bytes", len(program),
			"finish reason", resp.FinishReason,
		)
		return program, nil
	}
}
