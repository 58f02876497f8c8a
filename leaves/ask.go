package leaves

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/reusee/rlm/generators"
	"github.com/reusee/rlm/logs"
	"github.com/reusee/rlm/metrics"
)

// Ask queries the leaf tier about one chunk. Failures become a negative verdict.
type Ask func(ctx context.Context, chunk, query string) Verdict

var errEmptyContent = errors.New("empty content")

func (Module) Ask(
	generator generators.LeafGenerator,
	systemPrompt SystemPrompt,
	limiter Limiter,
	logger logs.Logger,
	collectors *metrics.Collectors,
) Ask {
	return func(ctx context.Context, chunk, query string) (ret Verdict) {
		t0 := time.Now()
		defer func() {
			collectors.LeafDuration.Observe(time.Since(t0).Seconds())
		}()

		verdict, err := ask(ctx, generator, limiter, string(systemPrompt), chunk, query)
		if err != nil {
			collectors.LeafQueries.WithLabelValues(metrics.VerdictError).Inc()
			logger.WarnContext(ctx, "leaf query failed",
				"chunk runes", len([]rune(chunk)),
				"error", err,
			)
			return failure
		}

		label := metrics.VerdictNotFound
		if verdict.Found {
			label = metrics.VerdictFound
		}
		collectors.LeafQueries.WithLabelValues(label).Inc()
		logger.DebugContext(ctx, "leaf verdict",
			"chunk runes", len([]rune(chunk)),
			"found", verdict.Found,
		)
		return verdict
	}
}

func ask(
	ctx context.Context,
	generator generators.Generator,
	limiter Limiter,
	systemPrompt string,
	chunk string,
	query string,
) (ret Verdict, err error) {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return ret, fmt.Errorf("throttle: %w", err)
		}
	}

	resp, err := generator.Generate(ctx, generators.Request{
		Messages: []generators.Message{
			{
				Role:    generators.RoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    generators.RoleUser,
				Content: userMessage(query, chunk),
			},
		},
		ResponseFormat: generators.FormatJSON,
	})
	if err != nil {
		return ret, err
	}

	return parseVerdict(resp.Content)
}

func parseVerdict(content string) (ret Verdict, err error) {
	content = generators.StripFences(content)
	if content == "" {
		return ret, errEmptyContent
	}
	if !strings.HasPrefix(content, "{") {
		return ret, fmt.Errorf("not a json object: %.64q", content)
	}
	if err := json.Unmarshal([]byte(content), &ret); err != nil {
		return ret, fmt.Errorf("decode verdict: %w", err)
	}
	return ret, nil
}
