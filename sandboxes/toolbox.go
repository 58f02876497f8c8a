package sandboxes

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync/atomic"

	"github.com/reusee/rlm/chunks"
	"github.com/reusee/rlm/debugs"
	"github.com/reusee/rlm/leaves"
	"github.com/reusee/rlm/logs"
	"github.com/reusee/rlm/metrics"
	"go.starlark.net/starlark"
	"golang.org/x/sync/errgroup"
)

const NotFound = "Information not found in context."

// toolbox is the per-execution state behind the predeclared builtins.
// unfiltered holds the chunks of the last keyword filter that matched nothing, until a leaf is asked.
// Fields other than leafCalls are only touched from the starlark goroutine.
type toolbox struct {
	ctx         context.Context
	document    string
	query       string
	ask         leaves.Ask
	guard       bool
	concurrency int
	logger      logs.Logger
	collectors  *metrics.Collectors
	newSpan     logs.NewSpan

	reports         []string
	unfiltered      []string
	fallbackApplied bool
	leafCalls       atomic.Int64
}

func (t *toolbox) predeclared() starlark.StringDict {
	return starlark.StringDict{
		"CONTEXT":        starlark.String(t.document),
		"USER_QUERY":     starlark.String(t.query),
		"NOT_FOUND":      starlark.String(NotFound),
		"chunk_text":     builtin("chunk_text", t.chunkText),
		"keyword_filter": builtin("keyword_filter", t.keywordFilter),
		"ask_leaf":       builtin("ask_leaf", t.askLeaf),
		"ask_leaf_all":   builtin("ask_leaf_all", t.askLeafAll),
		"report":         builtin("report", t.report),
	}
}

type builtinFunc = func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error)

// builtin turns a panic inside fn into a starlark error.
func builtin(name string, fn builtinFunc) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (ret starlark.Value, err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("%s: panic: %v\n%s", b.Name(), p, debug.Stack())
			}
		}()
		return fn(thread, b, args, kwargs)
	})
}

func (t *toolbox) chunkText(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var text string
	size := chunks.DefaultSize
	overlap := chunks.DefaultOverlap
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"text", &text,
		"size?", &size,
		"overlap?", &overlap,
	); err != nil {
		return nil, err
	}
	parts, err := chunks.Split(text, size, overlap)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	t.logger.InfoContext(t.ctx, "chunked",
		"chunks", len(parts),
		"size", size,
		"overlap", overlap,
	)
	return stringList(parts), nil
}

func (t *toolbox) keywordFilter(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var chunksValue, keywordsValue starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"chunks", &chunksValue,
		"keywords", &keywordsValue,
	); err != nil {
		return nil, err
	}
	in, err := toStrings(b.Name(), chunksValue)
	if err != nil {
		return nil, err
	}
	keywords, err := toStrings(b.Name(), keywordsValue)
	if err != nil {
		return nil, err
	}

	t.logger.InfoContext(t.ctx, "filtering chunks",
		"chunks", len(in),
		"keywords", keywords,
	)
	out := chunks.Filter(in, keywords)
	t.logger.InfoContext(t.ctx, "filtered chunks",
		"relevant", len(out),
	)

	if len(in) > 0 && len(out) == 0 {
		t.unfiltered = in
	} else if len(out) > 0 {
		t.unfiltered = nil
	}

	return stringList(out), nil
}

func (t *toolbox) askLeaf(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var chunk string
	query := t.query
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"chunk", &chunk,
		"query?", &query,
	); err != nil {
		return nil, err
	}
	t.unfiltered = nil
	verdict := t.ask(t.ctx, chunk, query)
	t.leafCalls.Add(1)
	if err := t.ctx.Err(); err != nil {
		return nil, err
	}
	return debugs.ToStarlarkValue(verdict), nil
}

func (t *toolbox) askLeafAll(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var chunksValue starlark.Value
	query := t.query
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"chunks", &chunksValue,
		"query?", &query,
	); err != nil {
		return nil, err
	}
	targets, err := toStrings(b.Name(), chunksValue)
	if err != nil {
		return nil, err
	}

	if len(targets) == 0 && t.guard && len(t.unfiltered) > 0 {
		t.logger.WarnContext(t.ctx, "keyword filter matched nothing and the program did not fall back, scanning all chunks",
			"chunks", len(t.unfiltered),
		)
		targets = t.unfiltered
		t.unfiltered = nil
		t.fallbackApplied = true
		t.collectors.Fallbacks.Inc()
	}
	if len(targets) > 0 {
		t.unfiltered = nil
	}

	ctx, _ := t.newSpan(t.ctx, "fan-out")
	t.logger.InfoContext(ctx, "asking leaves",
		"chunks", len(targets),
	)
	t.collectors.FanOutSize.Observe(float64(len(targets)))

	verdicts := make([]leaves.Verdict, len(targets))
	var group errgroup.Group
	if t.concurrency > 0 {
		group.SetLimit(t.concurrency)
	}
	for i, chunk := range targets {
		group.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("panic: %v", p)
				}
			}()
			defer t.leafCalls.Add(1)
			verdicts[i] = t.ask(ctx, chunk, query)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	if err := t.ctx.Err(); err != nil {
		return nil, err
	}

	found := 0
	for _, verdict := range verdicts {
		if verdict.Found {
			found++
		}
	}
	t.logger.InfoContext(ctx, "leaves answered",
		"chunks", len(targets),
		"found", found,
	)

	return debugs.ToStarlarkValue(verdicts), nil
}

func (t *toolbox) report(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var value starlark.Value
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &value); err != nil {
		return nil, err
	}
	text, ok := starlark.AsString(value)
	if !ok {
		text = value.String()
	}
	t.reports = append(t.reports, text)
	return starlark.None, nil
}

func (t *toolbox) answer() string {
	return strings.Join(t.reports, "\n")
}

func stringList(strs []string) *starlark.List {
	elems := make([]starlark.Value, 0, len(strs))
	for _, s := range strs {
		elems = append(elems, starlark.String(s))
	}
	return starlark.NewList(elems)
}

// toStrings accepts a single string or any iterable of strings.
func toStrings(fnName string, value starlark.Value) ([]string, error) {
	if s, ok := starlark.AsString(value); ok {
		return []string{s}, nil
	}
	iter := starlark.Iterate(value)
	if iter == nil {
		return nil, fmt.Errorf("%s: got %s, want iterable of str", fnName, value.Type())
	}
	defer iter.Done()
	var ret []string
	var elem starlark.Value
	for iter.Next(&elem) {
		s, ok := starlark.AsString(elem)
		if !ok {
			return nil, fmt.Errorf("%s: got %s element, want str", fnName, elem.Type())
		}
		ret = append(ret, s)
	}
	return ret, nil
}
