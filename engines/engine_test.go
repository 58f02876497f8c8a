package engines

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/reusee/dscope"
	"github.com/reusee/rlm/configs"
	"github.com/reusee/rlm/generators"
	"github.com/reusee/rlm/metrics"
	"github.com/reusee/rlm/modes"
	"github.com/reusee/rlm/planners"
	"github.com/reusee/rlm/sandboxes"
)

const invoiceQuery = "What is the total amount of invoice INV-2024-999?"

func invoiceDocument() string {
	filler := strings.Repeat("lorem ipsum ", 2500)
	return filler + "Invoice #INV-2024-999 issued to ACME. Total due: $750. " + filler
}

// leafStub answers from the chunk text only, the way an extraction model would.
func leafStub(calls *atomic.Int64) generators.GenerateFunc {
	return func(ctx context.Context, req generators.Request) (*generators.Response, error) {
		calls.Add(1)
		_, chunk, _ := strings.Cut(req.Messages[1].Content, "\n\nText Chunk: ")
		verdict := map[string]any{
			"found":  false,
			"answer": "",
		}
		if strings.Contains(chunk, "$750") {
			verdict["found"] = true
			verdict["answer"] = "$750"
		}
		content, err := json.Marshal(verdict)
		if err != nil {
			return nil, err
		}
		return &generators.Response{
			Content: string(content),
		}, nil
	}
}

func rootStub(program planners.Program) generators.GenerateFunc {
	return func(ctx context.Context, req generators.Request) (*generators.Response, error) {
		return &generators.Response{
			Content: "```python\n" + string(program) + "\n```",
		}, nil
	}
}

func testScope(t *testing.T, root, leaf generators.GenerateFunc, output *bytes.Buffer) dscope.Scope {
	return dscope.New(
		modes.ForTest(t),
		new(Module),
		dscope.Provide(configs.NewLoader(nil, "")),
	).Fork(
		func() generators.RootGenerator {
			return root
		},
		func() generators.LeafGenerator {
			return leaf
		},
		func() Output {
			return output
		},
	)
}

func TestRunInvoice(t *testing.T) {
	var leafCalls atomic.Int64
	output := new(bytes.Buffer)
	testScope(t, rootStub(planners.DefaultProgram), leafStub(&leafCalls), output).Call(func(
		newEngine NewEngine,
		collectors *metrics.Collectors,
	) {
		engine := newEngine(invoiceDocument())
		if engine.State() != StateIdle {
			t.Fatalf("got %v", engine.State())
		}
		result, err := engine.Run(context.Background(), invoiceQuery)
		if err != nil {
			t.Fatal(err)
		}
		if !result.Answered || result.Answer != "$750" {
			t.Fatalf("got %+v", result)
		}
		if result.State != StateCompleted || engine.State() != StateCompleted {
			t.Fatalf("got %v", result.State)
		}
		if result.RunID == "" {
			t.Fatal("no run id")
		}
		// only the chunk holding the invoice passes the keyword filter
		if leafCalls.Load() != 1 {
			t.Fatalf("got %v", leafCalls.Load())
		}
		if !strings.Contains(output.String(), string(planners.DefaultProgram)) {
			t.Fatalf("program not printed: %s", output.String())
		}
		if !strings.Contains(output.String(), "FINAL ANSWER:\n$750") {
			t.Fatalf("got %s", output.String())
		}
		if n := testutil.ToFloat64(collectors.Runs.WithLabelValues(string(StateCompleted))); n != 1 {
			t.Fatalf("got %v", n)
		}
	})
}

func TestRunExamples(t *testing.T) {
	for _, c := range []struct {
		name      string
		document  string
		query     string
		answer    string
		leafCalls int64
	}{
		{
			name:      "second invoice",
			document:  "Invoice #1001 total $500. Invoice #1002 total $750.",
			query:     "What is the total for invoice 1002?",
			answer:    "$750",
			leafCalls: 1,
		},
		{
			// keywords "total" and "amount" match nothing, so the single chunk is scanned anyway
			name:      "no financial data",
			document:  "The hiking trail climbs through pine forest to a lake. Bring water and a warm jacket.",
			query:     "total amount due",
			answer:    sandboxes.NotFound,
			leafCalls: 1,
		},
	} {
		t.Run(c.name, func(t *testing.T) {
			var leafCalls atomic.Int64
			output := new(bytes.Buffer)
			testScope(t, rootStub(planners.DefaultProgram), leafStub(&leafCalls), output).Call(func(
				newEngine NewEngine,
			) {
				result, err := newEngine(c.document).Run(context.Background(), c.query)
				if err != nil {
					t.Fatal(err)
				}
				if result.Answer != c.answer {
					t.Fatalf("got %q", result.Answer)
				}
				if leafCalls.Load() != c.leafCalls {
					t.Fatalf("got %v", leafCalls.Load())
				}
				if result.Execution.FallbackApplied || result.Execution.FallbackSkipped {
					t.Fatalf("got %+v", result.Execution)
				}
			})
		})
	}
}

func TestRunNotFound(t *testing.T) {
	var leafCalls atomic.Int64
	output := new(bytes.Buffer)
	testScope(t, rootStub(planners.DefaultProgram), leafStub(&leafCalls), output).Call(func(
		newEngine NewEngine,
	) {
		document := strings.Repeat("lorem ipsum ", 5000)
		result, err := newEngine(document).Run(context.Background(), "What is the capital of Mars?")
		if err != nil {
			t.Fatal(err)
		}
		if result.Answer != sandboxes.NotFound {
			t.Fatalf("got %q", result.Answer)
		}
		// keyword "capital" matches nothing, so every chunk is scanned
		if leafCalls.Load() != 5 {
			t.Fatalf("got %v", leafCalls.Load())
		}
		if !strings.Contains(output.String(), sandboxes.NotFound) {
			t.Fatalf("got %s", output.String())
		}
	})
}

func TestRunPlanningFailure(t *testing.T) {
	errDown := errors.New("service down")
	root := func(ctx context.Context, req generators.Request) (*generators.Response, error) {
		return nil, errDown
	}
	var leafCalls atomic.Int64
	output := new(bytes.Buffer)
	testScope(t, root, leafStub(&leafCalls), output).Call(func(
		newEngine NewEngine,
		collectors *metrics.Collectors,
	) {
		engine := newEngine(invoiceDocument())
		result, err := engine.Run(context.Background(), invoiceQuery)
		if !errors.Is(err, errDown) {
			t.Fatalf("got %v", err)
		}
		if !strings.Contains(err.Error(), "span: ") {
			t.Fatalf("got %v", err)
		}
		if result.State != StateFailed || result.Answered {
			t.Fatalf("got %+v", result)
		}
		if leafCalls.Load() != 0 {
			t.Fatal("should not execute")
		}
		if output.Len() != 0 {
			t.Fatalf("got %s", output.String())
		}
		if n := testutil.ToFloat64(collectors.Runs.WithLabelValues(string(StateFailed))); n != 1 {
			t.Fatalf("got %v", n)
		}
	})

	testScope(t, rootStub(""), leafStub(&leafCalls), output).Call(func(
		newEngine NewEngine,
	) {
		_, err := newEngine("doc").Run(context.Background(), "q")
		if !errors.Is(err, planners.ErrEmptyProgram) {
			t.Fatalf("got %v", err)
		}
	})
}

func TestRunProgramFailure(t *testing.T) {
	var leafCalls atomic.Int64
	output := new(bytes.Buffer)
	testScope(t, nil, leafStub(&leafCalls), output).Call(func(
		newEngine NewEngine,
	) {
		result, err := newEngine("doc").RunProgram(context.Background(), "q", `report(undefined_thing)`)
		if err != nil {
			t.Fatal(err)
		}
		if result.State != StateCompleted || result.Answered {
			t.Fatalf("got %+v", result)
		}
		if result.Execution.Err == nil {
			t.Fatal("should fail")
		}
		if !strings.Contains(output.String(), "No answer produced.") {
			t.Fatalf("got %s", output.String())
		}
	})
}

func TestRunProgramBlank(t *testing.T) {
	var rootCalls, leafCalls atomic.Int64
	root := func(ctx context.Context, req generators.Request) (*generators.Response, error) {
		rootCalls.Add(1)
		return rootStub(planners.DefaultProgram)(ctx, req)
	}
	for _, program := range []planners.Program{"", "  \n\t"} {
		output := new(bytes.Buffer)
		testScope(t, root, leafStub(&leafCalls), output).Call(func(
			newEngine NewEngine,
			collectors *metrics.Collectors,
		) {
			engine := newEngine(invoiceDocument())
			result, err := engine.RunProgram(context.Background(), invoiceQuery, program)
			if !errors.Is(err, planners.ErrEmptyProgram) {
				t.Fatalf("got %v", err)
			}
			if result.State != StateFailed || engine.State() != StateFailed {
				t.Fatalf("got %+v", result)
			}
			if output.Len() != 0 {
				t.Fatalf("got %s", output.String())
			}
			if n := testutil.ToFloat64(collectors.Runs.WithLabelValues(string(StateFailed))); n != 1 {
				t.Fatalf("got %v", n)
			}
		})
	}
	if rootCalls.Load() != 0 || leafCalls.Load() != 0 {
		t.Fatalf("got %v root calls, %v leaf calls", rootCalls.Load(), leafCalls.Load())
	}
}

func TestLoadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(path, []byte("héllo"), 0644); err != nil {
		t.Fatal(err)
	}
	doc, err := LoadDocument(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc != "héllo" {
		t.Fatalf("got %q", doc)
	}
	if _, err := LoadDocument(filepath.Join(t.TempDir(), "missing")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("got %v", err)
	}

	binary := filepath.Join(t.TempDir(), "image.png")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")
	if err := os.WriteFile(binary, png, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDocument(binary); !errors.Is(err, ErrNotText) {
		t.Fatalf("got %v", err)
	}

	empty := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if doc, err := LoadDocument(empty); err != nil || doc != "" {
		t.Fatalf("got %q %v", doc, err)
	}
}
