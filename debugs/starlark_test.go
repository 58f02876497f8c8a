package debugs

import (
	"errors"
	"testing"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

func dict(kvs ...any) *starlark.Dict {
	d := starlark.NewDict(len(kvs) / 2)
	for i := 0; i < len(kvs); i += 2 {
		d.SetKey(kvs[i].(starlark.Value), kvs[i+1].(starlark.Value))
	}
	return d
}

func TestToStarlarkValue(t *testing.T) {
	type verdict struct {
		Found  bool   `json:"found"`
		Answer string `json:"answer,omitempty"`
		Secret string `json:"-"`
		Plain  int
		hidden int
	}
	v := &verdict{
		Found:  true,
		Answer: "$750",
		Secret: "x",
		Plain:  3,
		hidden: 4,
	}
	verdictDict := dict(
		starlark.String("found"), starlark.True,
		starlark.String("answer"), starlark.String("$750"),
		starlark.String("Plain"), starlark.MakeInt(3),
	)

	for _, c := range []struct {
		name     string
		input    any
		expected starlark.Value
	}{
		{"nil", nil, starlark.None},
		{"bool", true, starlark.True},
		{"bytes", []byte("abc"), starlark.Bytes("abc")},
		{"string", "hello", starlark.String("hello")},
		{"named string", struct{ S string }{"a"}, dict(starlark.String("S"), starlark.String("a"))},
		{"int8", int8(-42), starlark.MakeInt(-42)},
		{"int64", int64(42), starlark.MakeInt64(42)},
		{"uint16", uint16(42), starlark.MakeUint(42)},
		{"float32", float32(0.5), starlark.Float(0.5)},
		{"starlark value", starlark.String("kept"), starlark.String("kept")},
		{"error", errors.New("boom"), starlark.String("boom")},
		{"[]any", []any{1, "a"}, starlark.NewList([]starlark.Value{starlark.MakeInt(1), starlark.String("a")})},
		{"[]string", []string{"a", "b"}, starlark.NewList([]starlark.Value{starlark.String("a"), starlark.String("b")})},
		{"map", map[int]bool{1: true}, dict(starlark.MakeInt(1), starlark.True)},
		{"struct", *v, verdictDict},
		{"pointer", v, verdictDict},
		{"pointer to pointer", &v, verdictDict},
		{"slice of struct", []*verdict{v}, starlark.NewList([]starlark.Value{verdictDict})},
		{"nil pointer", (*verdict)(nil), starlark.None},
		{"nil func", (func())(nil), starlark.None},
	} {
		t.Run(c.name, func(t *testing.T) {
			got := ToStarlarkValue(c.input)
			ok, err := starlark.Equal(got, c.expected)
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				t.Fatalf("got %v, expected %v", got, c.expected)
			}
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		defer func() {
			if p := recover(); p == nil {
				t.Fatal("should panic")
			}
		}()
		ToStarlarkValue(make(chan bool))
	})

	t.Run("func", func(t *testing.T) {
		fn := ToStarlarkValue(func(chunk, query string) (bool, string) {
			return chunk != "", query + ":" + chunk
		})
		globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, new(starlark.Thread), "tap.star", `
found, answer = fn("chunk", "total")
`, starlark.StringDict{
			"fn": fn,
		})
		if err != nil {
			t.Fatal(err)
		}
		if globals["found"] != starlark.True || globals["answer"] != starlark.String("total:chunk") {
			t.Fatalf("got %v", globals)
		}
	})
}
