package cmds

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestExecutor(t *testing.T) {
	executor := NewExecutor()

	var a int
	executor.Define("+a", Func(func() {
		a = 42
	}))
	executor.Define("a", Func(func(i int) {
		a = i
	}))

	if err := executor.Execute([]string{"+a"}); err != nil {
		t.Fatal(err)
	}
	if a != 42 {
		t.Fatalf("got %v", a)
	}

	if err := executor.Execute([]string{"a", "1"}); err != nil {
		t.Fatal(err)
	}
	if a != 1 {
		t.Fatalf("got %v", a)
	}

	err := executor.Execute([]string{"foo"})
	if err == nil || !strings.Contains(err.Error(), "unknown command: foo") {
		t.Fatalf("got %v", err)
	}

	err = executor.Execute([]string{"a"})
	if err == nil || !strings.Contains(err.Error(), "got nothing") {
		t.Fatalf("got %v", err)
	}
}

func TestExecutorTypes(t *testing.T) {
	executor := NewExecutor()
	var (
		d time.Duration
		f float64
		s string
		b bool
	)
	executor.Define("d", Func(func(v time.Duration) { d = v }))
	executor.Define("f", Func(func(v float64) { f = v }))
	executor.Define("s", Func(func(v string) { s = v }))
	executor.Define("b", Func(func(v bool) { b = v }))
	if err := executor.Execute([]string{
		"d", "90s",
		"f", "2.5",
		"s", "foo bar",
		"b", "yes",
	}); err != nil {
		t.Fatal(err)
	}
	if d != 90*time.Second {
		t.Fatalf("got %v", d)
	}
	if f != 2.5 {
		t.Fatalf("got %v", f)
	}
	if s != "foo bar" {
		t.Fatalf("got %v", s)
	}
	if !b {
		t.Fatal()
	}

	if err := executor.Execute([]string{"d", "soon"}); err == nil {
		t.Fatal("should error")
	}
}

func TestExecutorFuncError(t *testing.T) {
	executor := NewExecutor()
	errFoo := errors.New("foo")
	executor.Define("fail", Func(func() error {
		return errFoo
	}))
	executor.Define("ok", Func(func() error {
		return nil
	}))
	if err := executor.Execute([]string{"ok"}); err != nil {
		t.Fatal(err)
	}
	if err := executor.Execute([]string{"fail"}); !errors.Is(err, errFoo) {
		t.Fatalf("got %v", err)
	}
}

func TestDuplicatedCommand(t *testing.T) {
	executor := NewExecutor()
	executor.Define("foo", Func(func() {}).Alias("bar"))
	defer func() {
		if p := recover(); p == nil {
			t.Fatal("should panic")
		}
	}()
	executor.Define("bar", Func(func() {}))
}

func TestUsage(t *testing.T) {
	executor := NewExecutor()
	buf := new(bytes.Buffer)
	executor.output = buf
	executor.Define("foo", Func(func(int) {}).Desc("FOO").Alias("-foo"))
	executor.PrintUsage()
	out := buf.String()
	if !strings.Contains(out, "FOO") {
		t.Fatalf("got %s", out)
	}
	if !strings.Contains(out, "<int>") {
		t.Fatalf("got %s", out)
	}
	if strings.Count(out, "FOO") != 1 {
		t.Fatalf("aliases should be listed once: %s", out)
	}
}

func TestVar(t *testing.T) {
	a := Var[int]("TestVar.int")
	b := Var[string]("TestVar.string")
	GlobalExecutor.MustExecute([]string{
		"TestVar.int", "42",
		"TestVar.string", "bar",
	})
	if *a != 42 {
		t.Fatalf("got %v", *a)
	}
	if *b != "bar" {
		t.Fatalf("got %v", *b)
	}
}

func TestSwitch(t *testing.T) {
	foo := Switch("TestSwitch")
	Execute([]string{"TestSwitch"})
	if !*foo {
		t.Fatal()
	}
	Execute([]string{"!TestSwitch"})
	if *foo {
		t.Fatal()
	}
}

func TestTypedVar(t *testing.T) {
	type Foo string
	v := Var[Foo]("TestTypedVar")
	Execute([]string{"TestTypedVar", "bar"})
	if *v != "bar" {
		t.Fatalf("got %v", *v)
	}
}
