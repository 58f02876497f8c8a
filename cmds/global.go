package cmds

// GlobalExecutor holds the words defined by package-level Var, Switch and Define calls.
var GlobalExecutor = NewExecutor()

func Define(name string, command *Command) {
	GlobalExecutor.Define(name, command)
}

// Execute parses os.Args-style words with GlobalExecutor and panics on error.
func Execute(args []string) {
	GlobalExecutor.MustExecute(args)
}

func Var[T any](name string) *T {
	var value T
	Define(name, Func(func(v T) {
		value = v
	}))
	return &value
}

func Switch(name string) *bool {
	var value bool
	Define(name, Func(func() {
		value = true
	}))
	Define("!"+name, Func(func() {
		value = false
	}))
	return &value
}
