package engines

import (
	"io"
	"os"
)

// Output receives the program listing and the final answer.
type Output io.Writer

func (Module) Output() Output {
	return os.Stdout
}

const separator = "---------------------------------------------------"
