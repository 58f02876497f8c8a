package planners

import (
	_ "embed"
	"strings"
	"text/template"
)

// Program is strategy source in Starlark.
type Program string

//go:embed default_strategy.star.tmpl
var defaultStrategy string

var defaultStrategyTmpl = template.Must(template.New("strategy").Parse(defaultStrategy))

// StrategyFor renders the reference strategy chunking with window.
func StrategyFor(window ChunkWindow) Program {
	var b strings.Builder
	if err := defaultStrategyTmpl.Execute(&b, window); err != nil {
		panic(err)
	}
	return Program(b.String())
}

// DefaultProgram is the reference strategy with the default window.
var DefaultProgram = StrategyFor(ChunkWindow{
	Size:    DefaultChunkSize,
	Overlap: DefaultChunkOverlap,
})
