package planners

import (
	_ "embed"
	"strings"
	"text/template"
)

//go:embed system_prompt.tmpl
var systemPromptTemplate string

var systemPromptTmpl = template.Must(template.New("system").Parse(systemPromptTemplate))

type SystemPrompt string

func (Module) SystemPrompt(
	window ChunkWindow,
) SystemPrompt {
	var b strings.Builder
	if err := systemPromptTmpl.Execute(&b, map[string]any{
		"Window":  window,
		"Example": strings.TrimSpace(string(StrategyFor(window))),
	}); err != nil {
		panic(err)
	}
	return SystemPrompt(b.String())
}
