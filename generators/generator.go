package generators

import "context"

// Generator is a chat-completion service bound to one model.
type Generator interface {
	Args() GeneratorArgs
	Generate(ctx context.Context, req Request) (*Response, error)
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type ResponseFormat string

const (
	FormatText ResponseFormat = ""
	FormatJSON ResponseFormat = "json_object"
)

type Request struct {
	Messages       []Message
	ResponseFormat ResponseFormat
}

type Response struct {
	Model        string
	Content      string
	FinishReason string
}

// GenerateFunc adapts a function to Generator.
type GenerateFunc func(ctx context.Context, req Request) (*Response, error)

var _ Generator = GenerateFunc(nil)

func (f GenerateFunc) Args() GeneratorArgs {
	return GeneratorArgs{
		Model: "func",
	}
}

func (f GenerateFunc) Generate(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
