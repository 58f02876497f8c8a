package generators

type GeneratorArgs struct {
	BaseURL           string            `json:"base_url"`
	APIKey            string            `json:"api_key"`
	Model             string            `json:"model"`
	MaxGenerateTokens *int              `json:"max_generate_tokens"`
	Temperature       *float32          `json:"temperature"`
	ReasoningEffort   string            `json:"reasoning_effort"`
	Headers           map[string]string `json:"headers"`
	IsOpenRouter      bool              `json:"is_open_router"`
}
