package generators

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/reusee/rlm/logs"
	"github.com/reusee/rlm/nets"
	"github.com/reusee/rlm/vars"
)

// OpenAI talks to any OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	args   GeneratorArgs
	apiKey string
	client nets.HTTPClient
	logger logs.Logger
}

var _ Generator = new(OpenAI)

func (o *OpenAI) Args() GeneratorArgs {
	return o.args
}

func (o *OpenAI) Generate(ctx context.Context, request Request) (*Response, error) {
	req := ChatCompletionRequest{
		Model:               o.args.Model,
		Messages:            request.Messages,
		Stream:              true,
		MaxCompletionTokens: vars.DerefOrZero(o.args.MaxGenerateTokens),
		Temperature:         o.args.Temperature,
	}
	if request.ResponseFormat != FormatText {
		req.ResponseFormat = &ChatResponseFormat{
			Type: string(request.ResponseFormat),
		}
	}
	if o.args.ReasoningEffort != "" {
		if o.args.IsOpenRouter {
			req.Reasoning = &Reasoning{
				Effort: o.args.ReasoningEffort,
			}
		} else {
			req.ReasoningEffort = o.args.ReasoningEffort
		}
	}

	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		strings.TrimSuffix(o.args.BaseURL, "/")+"/chat/completions",
		bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return nil, err
	}
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	for k, v := range o.args.Headers {
		if v != "" {
			httpReq.Header.Set(k, v)
		}
	}

	o.logger.DebugContext(ctx, "generating",
		"model", o.args.Model,
		"messages", len(req.Messages),
		"format", request.ResponseFormat,
	)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return nil, OpenAIError{
			Err:     err,
			Request: req,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, req)
	}

	ret := &Response{
		Model: o.args.Model,
	}
	var content strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			// blank separators, comments and keep-alives
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			break
		}

		var streamResp ChatCompletionStreamResponse
		if err := json.Unmarshal([]byte(data), &streamResp); err != nil {
			return nil, fmt.Errorf("error unmarshalling stream response: %w", err)
		}
		if streamResp.Error != nil {
			return nil, OpenAIError{
				Err:     streamResp.Error,
				Request: req,
			}
		}
		if streamResp.Model != "" {
			ret.Model = streamResp.Model
		}
		if len(streamResp.Choices) == 0 {
			continue
		}
		choice := streamResp.Choices[0]
		content.WriteString(choice.Delta.Content)
		if choice.FinishReason != "" {
			ret.FinishReason = choice.FinishReason
			if choice.FinishReason == "error" {
				return nil, errors.Join(errors.New("finish reason: error"), ErrRetryable)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading stream: %w", err)
	}

	ret.Content = content.String()
	return ret, nil
}

func statusError(resp *http.Response, req ChatCompletionRequest) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var err error
	var errResp ErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil {
		errResp.Error.HTTPStatusCode = resp.StatusCode
		err = errResp.Error
	} else {
		err = fmt.Errorf("bad status: %d, body: %s", resp.StatusCode, body)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		err = errors.Join(err, ErrRetryable)
	}
	return OpenAIError{
		Err:     err,
		Request: req,
	}
}

type NewOpenAI func(args GeneratorArgs, apiKey string) *OpenAI

func (Module) NewOpenAI(
	client nets.HTTPClient,
	logger logs.Logger,
) NewOpenAI {
	return func(args GeneratorArgs, apiKey string) *OpenAI {
		return &OpenAI{
			args:   args,
			apiKey: apiKey,
			client: client,
			logger: logger,
		}
	}
}

type ChatCompletionRequest struct {
	Model               string              `json:"model"`
	Messages            []Message           `json:"messages"`
	Stream              bool                `json:"stream"`
	ResponseFormat      *ChatResponseFormat `json:"response_format,omitempty"`
	ReasoningEffort     string              `json:"reasoning_effort,omitempty"`
	Reasoning           *Reasoning          `json:"reasoning,omitempty"`
	MaxCompletionTokens int                 `json:"max_completion_tokens,omitempty"`
	Temperature         *float32            `json:"temperature,omitempty"`
}

type ChatResponseFormat struct {
	Type string `json:"type"`
}

type Reasoning struct {
	Effort    string `json:"effort,omitempty"`
	MaxTokens int    `json:"max_tokens,omitempty"`
	Exclude   bool   `json:"exclude,omitempty"`
}

type ChatCompletionStreamResponse struct {
	Model   string                       `json:"model"`
	Choices []ChatCompletionStreamChoice `json:"choices"`
	Error   *APIError                    `json:"error,omitempty"`
}

type ChatCompletionStreamChoice struct {
	Delta        ChatCompletionStreamChoiceDelta `json:"delta"`
	FinishReason string                          `json:"finish_reason"`
}

type ChatCompletionStreamChoiceDelta struct {
	Content          string `json:"content,omitempty"`
	Role             string `json:"role,omitempty"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}
