package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"

	cgerrors "github.com/randalmurphal/chatgraph/pkg/chatgraph/errors"
)

// OpenAI implements Client using the official OpenAI Go SDK (Responses API).
// It also works against OpenAI-compatible endpoints via WithBaseURL.
type OpenAI struct {
	client *openai.Client
	model  string
	retry  cgerrors.RetryConfig
}

// OpenAIOption configures the OpenAI client.
type OpenAIOption func(*openAIConfig)

type openAIConfig struct {
	baseURL string
	retry   cgerrors.RetryConfig
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) { c.baseURL = url }
}

// WithRetryConfig sets the retry policy for transient provider failures.
// Default: cgerrors.DefaultRetry.
func WithRetryConfig(cfg cgerrors.RetryConfig) OpenAIOption {
	return func(c *openAIConfig) { c.retry = cfg }
}

// NewOpenAI creates an OpenAI-backed client.
func NewOpenAI(apiKey, model string, opts ...OpenAIOption) *OpenAI {
	cfg := openAIConfig{retry: cgerrors.DefaultRetry}
	for _, opt := range opts {
		opt(&cfg)
	}

	requestOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if cfg.baseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(cfg.baseURL))
	}

	client := openai.NewClient(requestOpts...)
	return &OpenAI{
		client: &client,
		model:  model,
		retry:  cfg.retry,
	}
}

// Model implements Client.
func (c *OpenAI) Model() string {
	return c.model
}

// Complete implements Client.
// Transient provider failures are retried with exponential backoff.
func (c *OpenAI) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	params := c.buildParams(req)

	retry := c.retry
	retry.RetryableFunc = IsRetryable

	result := cgerrors.WithRetryContext(ctx, retry, func(ctx context.Context) (*responses.Response, error) {
		resp, err := c.client.Responses.New(ctx, params)
		if err != nil {
			if ctx.Err() != nil {
				return nil, NewError("complete", ctx.Err(), false)
			}
			return nil, NewError("complete", err, isTransientMessage(err.Error()))
		}
		return resp, nil
	})
	if result.Err != nil {
		return nil, result.Err
	}

	resp := c.parseResponse(result.Value)
	resp.Duration = time.Since(start)
	return resp, nil
}

// buildParams translates a CompletionRequest into Responses API parameters.
func (c *OpenAI) buildParams(req CompletionRequest) responses.ResponseNewParams {
	model := req.Model
	if model == "" {
		model = c.model
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: c.convertMessages(req),
		},
	}

	if req.MaxTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	if effortStr, ok := req.Options["thinking_effort"].(string); ok && effortStr != "" && effortStr != "off" {
		var effort shared.ReasoningEffort
		switch effortStr {
		case "low":
			effort = shared.ReasoningEffortLow
		case "high":
			effort = shared.ReasoningEffortHigh
		default:
			effort = shared.ReasoningEffortMedium
		}
		params.Reasoning = shared.ReasoningParam{Effort: effort}
	}

	if tools := c.convertTools(req.Tools); len(tools) > 0 {
		params.Tools = tools
	}

	if req.ResponseSchema != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:   req.ResponseSchema.Name,
					Schema: req.ResponseSchema.Schema,
					Strict: openai.Bool(req.ResponseSchema.Strict),
				},
			},
		}
	}

	return params
}

// convertMessages maps provider-neutral messages to Responses API input items.
func (c *OpenAI) convertMessages(req CompletionRequest) []responses.ResponseInputItemUnionParam {
	items := make([]responses.ResponseInputItemUnionParam, 0, len(req.Messages)+1)

	if req.SystemPrompt != "" {
		items = append(items, responses.ResponseInputItemParamOfMessage(
			req.SystemPrompt,
			responses.EasyInputMessageRoleSystem,
		))
	}

	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			items = append(items, responses.ResponseInputItemParamOfMessage(
				m.Content,
				responses.EasyInputMessageRoleSystem,
			))
		case RoleUser:
			items = append(items, responses.ResponseInputItemParamOfMessage(
				m.Content,
				responses.EasyInputMessageRoleUser,
			))
		case RoleAssistant:
			if m.Content != "" {
				items = append(items, responses.ResponseInputItemParamOfMessage(
					m.Content,
					responses.EasyInputMessageRoleAssistant,
				))
			}
			for _, tc := range m.ToolCalls {
				items = append(items, responses.ResponseInputItemParamOfFunctionCall(
					string(tc.Arguments),
					tc.ID,
					tc.Name,
				))
			}
		case RoleTool:
			items = append(items, responses.ResponseInputItemParamOfFunctionCallOutput(
				m.ToolCallID,
				m.Content,
			))
		}
	}

	return items
}

// convertTools maps tool definitions to Responses API function tools.
func (c *OpenAI) convertTools(tools []Tool) []responses.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}

	converted := make([]responses.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		converted = append(converted, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  t.Parameters,
			},
		})
	}
	return converted
}

// parseResponse extracts content, tool calls, and usage from an API response.
func (c *OpenAI) parseResponse(resp *responses.Response) *CompletionResponse {
	var toolCalls []ToolCall
	for _, item := range resp.Output {
		if fc, ok := item.AsAny().(responses.ResponseFunctionToolCall); ok {
			toolCalls = append(toolCalls, ToolCall{
				ID:        fc.CallID,
				Name:      fc.Name,
				Arguments: []byte(fc.Arguments),
			})
		}
	}

	finishReason := "stop"
	switch {
	case len(toolCalls) > 0:
		finishReason = "tool_calls"
	case resp.Status == responses.ResponseStatusIncomplete:
		finishReason = fmt.Sprintf("incomplete: %s", resp.IncompleteDetails.Reason)
	}

	return &CompletionResponse{
		Content:      resp.OutputText(),
		ToolCalls:    toolCalls,
		Model:        string(resp.Model),
		FinishReason: finishReason,
		Usage: TokenUsage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
	}
}
