package chat

import (
	"context"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	anth_opt "github.com/anthropics/anthropic-sdk-go/option"
	anth_param "github.com/anthropics/anthropic-sdk-go/packages/param"
	"github.com/openai/openai-go"
	openai_opt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/tinkertasker/tinkertasker/config"
	"github.com/tinkertasker/tinkertasker/internal/jsondecode"
	"github.com/tinkertasker/tinkertasker/providers"
	anthropic_helper "github.com/tinkertasker/tinkertasker/providers/anthropic"
	"github.com/tinkertasker/tinkertasker/types"
)

// Client sends completion requests to the backend resolved from the
// configured model identifier.
type Client struct {
	route providers.Route
	cfg   config.LLMConfig

	clientOpenAI    *openai.Client
	clientAnthropic *anthropic.Client
}

// StepResult is the outcome of one completion request. Tool calls are
// returned unexecuted.
type StepResult struct {
	Messages  []types.Message
	ToolCalls []types.ToolCall
	Usage     types.TokenUsage
	Stopped   bool
}

// NewClient resolves the model identifier and creates the provider client.
// Ollama routes use a placeholder API key; cloud routes read the key from
// the provider's environment variable.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	route, err := providers.ParseModel(cfg.ModelName)
	if err != nil {
		return nil, err
	}

	c := &Client{route: route, cfg: cfg}

	switch route.Shape {
	case providers.APIShapeOpenAI:
		var clientOptions []openai_opt.RequestOption
		if route.BaseURL != "" {
			clientOptions = append(clientOptions, openai_opt.WithBaseURL(route.BaseURL))
		}
		if route.Ollama {
			// Ollama accepts any key
			clientOptions = append(clientOptions, openai_opt.WithAPIKey("ollama"))
		} else {
			clientOptions = append(clientOptions, openai_opt.WithAPIKey(os.Getenv("OPENAI_API_KEY")))
		}
		client := openai.NewClient(clientOptions...)
		c.clientOpenAI = &client

	case providers.APIShapeAnthropic:
		c.clientAnthropic = anthropic_helper.NewClient(
			anth_opt.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
		)

	default:
		return nil, fmt.Errorf("unsupported API shape: %s", route.Shape)
	}

	return c, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.cfg.ModelName
}

// Step sends the history to the model once and returns its reply. Thinking
// blocks are stripped from text content before it is recorded.
func (c *Client) Step(ctx context.Context, history Messages, toolSchemas []types.UnifiedTool) (*StepResult, error) {
	switch c.route.Shape {
	case providers.APIShapeOpenAI:
		return c.stepOpenAI(ctx, history, toolSchemas)
	case providers.APIShapeAnthropic:
		return c.stepAnthropic(ctx, history, toolSchemas)
	default:
		return nil, fmt.Errorf("unsupported API shape: %s", c.route.Shape)
	}
}

func (c *Client) stepOpenAI(ctx context.Context, history Messages, toolSchemas []types.UnifiedTool) (*StepResult, error) {
	msgs, systemPrompts, err := history.ToOpenAI()
	if err != nil {
		return nil, fmt.Errorf("convert messages: %w", err)
	}
	if len(systemPrompts) > 0 {
		systemMsg := openai.ChatCompletionMessageParamUnion{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: param.NewOpt(systemPrompts[len(systemPrompts)-1]),
				},
			},
		}
		msgs = append([]openai.ChatCompletionMessageParamUnion{systemMsg}, msgs...)
	}

	tools, err := toolsToOpenAI(toolSchemas)
	if err != nil {
		return nil, err
	}

	params := openai.ChatCompletionNewParams{
		Model:               c.route.Model,
		Messages:            msgs,
		Tools:               tools,
		N:                   param.NewOpt(int64(1)),
		MaxCompletionTokens: param.NewOpt(int64(c.cfg.MaxCompletionTokens)),
		Temperature:         param.NewOpt(c.cfg.Temperature),
	}

	var reqOpts []openai_opt.RequestOption
	if c.route.Ollama && c.cfg.NumCtx != nil {
		reqOpts = append(reqOpts, openai_opt.WithJSONSet("num_ctx", *c.cfg.NumCtx))
	}

	result, err := c.clientOpenAI.Chat.Completions.New(ctx, params, reqOpts...)
	if err != nil {
		return nil, fmt.Errorf("completion request: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("response has no choices")
	}
	firstChoice := result.Choices[0]

	res := &StepResult{
		Stopped: firstChoice.FinishReason == "stop",
		Usage: types.TokenUsage{
			Input:  result.Usage.PromptTokens,
			Output: result.Usage.CompletionTokens,
			Total:  result.Usage.TotalTokens,
		},
	}

	if content := StripThinking(firstChoice.Message.Content); content != "" {
		res.Messages = append(res.Messages, NewMessage(types.MsgType_Msg, types.Role_Assistant, c.cfg.ModelName, content))
	}

	for _, toolCall := range firstChoice.Message.ToolCalls {
		call := parseToolCall(toolCall.ID, toolCall.Function.Name, toolCall.Function.Arguments)
		res.ToolCalls = append(res.ToolCalls, call)
		res.Messages = append(res.Messages, NewToolCallMessage(c.cfg.ModelName, toolCall.Function.Name, toolCall.ID, toolCall.Function.Arguments))
	}

	return res, nil
}

func (c *Client) stepAnthropic(ctx context.Context, history Messages, toolSchemas []types.UnifiedTool) (*StepResult, error) {
	msgs, systemPrompts, err := history.ToAnthropic()
	if err != nil {
		return nil, fmt.Errorf("convert messages: %w", err)
	}

	var system []anthropic.TextBlockParam
	if len(systemPrompts) > 0 {
		system = append(system, anthropic.TextBlockParam{
			Text: systemPrompts[len(systemPrompts)-1],
		})
	}

	tools, err := toolsToAnthropic(toolSchemas)
	if err != nil {
		return nil, err
	}

	result, err := anthropic_helper.Chat(ctx, c.clientAnthropic, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.route.Model),
		MaxTokens:   int64(c.cfg.MaxCompletionTokens),
		Temperature: anth_param.NewOpt(c.cfg.Temperature),
		System:      system,
		Messages:    msgs,
		Tools:       tools,
	})
	if err != nil {
		return nil, fmt.Errorf("completion request: %w", err)
	}

	res := &StepResult{
		Stopped: result.StopReason == anthropic.StopReasonEndTurn,
		Usage: types.TokenUsage{
			Input:  result.Usage.InputTokens,
			Output: result.Usage.OutputTokens,
			Total:  result.Usage.InputTokens + result.Usage.OutputTokens,
		},
	}

	for _, block := range result.Content {
		switch block.Type {
		case "text":
			txt := block.AsText()
			if content := StripThinking(txt.Text); content != "" {
				res.Messages = append(res.Messages, NewMessage(types.MsgType_Msg, types.Role_Assistant, c.cfg.ModelName, content))
			}
		case "tool_use":
			toolUse := block.AsToolUse()
			call := parseToolCall(toolUse.ID, toolUse.Name, string(toolUse.Input))
			res.ToolCalls = append(res.ToolCalls, call)
			res.Messages = append(res.Messages, NewToolCallMessage(c.cfg.ModelName, toolUse.Name, toolUse.ID, string(toolUse.Input)))
		}
	}

	return res, nil
}

// parseToolCall decodes the provider's tool call into the unified format.
// Malformed argument JSON does not fail the step; the error rides along on
// the call so the agent can report it back to the model.
func parseToolCall(toolID, toolName, arguments string) types.ToolCall {
	call := types.ToolCall{
		ID:      toolID,
		Name:    toolName,
		RawArgs: arguments,
	}
	if arguments == "" {
		return call
	}
	var args map[string]interface{}
	if err := jsondecode.UnmarshalSafe([]byte(arguments), &args); err != nil {
		call.ArgsError = fmt.Sprintf("Error: arguments of %s are not valid JSON: %v", toolName, err)
		return call
	}
	call.Arguments = args
	return call
}
