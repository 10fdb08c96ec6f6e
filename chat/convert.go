package chat

import (
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"

	"github.com/tinkertasker/tinkertasker/types"
)

// Messages is a local wrapper for provider conversion methods
type Messages []types.Message

// ToOpenAI converts unified messages to OpenAI format. System messages are
// collected separately and not emitted into the message list.
func (messages Messages) ToOpenAI() (msgs []openai.ChatCompletionMessageParamUnion, systemPrompts []string, err error) {
	for _, msg := range messages {
		var msgUnion openai.ChatCompletionMessageParamUnion
		switch msg.Type {
		case types.MsgType_ToolCall:
			msgUnion.OfAssistant = &openai.ChatCompletionAssistantMessageParam{
				ToolCalls: []openai.ChatCompletionMessageToolCallParam{
					{
						ID: msg.ToolUseID,
						Function: openai.ChatCompletionMessageToolCallFunctionParam{
							Name:      msg.ToolName,
							Arguments: msg.Content,
						},
					},
				},
			}
		case types.MsgType_ToolResult:
			msgUnion.OfTool = &openai.ChatCompletionToolMessageParam{
				ToolCallID: msg.ToolUseID,
				Content: openai.ChatCompletionToolMessageParamContentUnion{
					OfString: param.NewOpt(msg.Content),
				},
			}
		case types.MsgType_Msg:
			switch msg.Role {
			case types.Role_User:
				msgUnion.OfUser = &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: param.NewOpt(msg.Content),
					},
				}
			case types.Role_Assistant:
				msgUnion.OfAssistant = &openai.ChatCompletionAssistantMessageParam{
					Content: openai.ChatCompletionAssistantMessageParamContentUnion{
						OfString: param.NewOpt(msg.Content),
					},
				}
			case types.Role_System:
				systemPrompts = append(systemPrompts, msg.Content)
				continue
			default:
				continue
			}
		default:
			continue
		}

		msgs = append(msgs, msgUnion)
	}

	return msgs, systemPrompts, nil
}

// ToAnthropic converts unified messages to Anthropic format
func (messages Messages) ToAnthropic() (msgs []anthropic.MessageParam, systemPrompts []string, err error) {
	for _, msg := range messages {
		var blocks []anthropic.ContentBlockParamUnion
		var msgRole anthropic.MessageParamRole
		switch msg.Type {
		case types.MsgType_ToolCall:
			m := json.RawMessage(msg.Content)
			toolUse := anthropic.NewToolUseBlock(msg.ToolUseID, m, msg.ToolName)
			blocks = append(blocks, toolUse)
		case types.MsgType_ToolResult:
			toolResult := anthropic.NewToolResultBlock(msg.ToolUseID)
			toolResult.OfToolResult.Content = append(toolResult.OfToolResult.Content, anthropic.ToolResultBlockParamContentUnion{
				OfText: &anthropic.TextBlockParam{Text: msg.Content},
			})
			blocks = append(blocks, toolResult)
		case types.MsgType_Msg:
			textBlock := anthropic.NewTextBlock(msg.Content)
			blocks = append(blocks, textBlock)
		default:
			continue
		}

		switch msg.Role {
		case types.Role_User:
			msgRole = anthropic.MessageParamRoleUser
		case types.Role_Assistant:
			msgRole = anthropic.MessageParamRoleAssistant
		case types.Role_System:
			systemPrompts = append(systemPrompts, msg.Content)
			continue
		default:
			continue
		}

		msgs = append(msgs, anthropic.MessageParam{
			Role:    msgRole,
			Content: blocks,
		})
	}

	return msgs, systemPrompts, nil
}

// toolsToOpenAI converts tool schemas to OpenAI format
func toolsToOpenAI(unified []types.UnifiedTool) ([]openai.ChatCompletionToolParam, error) {
	var out []openai.ChatCompletionToolParam
	for _, t := range unified {
		raw := map[string]interface{}{
			"type": "function",
			"function": map[string]interface{}{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.InputSchema,
			},
		}
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("marshal tool %s: %w", t.Name, err)
		}
		var tool openai.ChatCompletionToolParam
		if err := json.Unmarshal(data, &tool); err != nil {
			return nil, fmt.Errorf("convert tool %s to OpenAI format: %w", t.Name, err)
		}
		out = append(out, tool)
	}
	return out, nil
}

// toolsToAnthropic converts tool schemas to Anthropic format
func toolsToAnthropic(unified []types.UnifiedTool) ([]anthropic.ToolUnionParam, error) {
	var out []anthropic.ToolUnionParam
	for _, t := range unified {
		raw := map[string]interface{}{
			"name":         t.Name,
			"description":  t.Description,
			"input_schema": t.InputSchema,
		}
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("marshal tool %s: %w", t.Name, err)
		}
		var tool anthropic.ToolParam
		if err := json.Unmarshal(data, &tool); err != nil {
			return nil, fmt.Errorf("convert tool %s to Anthropic format: %w", t.Name, err)
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return out, nil
}
