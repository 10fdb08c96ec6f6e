package chat

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tinkertasker/tinkertasker/config"
	"github.com/tinkertasker/tinkertasker/mcphub"
	"github.com/tinkertasker/tinkertasker/types"
)

// Agent drives the conversation loop: it sends the history to the model,
// executes the tool calls it requests through the hub, and feeds the
// results back until the model stops or the step limit is reached.
type Agent struct {
	client  *Client
	hub     *mcphub.Hub
	cfg     config.AgentConfig
	logger  *zap.Logger
	history Messages
	session *Session
	usage   types.TokenUsage
}

// NewAgent seeds the conversation with the system prompt and opens a
// session transcript under sessionDir.
func NewAgent(client *Client, hub *mcphub.Hub, cfg config.AgentConfig, workDir, sessionDir string, logger *zap.Logger) (*Agent, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	session, err := NewSession(sessionDir)
	if err != nil {
		return nil, err
	}

	a := &Agent{
		client:  client,
		hub:     hub,
		cfg:     cfg,
		logger:  logger,
		session: session,
	}

	systemPrompt := BuildSystemPrompt(cfg.PromptConfig, workDir, hub.Instructions(), time.Now())
	if err := a.record(NewMessage(types.MsgType_Msg, types.Role_System, client.Model(), systemPrompt)); err != nil {
		return nil, err
	}
	return a, nil
}

// SessionPath returns the path of the transcript being written.
func (a *Agent) SessionPath() string {
	return a.session.Path()
}

// Usage returns the tokens consumed so far.
func (a *Agent) Usage() types.TokenUsage {
	return a.usage
}

// record appends a message to the in-memory history and the transcript.
func (a *Agent) record(msg types.Message) error {
	a.history = append(a.history, msg)
	if err := a.session.Append(msg); err != nil {
		return fmt.Errorf("append to session: %w", err)
	}
	return nil
}

// Turn runs the agentic loop for one user utterance. Every produced
// message is passed to events as it happens. The loop ends when the model
// replies without tool calls or after MaxSteps rounds.
func (a *Agent) Turn(ctx context.Context, userInput string, events types.EventCallback) error {
	toolSchemas := a.hub.Tools()

	userMsg := NewMessage(types.MsgType_Msg, types.Role_User, a.client.Model(), userInput)
	if err := a.record(userMsg); err != nil {
		return err
	}
	if events != nil {
		events(userMsg)
	}

	maxSteps := a.cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 1
	}

	for step := 0; step < maxSteps; step++ {
		res, err := a.client.Step(ctx, a.history, toolSchemas)
		if err != nil {
			return err
		}
		a.usage = a.usage.Add(res.Usage)

		for _, msg := range res.Messages {
			if err := a.record(msg); err != nil {
				return err
			}
			if events != nil {
				events(msg)
			}
		}

		if len(res.ToolCalls) == 0 {
			break
		}

		for _, call := range res.ToolCalls {
			var result types.ToolResult
			if call.ArgsError != "" {
				result = types.ToolResult{Error: call.ArgsError}
			} else {
				result = a.hub.CallTool(ctx, call)
			}
			content := result.Content
			if result.Error != "" {
				content = result.Error
			}
			a.logger.Debug("tool executed",
				zap.String("tool", call.Name),
				zap.Bool("failed", result.Error != ""))

			resultMsg := NewToolResultMessage(a.client.Model(), call.Name, call.ID, content)
			if err := a.record(resultMsg); err != nil {
				return err
			}
			if events != nil {
				events(resultMsg)
			}
		}
	}

	usage := a.usage
	usageMsg := types.Message{
		Type:       types.MsgType_TokenUsage,
		Role:       types.Role_Assistant,
		Model:      a.client.Model(),
		TokenUsage: &usage,
	}.TimeFilled()
	if err := a.session.Append(usageMsg); err != nil {
		return err
	}

	a.logger.Info("turn complete",
		zap.Int64("input_tokens", a.usage.Input),
		zap.Int64("output_tokens", a.usage.Output))
	return nil
}
