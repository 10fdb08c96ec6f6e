// Package ux renders agent events, the welcome box and the progress
// spinner for the interactive terminal session.
package ux

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/tinkertasker/tinkertasker/config"
	"github.com/tinkertasker/tinkertasker/internal/markdown"
	"github.com/tinkertasker/tinkertasker/types"
)

// Renderer displays agent events as they arrive.
type Renderer struct {
	out io.Writer
	cfg config.UXConfig

	green *color.Color
	red   *color.Color
}

func NewRenderer(out io.Writer, cfg config.UXConfig) *Renderer {
	return &Renderer{
		out:   out,
		cfg:   cfg,
		green: color.New(color.FgGreen),
		red:   color.New(color.FgRed),
	}
}

// HandleEvent renders one agent message. It is shaped to be passed as the
// agent's event callback.
func (r *Renderer) HandleEvent(msg types.Message) {
	switch msg.Type {
	case types.MsgType_Msg:
		switch msg.Role {
		case types.Role_User:
			fmt.Fprintln(r.out)
		case types.Role_Assistant:
			r.printAssistant(msg.Content)
		}
	case types.MsgType_ToolCall:
		args := FormatToolArguments(msg.Content, r.cfg.MaxArgValueLength)
		fmt.Fprintf(r.out, "%s %s%s\n", r.green.Sprint("●"), msg.ToolName, args)
	case types.MsgType_ToolResult:
		for _, line := range headLines(msg.Content, r.cfg.NumberToolLines) {
			fmt.Fprintf(r.out, "  ⎿  %s\n", strings.TrimSpace(line))
		}
		fmt.Fprintln(r.out)
	case types.MsgType_Error:
		fmt.Fprintf(r.out, "%s %s\n\n", r.red.Sprint("●"), msg.Content)
	}
}

// printAssistant renders the assistant's markdown under a leading bullet,
// indenting continuation lines to align with the text.
func (r *Renderer) printAssistant(content string) {
	rendered, err := markdown.Render(strings.TrimSpace(content))
	if err != nil {
		rendered = content
	}
	lines := strings.Split(strings.Trim(rendered, "\n"), "\n")
	for i, line := range lines {
		if i == 0 {
			fmt.Fprintf(r.out, "● %s\n", strings.TrimLeft(line, " "))
		} else {
			fmt.Fprintf(r.out, "  %s\n", line)
		}
	}
	fmt.Fprintln(r.out)
}
