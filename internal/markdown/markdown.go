package markdown

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	styles "github.com/charmbracelet/glamour/styles"

	"github.com/tinkertasker/tinkertasker/internal/terminal"
)

const width = 120

// Render renders markdown for terminal display. Non-terminal output gets
// the plain style so transcripts stay readable.
func Render(md string) (string, error) {
	opts := []glamour.TermRendererOption{
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	}
	if terminal.IsStdoutTerminal() {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStyles(styles.NoTTYStyleConfig))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("unable to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("unable to render markdown: %w", err)
	}
	return out, nil
}
