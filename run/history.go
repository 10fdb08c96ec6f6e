package run

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tinkertasker/tinkertasker/chat"
	"github.com/tinkertasker/tinkertasker/config"
	"github.com/tinkertasker/tinkertasker/types"
	"github.com/tinkertasker/tinkertasker/ux"
)

var historyLast bool

var historyCmd = &cobra.Command{
	Use:   "history [transcript]",
	Short: "List or replay session transcripts",
	Long: `Without arguments, lists the recorded session transcripts.
With a transcript file (or --last for the most recent one), replays the
conversation to the terminal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionDir, err := config.SessionDir()
		if err != nil {
			return err
		}

		if len(args) == 0 && !historyLast {
			return listHistory(sessionDir)
		}

		path := ""
		if len(args) > 0 {
			path = args[0]
		} else {
			paths, err := chat.ListSessions(sessionDir)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no sessions recorded yet")
			}
			path = paths[len(paths)-1]
		}
		return showHistory(path)
	},
}

func init() {
	historyCmd.Flags().BoolVar(&historyLast, "last", false, "replay the most recent session")
}

func listHistory(sessionDir string) error {
	paths, err := chat.ListSessions(sessionDir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Println("No sessions recorded yet.")
		return nil
	}
	for _, path := range paths {
		msgs, err := chat.LoadSession(path)
		if err != nil {
			return err
		}
		summary := "(empty)"
		if last := chat.GetLastUserMessage(msgs); last != nil {
			summary = last.Content
			if len(summary) > 60 {
				summary = summary[:60] + "..."
			}
		}
		fmt.Printf("%s  %s\n", filepath.Base(path), summary)
	}
	return nil
}

func showHistory(path string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	msgs, err := chat.LoadSession(path)
	if err != nil {
		return err
	}

	renderer := ux.NewRenderer(os.Stdout, cfg.UXConfig)
	for _, msg := range msgs {
		if msg.Type == types.MsgType_Msg && msg.Role == types.Role_System {
			continue
		}
		if msg.Type == types.MsgType_Msg && msg.Role == types.Role_User {
			fmt.Printf("> %s\n", msg.Content)
		}
		renderer.HandleEvent(msg)
	}
	return nil
}
