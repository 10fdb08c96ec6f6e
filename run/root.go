// Package run wires the commands of the tinkertasker CLI.
package run

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tinkertasker/tinkertasker/config"
	"github.com/tinkertasker/tinkertasker/internal/logging"
)

var debugFlag bool

var rootCmd = &cobra.Command{
	Use:   "tinkertasker",
	Short: "TinkerTasker - a terminal AI agent backed by a local LLM",
	Long: `TinkerTasker is an autonomous terminal agent. It talks to a locally
hosted model through Ollama (or a cloud model when configured), and works
on your files through MCP servers.

Run it from the directory you want the agent to work in. Configuration
lives in an OS-dependent config directory and is created on first run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tinkertasker " + config.Version)
	},
}

// Main is the entry point of the tinkertasker binary.
func Main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger builds the file logger, falling back to a no-op logger when
// the log directory is unavailable.
func newLogger() *zap.Logger {
	logDir, err := config.LogDir()
	if err != nil {
		return zap.NewNop()
	}
	logger, err := logging.New(logDir, debugFlag)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
