package run

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/tinkertasker/tinkertasker/chat"
	"github.com/tinkertasker/tinkertasker/config"
	"github.com/tinkertasker/tinkertasker/mcphub"
	"github.com/tinkertasker/tinkertasker/types"
	"github.com/tinkertasker/tinkertasker/ux"
)

// doubleInterruptThreshold is the window for Ctrl+C twice to quit.
const doubleInterruptThreshold = 500 * time.Millisecond

// runChat starts the interactive session in the current directory.
func runChat() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	configPath, err := config.Path()
	if err != nil {
		return err
	}
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}

	logger := newLogger()
	defer logger.Sync()

	ctx := context.Background()
	hub, err := mcphub.New(ctx, cfg.AgentConfig, workDir, logger)
	if err != nil {
		return err
	}
	defer hub.Close()

	client, err := chat.NewClient(cfg.LLMConfig)
	if err != nil {
		return err
	}

	sessionDir, err := config.SessionDir()
	if err != nil {
		return err
	}
	agent, err := chat.NewAgent(client, hub, cfg.AgentConfig, workDir, sessionDir, logger)
	if err != nil {
		return err
	}

	ux.Welcome(os.Stdout, cfg, configPath, workDir)

	return repl(ctx, agent, cfg)
}

// repl reads user input line by line and runs a turn per line. A single
// Ctrl+C interrupts the running turn; two within half a second quit.
func repl(ctx context.Context, agent *chat.Agent, cfg *config.Config) error {
	renderer := ux.NewRenderer(os.Stdout, cfg.UXConfig)
	spinner := ux.NewSpinner(os.Stdout)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	lines := readLines(os.Stdin)
	var lastInterrupt time.Time

	for {
		fmt.Print("> ")
		select {
		case line, ok := <-lines:
			if !ok {
				fmt.Println()
				return nil
			}
			input := strings.TrimSpace(line)
			switch strings.ToLower(input) {
			case "quit", "exit":
				return nil
			case "":
				continue
			}

			quit := runTurn(ctx, agent, input, renderer, spinner, sigCh, &lastInterrupt)
			if quit {
				return nil
			}

		case <-sigCh:
			now := time.Now()
			fmt.Println()
			if now.Sub(lastInterrupt) < doubleInterruptThreshold {
				return nil
			}
			lastInterrupt = now
		}
	}
}

// runTurn executes one turn while watching for interrupts. It reports
// whether the user asked to quit.
func runTurn(ctx context.Context, agent *chat.Agent, input string, renderer *ux.Renderer, spinner *ux.Spinner, sigCh <-chan os.Signal, lastInterrupt *time.Time) (quit bool) {
	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// events share the terminal with the spinner; halt it while rendering
	// so a frame cannot land in the middle of the output, then resume
	events := func(msg types.Message) {
		spinner.Stop()
		renderer.HandleEvent(msg)
		spinner.Start()
	}

	done := make(chan error, 1)
	spinner.Start()
	go func() {
		done <- agent.Turn(turnCtx, input, events)
	}()

	for {
		select {
		case err := <-done:
			spinner.Stop()
			if err != nil && !errors.Is(err, context.Canceled) {
				renderer.HandleEvent(types.Message{
					Type:    types.MsgType_Error,
					Content: err.Error(),
				})
			}
			return false

		case <-sigCh:
			now := time.Now()
			if now.Sub(*lastInterrupt) < doubleInterruptThreshold {
				cancel()
				<-done
				spinner.Stop()
				fmt.Println()
				return true
			}
			*lastInterrupt = now
			cancel()
		}
	}
}

// readLines feeds stdin lines into a channel, closing it on EOF.
func readLines(r *os.File) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}
