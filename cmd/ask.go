package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tanpawarit/Chative-Travel-Concierge/agent/agents/orchestrator"
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Ask one question, or chat on stdin when no message is given",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		a, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		sessionID, _ := cmd.Flags().GetString("session")
		if len(args) > 0 {
			return askOnce(ctx, a.orchestrator, sessionID, strings.Join(args, " "), cmd.OutOrStdout())
		}
		return chatLoop(ctx, a.orchestrator, sessionID, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func askOnce(ctx context.Context, o *orchestrator.Orchestrator, sessionID, text string, out io.Writer) error {
	reply, err := o.HandleMessage(ctx, sessionID, text)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, reply.Text)
	return err
}

func chatLoop(ctx context.Context, o *orchestrator.Orchestrator, sessionID string, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		text := strings.TrimSpace(scanner.Text())
		if text != "" {
			if err := askOnce(ctx, o, sessionID, text, out); err != nil {
				return err
			}
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().String("session", "cli", "Session id the conversation is kept under")
}
