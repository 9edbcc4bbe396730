package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/thrift/internal/chat"
	"github.com/Veraticus/thrift/internal/cli"
	"github.com/Veraticus/thrift/internal/llm"
	"github.com/Veraticus/thrift/internal/tui"
)

func chatCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [MESSAGE...]",
		Short: "Talk about your budget and manage savings goals",
		Long: `Chat about your finances. Savings goals are created, funded and edited from
plain sentences.

With a message, answers once. Without one, starts an interactive session.

Examples:
  thrift chat "I want to save 1200 for a trip to Thailand by next March"
  thrift chat "I deposited 150 into my Thailand trip fund"
  thrift chat "add a rule to Thailand trip: cook at home on weekdays"
  thrift chat`,
		RunE: func(cmd *cobra.Command, args []string) error {
			plain, _ := cmd.Flags().GetBool("plain")

			return e.withApp(cmd.Context(), func(a *app) error {
				ask := func(ctx context.Context, history []llm.Message) (chat.Reply, error) {
					return a.engine.Chat(ctx, a.userID(), history)
				}

				if len(args) > 0 {
					history := []llm.Message{{Role: llm.RoleUser, Content: strings.Join(args, " ")}}
					reply, err := ask(cmd.Context(), history)
					if err != nil {
						return err
					}
					printReply(cmd.OutOrStdout(), a, reply)
					return nil
				}

				if !plain && isTerminal(cmd.InOrStdin()) {
					return tui.Run(cmd.Context(), ask, tui.WithUserName(a.settings.User.Name))
				}
				return chatLoop(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), a, ask)
			})
		},
	}

	cmd.Flags().Bool("plain", false, "Use a line-based session instead of the full-screen interface")

	return cmd
}

// chatLoop runs a line-based session until EOF, cancellation or "exit".
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, a *app, ask tui.ChatFunc) error {
	reader := cli.NewLineReader(in)
	var history []llm.Message

	fmt.Fprintln(out, cli.FormatTitle("thrift chat"))
	fmt.Fprintln(out, cli.SubtleStyle.Render(`Type "exit" to leave.`))

	for {
		fmt.Fprint(out, "› ")
		line, err := reader.ReadLine(ctx)
		if errors.Is(err, io.EOF) || errors.Is(err, cli.ErrInputCancelled) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		history = append(history, llm.Message{Role: llm.RoleUser, Content: line})
		reply, err := ask(ctx, history)
		if err != nil {
			history = history[:len(history)-1]
			fmt.Fprintln(out, cli.FormatError(err.Error()))
			continue
		}
		history = append(history, llm.Message{Role: llm.RoleAssistant, Content: reply.Text})
		printReply(out, a, reply)
	}
}

func printReply(out io.Writer, a *app, reply chat.Reply) {
	fmt.Fprintln(out, reply.Text)
	if reply.Intent != nil && reply.Intent.Kind() != chat.KindGeneral && len(reply.Goals) > 0 {
		fmt.Fprint(out, cli.RenderGoals(reply.Goals, a.now()))
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func goalsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "goals",
		Short: "List your savings goals and their monthly plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withApp(cmd.Context(), func(a *app) error {
				list, err := a.engine.Goals(cmd.Context(), a.userID())
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), cli.RenderGoals(list, a.now()))
				return nil
			})
		},
	}
}
