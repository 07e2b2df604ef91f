package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCommand(flags *rootFlags) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "ask QUESTION...",
		Short: "Ask one or more questions from the terminal",
		Long:  "Each argument is a separate question; all of them share one conversation session.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer a.close()
			return runAsk(cmd.Context(), a, args, sessionID, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id to continue (default: new session)")
	return cmd
}

func runAsk(ctx context.Context, a *app, questions []string, sessionID string, out io.Writer) error {
	for i, q := range questions {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		if i > 0 {
			fmt.Fprintln(out, strings.Repeat("-", 60))
		}
		fmt.Fprintf(out, "Q: %s\n\n", q)

		resp, err := a.rag.Ask(ctx, q, sessionID)
		if resp == nil {
			return err
		}
		sessionID = resp.SessionID
		fmt.Fprintf(out, "A: %s\n", resp.Answer)
		if err != nil {
			return err
		}
		if len(resp.Sources) > 0 {
			fmt.Fprintln(out, "\nSources:")
			for n, s := range resp.Sources {
				fmt.Fprintf(out, "  %d. %s (%s)\n", n+1, s.Title, s.URL)
			}
		}
	}
	return nil
}
