package main

import (
	"os"

	"github.com/aretw0/concierge/internal/cli"
	"github.com/aretw0/concierge/internal/presentation/tui"
	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/runner"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant in the terminal",
	Long: `Starts an interactive conversation. Use --thread to resume an existing conversation
from a persistent store; a pending approval prompt is shown again on resume.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		threadID, _ := cmd.Flags().GetString("thread")
		language, _ := cmd.Flags().GetString("language")
		currency, _ := cmd.Flags().GetString("currency")
		token, _ := cmd.Flags().GetString("token")
		jsonMode, _ := cmd.Flags().GetBool("json")

		app, err := cli.Build(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		var handler runner.IOHandler
		if jsonMode {
			handler = runner.NewJSONHandler(os.Stdin, os.Stdout)
		} else {
			var opts []runner.TextHandlerOption
			if tui.IsTerminal(os.Stdout) {
				tui.PrintBanner(os.Stdout)
				opts = append(opts,
					runner.WithTextHandlerRenderer(tui.NewRenderer()),
					runner.WithTextHandlerHighlight(tui.Highlight),
				)
			}
			handler = runner.NewTextHandler(os.Stdin, os.Stdout, opts...)
		}

		r := runner.NewRunner(app.Engine,
			runner.WithThreadID(threadID),
			runner.WithLocale(domain.Locale{Language: language, Currency: currency}),
			runner.WithCredential(token),
			runner.WithLogger(logger),
			runner.WithInputHandler(handler),
		)
		return r.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("thread", "", "Thread to resume (default: a new one)")
	chatCmd.Flags().String("language", "", "Preferred language, e.g. es or en")
	chatCmd.Flags().String("currency", "", "Preferred currency, CLP or USD")
	chatCmd.Flags().String("token", os.Getenv("CTS_TOKEN"), "Travel API credential used for bookings")
	chatCmd.Flags().Bool("json", false, "Read and write JSON lines instead of text")
}
