package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/concierge/internal/cli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"session"},
	Short:   "Manage persisted conversation threads",
	Long:    `List, inspect and remove the threads held by the configured session store.`,
}

var sessionsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all threads",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, app, err := cli.OpenStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		threads, err := store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("error listing sessions: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(threads) == 0 {
			fmt.Fprintln(out, "No sessions found.")
			return nil
		}
		for _, id := range threads {
			fmt.Fprintln(out, "- "+id)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:     "show <thread-id>",
	Aliases: []string{"inspect"},
	Short:   "Print the stored state of a thread",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		store, app, err := cli.OpenStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		sess, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", args[0], err)
		}

		var data []byte
		switch format {
		case "json":
			data, err = json.MarshalIndent(sess, "", "  ")
		case "yaml":
			data, err = yaml.Marshal(sess)
		default:
			return fmt.Errorf("unknown format %q (want yaml or json)", format)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:     "delete <thread-id>...",
	Aliases: []string{"rm"},
	Short:   "Remove one or more threads",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, app, err := cli.OpenStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		failed := 0
		for _, id := range args {
			if err := store.Delete(cmd.Context(), id); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", id, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", id)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d sessions could not be removed", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsDeleteCmd)
	sessionsShowCmd.Flags().String("format", "yaml", "Output format: yaml or json")
	sessionsCmd.PersistentFlags().String("dir", "", "Directory of the file store (overrides store.dir)")
	if err := vp.BindPFlag("store.dir", sessionsCmd.PersistentFlags().Lookup("dir")); err != nil {
		panic(err)
	}
}
