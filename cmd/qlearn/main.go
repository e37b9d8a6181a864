package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teranos/qlearn/am"
	"github.com/teranos/qlearn/cmd/qlearn/commands"
	"github.com/teranos/qlearn/errors"
	"github.com/teranos/qlearn/logger"
)

var rootCmd = &cobra.Command{
	Use:   "qlearn",
	Short: "qlearn - tabular Q-learning agent",
	Long: `qlearn - tabular Q-learning agent and line-follow trainer.

An agent keeps a table of action values per (state, action), learns from
observed transitions and picks actions epsilon-greedily. Tables are saved
as JSON or, for .db/.sqlite/.sqlite3 paths, in SQLite.

Available commands:
  train   - Train an agent on the line-follow simulation
  inspect - Show the values and greedy action of a saved table
  choose  - Pick an action for one state from a saved table
  am      - Manage qlearn configuration ("I am")
  version - Show version information

Examples:
  qlearn train --episodes 1000 --plot rewards.html
  qlearn train --table robot.db --resume
  qlearn inspect --state center
  qlearn am init`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		if !cmd.Flags().Changed("json-logs") {
			if cfg, err := am.Load(); err == nil {
				jsonLogs = cfg.Log.JSON
			}
		}

		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		logger.Debugw("Logger initialized", "verbosity", logger.LevelName(verbosity), "json", jsonLogs)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON (default from [log] json)")

	// Add commands
	rootCmd.AddCommand(commands.TrainCmd)
	rootCmd.AddCommand(commands.InspectCmd)
	rootCmd.AddCommand(commands.ChooseCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
		stop()
		os.Exit(1)
	}
}
