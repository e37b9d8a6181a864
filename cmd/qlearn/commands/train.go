package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/qlearn/am"
	"github.com/teranos/qlearn/errors"
	"github.com/teranos/qlearn/logger"
	"github.com/teranos/qlearn/qstore"
	"github.com/teranos/qlearn/qtable"
	"github.com/teranos/qlearn/sim"
)

// TrainCmd trains an agent on the line-follow simulation
var TrainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train an agent on the line-follow simulation",
	Long: `Train an agent on the line-follow simulation and save its table.

The agent is built from [agent], the track from [sim], and the run from
[train]. The table is saved every checkpoint_every episodes and at the end,
also when the run is interrupted.

Examples:
  qlearn train                              # Use am.toml settings
  qlearn train --episodes 2000 --max-steps 300
  qlearn train --table robot.db --resume    # Continue from a saved table
  qlearn train --plot rewards.html          # Write a reward chart`,
	RunE: runTrain,
}

var (
	trainEpisodes int
	trainMaxSteps int
	trainPlot     string
	trainResume   bool
)

func init() {
	TrainCmd.Flags().IntVar(&trainEpisodes, "episodes", 0, "Number of episodes (default from [train] episodes)")
	TrainCmd.Flags().IntVar(&trainMaxSteps, "max-steps", 0, "Step limit per episode (default from [train] max_steps)")
	TrainCmd.Flags().String("table", "", "Table path, .json or .db/.sqlite/.sqlite3 (default from [table] path)")
	TrainCmd.Flags().StringVar(&trainPlot, "plot", "", "Write an HTML reward chart to this path")
	TrainCmd.Flags().BoolVar(&trainResume, "resume", false, "Load the existing table before training")
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("episodes") {
		cfg.Train.Episodes = trainEpisodes
	}
	if cmd.Flags().Changed("max-steps") {
		cfg.Train.MaxSteps = trainMaxSteps
	}
	if cmd.Flags().Changed("plot") {
		cfg.Train.PlotPath = trainPlot
	}

	return train(cmd.Context(), cfg, trainResume, logger.ShouldLogTrace(verbosity(cmd)), cmd.OutOrStdout())
}

// train runs a full training session and prints its summary to out
func train(ctx context.Context, cfg *am.Config, resume, traceUpdates bool, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	log := logger.Named("train")
	agent, err := cfg.NewAgent(qtable.WithObserver(qtable.NewLogObserver(log, traceUpdates)))
	if err != nil {
		return err
	}

	tablePath := cfg.Table.Path
	if resume {
		if _, statErr := os.Stat(tablePath); statErr == nil {
			if err := qstore.Load(agent, tablePath, log); err != nil {
				return err
			}
		} else {
			log.Warnw("No table to resume from, starting fresh", "path", tablePath)
		}
	}

	env, err := sim.NewLineFollow(sim.LineFollowConfig{
		TrackLength: cfg.Sim.TrackLength,
		CurveChange: cfg.Sim.CurveChange,
		Seed:        cfg.Sim.Seed,
	})
	if err != nil {
		return err
	}

	trainer, err := sim.NewTrainer(agent, env,
		sim.WithLogger(log),
		sim.WithCheckpoint(cfg.Train.CheckpointEvery, func(_ context.Context, episode int) error {
			log.Debugw("Checkpoint", "episode", episode, "path", tablePath)
			return qstore.Save(agent, tablePath, log)
		}))
	if err != nil {
		return err
	}

	results, runErr := trainer.Run(ctx, cfg.Train.Episodes, cfg.Train.MaxSteps)

	// Keep what was learned, also after an interrupt
	if err := qstore.Save(agent, tablePath, log); err != nil {
		if runErr != nil {
			return errors.WithSecondaryError(runErr, err)
		}
		return err
	}

	if cfg.Train.PlotPath != "" && len(results) > 0 {
		if err := sim.SaveRewardChart(cfg.Train.PlotPath, results); err != nil {
			return err
		}
	}

	printTrainSummary(out, trainer.RunID(), tablePath, cfg.Train.PlotPath, agent, results)
	return runErr
}

func printTrainSummary(out io.Writer, runID, tablePath, plotPath string, agent *qtable.Agent, results []sim.EpisodeResult) {
	summary := sim.Summarize(results)

	data := pterm.TableData{
		{"Run", runID},
		{"Episodes", fmt.Sprintf("%d", summary.Episodes)},
		{"Steps", fmt.Sprintf("%d", summary.TotalSteps)},
		{"Mean reward", fmt.Sprintf("%.3f", summary.MeanReward)},
		{"Best reward", fmt.Sprintf("%.3f", summary.BestReward)},
		{"Epsilon", fmt.Sprintf("%.4f", agent.Epsilon())},
		{"States", fmt.Sprintf("%d", len(agent.States()))},
		{"Table", tablePath},
	}
	if plotPath != "" && len(results) > 0 {
		data = append(data, []string{"Chart", plotPath})
	}

	table, err := pterm.DefaultTable.WithData(data).Srender()
	if err != nil {
		fmt.Fprintf(out, "%v\n", data)
		return
	}
	fmt.Fprintln(out, pterm.Success.Sprint("Training complete"))
	fmt.Fprintln(out, table)
}
