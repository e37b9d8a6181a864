package commands

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/qlearn/am"
	"github.com/teranos/qlearn/display"
	"github.com/teranos/qlearn/errors"
	"github.com/teranos/qlearn/logger"
	"github.com/teranos/qlearn/qstore"
	"github.com/teranos/qlearn/qtable"
)

// InspectCmd prints the values of a saved table
var InspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the values and greedy action of a saved table",
	Long: `Load a saved table and print, per state, the value of every action and
the greedy choice. SQLite tables also show their latest snapshot.

Examples:
  qlearn inspect                      # Table from [table] path
  qlearn inspect --table robot.db
  qlearn inspect --state far_left     # One state only
  qlearn inspect --json               # Entries as JSON`,
	RunE: runInspect,
}

var inspectState string

func init() {
	InspectCmd.Flags().String("table", "", "Table path (default from [table] path)")
	InspectCmd.Flags().StringVar(&inspectState, "state", "", "Only show this state")
	InspectCmd.Flags().Bool("json", false, "Output the table entries as JSON")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return inspect(cfg, inspectState, display.ShouldOutputJSON(cmd), cmd.OutOrStdout())
}

// loadAgent builds the configured agent and loads its table
func loadAgent(cfg *am.Config) (*qtable.Agent, error) {
	log := logger.Named("table")
	agent, err := cfg.NewAgent(qtable.WithObserver(qtable.NewLogObserver(log, false)))
	if err != nil {
		return nil, err
	}
	if err := qstore.Load(agent, cfg.Table.Path, log); err != nil {
		return nil, errors.WithHint(err, "train first with `qlearn train` or pass --table")
	}
	return agent, nil
}

func inspect(cfg *am.Config, state string, asJSON bool, out io.Writer) error {
	agent, err := loadAgent(cfg)
	if err != nil {
		return err
	}

	states := agent.States()
	if state != "" {
		if !hasState(states, qtable.State(state)) {
			return errors.WithHintf(errors.NewNotFoundError("state %q not in table %s", state, cfg.Table.Path),
				"known states: %v", states)
		}
		states = []qtable.State{qtable.State(state)}
	}

	if asJSON {
		entries := make([]qtable.Entry, 0, agent.Len())
		for _, e := range agent.Entries() {
			if state == "" || e.State == qtable.State(state) {
				entries = append(entries, e)
			}
		}
		return display.OutputJSON(out, entries)
	}

	actions := agent.Actions()
	header := []string{"State"}
	for _, a := range actions {
		header = append(header, string(a))
	}
	header = append(header, "Greedy")

	data := pterm.TableData{header}
	for _, s := range states {
		row := []string{string(s)}
		values := make([]float64, len(actions))
		for i, a := range actions {
			values[i] = agent.Value(s, a)
			row = append(row, fmt.Sprintf("%.4f", values[i]))
		}
		row = append(row, greedyLabel(actions, values))
		data = append(data, row)
	}

	fmt.Fprintln(out, pterm.Info.Sprintf("%s: %d states, %d entries", cfg.Table.Path, len(agent.States()), agent.Len()))
	if len(states) > 0 {
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err != nil {
			return errors.Wrap(err, "failed to render table")
		}
		fmt.Fprintln(out, table)
	}

	if qstore.IsSQLitePath(cfg.Table.Path) {
		printSnapshot(out, cfg.Table.Path)
	}
	return nil
}

func printSnapshot(out io.Writer, path string) {
	store, err := qstore.OpenSQLStore(path, logger.Named("table"))
	if err != nil {
		return
	}
	defer store.Close()

	snap, err := store.LatestSnapshot()
	if err != nil {
		return
	}
	fmt.Fprintf(out, "Last saved %s (snapshot %s, %d entries)\n",
		snap.SavedAt.Local().Format("2006-01-02 15:04:05"), snap.ID, snap.Entries)
}

// greedyLabel names the highest-valued actions; ties are joined with "|"
func greedyLabel(actions []qtable.Action, values []float64) string {
	best := values[0]
	for _, v := range values[1:] {
		if v > best {
			best = v
		}
	}
	label := ""
	for i, v := range values {
		if v == best {
			if label != "" {
				label += "|"
			}
			label += string(actions[i])
		}
	}
	return label
}

func hasState(states []qtable.State, state qtable.State) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}
