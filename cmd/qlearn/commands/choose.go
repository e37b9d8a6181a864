package commands

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/qlearn/am"
	"github.com/teranos/qlearn/errors"
	"github.com/teranos/qlearn/qtable"
)

// ChooseCmd picks an action for one state from a saved table
var ChooseCmd = &cobra.Command{
	Use:   "choose",
	Short: "Pick an action for one state from a saved table",
	Long: `Load a saved table and run one epsilon-greedy choice for --state,
printing the estimate of every action alongside the pick. Epsilon comes
from [agent] epsilon; use --epsilon 0 for the purely greedy choice.

Examples:
  qlearn choose --state center
  qlearn choose --state far_right --epsilon 0`,
	RunE: runChoose,
}

var (
	chooseState   string
	chooseEpsilon float64
)

func init() {
	ChooseCmd.Flags().String("table", "", "Table path (default from [table] path)")
	ChooseCmd.Flags().StringVar(&chooseState, "state", "", "State to choose for (required)")
	ChooseCmd.Flags().Float64Var(&chooseEpsilon, "epsilon", 0, "Exploration rate for this choice (default from [agent] epsilon)")
	_ = ChooseCmd.MarkFlagRequired("state")
}

func runChoose(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("epsilon") {
		cfg.Agent.Epsilon = chooseEpsilon
	}
	return choose(cfg, chooseState, cmd.OutOrStdout())
}

func choose(cfg *am.Config, state string, out io.Writer) error {
	if state == "" {
		return errors.WithHint(errors.NewInvalidRequestError("no state given"), "pass --state")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	agent, err := loadAgent(cfg)
	if err != nil {
		return err
	}

	action, values := agent.ChooseActionWithValues(qtable.State(state))

	data := pterm.TableData{{"Action", "Value"}}
	for i, a := range agent.Actions() {
		mark := ""
		if a == action {
			mark = " <"
		}
		data = append(data, []string{string(a), fmt.Sprintf("%.4f%s", values[i], mark)})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, "failed to render values")
	}

	fmt.Fprintln(out, table)
	fmt.Fprintf(out, "state=%s epsilon=%.4f action=%s\n", state, agent.Epsilon(), action)
	return nil
}
