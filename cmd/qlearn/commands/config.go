package commands

import (
	"github.com/spf13/cobra"

	"github.com/teranos/qlearn/am"
	"github.com/teranos/qlearn/errors"
)

// loadConfig loads the configuration and applies the --table flag when set
func loadConfig(cmd *cobra.Command) (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}

	// Commands mutate their copy with flag overrides
	local := *cfg
	local.Agent.Actions = append([]string(nil), cfg.Agent.Actions...)

	if cmd.Flags().Changed("table") {
		local.Table.Path, _ = cmd.Flags().GetString("table")
	}
	return &local, nil
}

// verbosity returns the -v count of the invocation
func verbosity(cmd *cobra.Command) int {
	v, _ := cmd.Flags().GetCount("verbose")
	return v
}
