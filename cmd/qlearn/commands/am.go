package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/qlearn/am"
	"github.com/teranos/qlearn/display"
	"github.com/teranos/qlearn/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage qlearn configuration",
	Long: `am - Manage qlearn configuration ("I am")

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (QLEARN_* prefix, e.g. QLEARN_AGENT_ALPHA)
3. Project config (am.toml in the working directory or a parent)
4. User config (~/.qlearn/am.toml)
5. System config (/etc/qlearn/config.toml)
6. Default values

Examples:
  qlearn am show                  # Show current configuration
  qlearn am show --format json    # Show configuration in JSON format
  qlearn am init                  # Write a default am.toml here
  qlearn am validate              # Validate current configuration
  qlearn am where                 # List the config files consulted`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the effective qlearn configuration from all sources",
	RunE:  runAmShow,
}

var amInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default am.toml",
	Long:  "Write the default configuration to ./am.toml (or path). Existing files are kept unless --force is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAmInit,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	RunE:  runAmWhere,
}

var (
	configFormat string
	initForce    bool
)

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json")
	amInitCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file (old one kept as .back1)")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amInitCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	return showConfig(cfg, configFormat, cmd.OutOrStdout())
}

func showConfig(cfg *am.Config, format string, out io.Writer) error {
	switch format {
	case "json":
		data, err := display.MarshalJSON(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Fprintln(out, string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Fprintf(out, "# qlearn configuration\n%s", string(data))

	default:
		return errors.NewInvalidRequestError("unsupported format: %s (supported: toml, json)", format)
	}
	return nil
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path := "am.toml"
	if len(args) == 1 {
		path = args[0]
	}
	if err := am.WriteDefault(path, initForce); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), pterm.Success.Sprintf("Wrote %s", path))
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration files (lowest precedence first):")
	for _, path := range am.ConfigPaths() {
		status := "missing"
		if _, err := os.Stat(path); err == nil {
			status = "loaded"
		}
		fmt.Fprintf(out, "  %-8s %s\n", status, path)
	}
	fmt.Fprintln(out, "Environment: QLEARN_* variables override files")
	return nil
}
