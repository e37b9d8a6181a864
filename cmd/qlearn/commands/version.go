package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/qlearn/display"
	"github.com/teranos/qlearn/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show qlearn version information",
	Long:  `Display version, build time, commit hash, and platform information for the qlearn binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()

		info := version.Get()

		if display.ShouldOutputJSON(cmd) {
			if err := display.OutputJSON(out, info); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error formatting JSON: %v\n", err)
			}
		} else {
			fmt.Fprintln(out, info.String())
			fmt.Fprintf(out, "Platform: %s\n", info.Platform)
			fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
		}
	},
}

func init() {
	VersionCmd.Flags().BoolP("json", "j", false, "Output version info as JSON")
}
