// Package display decides between human and JSON output for commands.
package display

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/teranos/qlearn/errors"
)

// ShouldOutputJSON determines if a command should output JSON based on its flags
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}

	// Check if --json flag was explicitly set
	if cmd.Flags().Lookup("json") != nil {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}

	// Fall back to --format json where a command has it
	if cmd.Flags().Lookup("format") != nil {
		format, _ := cmd.Flags().GetString("format")
		return format == "json"
	}
	return false
}

// OutputJSON marshals v with MarshalJSON and writes it to w
func OutputJSON(w io.Writer, v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON")
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
