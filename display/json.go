package display

import (
	"encoding/json"
	"os"
)

// CompactEnv switches JSON output to single-line documents when set, for
// piping into line-oriented tools.
const CompactEnv = "QLEARN_COMPACT_JSON"

// MarshalJSON marshals v indented for humans, or compact when CompactEnv is set
func MarshalJSON(v interface{}) ([]byte, error) {
	if os.Getenv(CompactEnv) != "" {
		return json.Marshal(v)
	}
	return json.MarshalIndent(v, "", "  ")
}
