package output

import (
	"encoding/json"
	"io"
)

// WriteJSON writes v as indented JSON followed by a newline. Commands
// pass the engine report here when --json is set; nothing else is
// written to stdout in that mode.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
