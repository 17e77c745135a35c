package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"argus/internal/diag"
	"argus/internal/source"
)

// Short prints one line per diagnostic:
// <path>:<line>:<col>: <severity>: <message> [<rule>]
// Grep-friendly; positions are omitted when the finding has none.
func Short(w io.Writer, diags []diag.Diagnostic, fs *source.FileSet) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s: %s: %s [%s]\n",
			locationString(d, fs), strings.ToLower(d.Severity.String()), d.Message, d.Rule)
	}
}
