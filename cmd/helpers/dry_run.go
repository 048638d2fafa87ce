package helpers

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"strings"
)

var secretKeys = []string{"password", "secret", "passphrase", "token"}

// Redact returns a copy of config with secret values masked, descending
// into nested objects such as the sftp options bag.
func Redact(config map[string]any) map[string]any {
	out := maps.Clone(config)
	for k, v := range out {
		if nested, ok := v.(map[string]any); ok {
			out[k] = Redact(nested)
			continue
		}
		lower := strings.ToLower(k)
		for _, s := range secretKeys {
			if strings.Contains(lower, s) {
				out[k] = "********"
				break
			}
		}
	}
	return out
}

// PrintEngineInfo prints engine configuration in verbose/dry-run mode
func PrintEngineInfo(w io.Writer, engine string, config map[string]any, dryRun bool) {
	header := "Engine Configuration"
	if dryRun {
		header = "Engine Configuration (DRY RUN)"
	}

	fmt.Fprintln(w, "========================================")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Engine:         %s\n", engine)

	jsonBytes, err := json.MarshalIndent(Redact(config), "", "  ")
	if err != nil {
		fmt.Fprintf(w, "  %v\n", config)
	} else {
		fmt.Fprintf(w, "%s\n", string(jsonBytes))
	}

	fmt.Fprintln(w, "----------------------------------------")
}
