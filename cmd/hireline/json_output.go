package main

import (
	"encoding/json"
	"fmt"
	"io"
)

// printJSON renders a payload as indented JSON for the --json flag.
func printJSON(w io.Writer, payload any) error {
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}
