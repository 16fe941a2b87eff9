package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emit prints v as JSON when --json is set and the output of render
// otherwise.
func emit(ctx *commandContext, cmd *cobra.Command, v any, render func() string) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, v)
	}
	out := render()
	if out == "" {
		return nil
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
