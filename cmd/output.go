package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mapmania/geoprep/internal/geofile"
)

// emit writes data to path, or to the command's stdout when path is empty
// or "-".
func emit(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return geofile.WriteFile(path, data)
}

// printList prints a heading and one "- item" line per entry, or none when
// items is empty.
func printList(w io.Writer, heading string, items []string) {
	fmt.Fprintf(w, "%s (%d):\n", heading, len(items))
	if len(items) == 0 {
		fmt.Fprintln(w, "  none")
		return
	}
	for _, it := range items {
		fmt.Fprintf(w, "- %s\n", it)
	}
}
