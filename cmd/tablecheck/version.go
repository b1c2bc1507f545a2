package main

import (
	"encoding/json"
	"fmt"

	"github.com/amp-labs/amp-tablecheck/build"
	"github.com/spf13/cobra"
)

func newVersionCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			info := build.Current()

			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")

				return enc.Encode(info)
			}

			_, err := fmt.Fprintf(a.stdout, "tablecheck %s\n  Git Commit: %s\n  Go Version: %s\n",
				info.Version, orUnknown(info.GitCommit), orUnknown(info.GoVersion))

			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}

	return s
}
