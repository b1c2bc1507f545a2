package main

import (
	"fmt"
	"strings"

	"github.com/amp-labs/amp-tablecheck/predicate"
	"github.com/amp-labs/amp-tablecheck/schema"
	"github.com/spf13/cobra"
)

func newSchemaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect and convert schema files",
	}

	cmd.AddCommand(newSchemaCheckCmd(a), newSchemaFmtCmd(a))

	return cmd
}

func newSchemaCheckCmd(a *app) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load a schema and report its columns and digest",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			s, err := schema.LoadFile(path, predicate.Default())
			if err != nil {
				return usageError(err)
			}

			_, err = fmt.Fprintf(a.stdout, "schema ok: %d columns (%s)\ndigest: %s\n",
				s.Len(), strings.Join(s.Columns(), ", "), s.Digest())

			return err
		},
	}

	cmd.Flags().StringVarP(&path, "schema", "s", "", "schema file (.yaml, .json or .toml)")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

func newSchemaFmtCmd(a *app) *cobra.Command {
	var path, to string

	cmd := &cobra.Command{
		Use:   "fmt",
		Short: "Re-encode a schema, optionally in another format",
		Example: `  tablecheck schema fmt --schema rules.yaml --to toml > rules.toml`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			s, err := schema.LoadFile(path, predicate.Default())
			if err != nil {
				return usageError(err)
			}

			format, err := schema.FormatFromPath(path)
			if to != "" {
				format, err = schema.ParseFormat(to)
			}

			if err != nil {
				return usageError(err)
			}

			out, err := schema.Encode(s, format)
			if err != nil {
				return usageError(err)
			}

			_, err = a.stdout.Write(out)

			return err
		},
	}

	cmd.Flags().StringVarP(&path, "schema", "s", "", "schema file (.yaml, .json or .toml)")
	cmd.Flags().StringVar(&to, "to", "", "output format: yaml, json or toml (default: same as input)")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}
