package main

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/amp-labs/amp-tablecheck/cli"
	"github.com/amp-labs/amp-tablecheck/predicate"
	"github.com/amp-labs/amp-tablecheck/schema"
	"github.com/amp-labs/amp-tablecheck/table"
	"github.com/amp-labs/amp-tablecheck/tableio"
	"github.com/amp-labs/amp-tablecheck/validate"
	"github.com/spf13/cobra"
)

var (
	errNoSource  = errors.New("exactly one of --data or --sqlite must be given")
	errNoQuery   = errors.New("--query is required with --sqlite")
	errDelimiter = errors.New("--delimiter must be a single character")
)

type validateFlags struct {
	schemaPath  string
	dataPath    string
	parquet     bool
	sqlitePath  string
	query       string
	format      string
	raise       bool
	concurrency int
	sampleSize  int
	delimiter   string
	charset     string
	nullTokens  []string
	noInfer     bool
}

func newValidateCmd(a *app) *cobra.Command {
	var f validateFlags

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a table against a schema",
		Example: `  tablecheck validate --schema customers.yaml --data customers.csv.gz
  tablecheck validate -s rules.toml --data events.parquet --format json
  tablecheck validate -s rules.yaml --sqlite app.db --query "SELECT * FROM users"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.validate(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.schemaPath, "schema", "s", "", "schema file (.yaml, .json or .toml)")
	flags.StringVarP(&f.dataPath, "data", "d", "", "data file (.csv, .tsv, .txt or .parquet, optionally compressed)")
	flags.BoolVar(&f.parquet, "parquet", false, "read --data as Parquet whatever its extension")
	flags.StringVar(&f.sqlitePath, "sqlite", "", "SQLite database to query instead of a data file")
	flags.StringVar(&f.query, "query", "", "query to run against --sqlite")
	flags.StringVarP(&f.format, "format", "f", string(cli.FormatText), "report format: text or json")
	flags.BoolVar(&f.raise, "raise", false, "report a failed run as an error (default from TABLECHECK_RAISE_ON_ERROR)")
	flags.IntVar(&f.concurrency, "concurrency", 0, "column check workers (default from TABLECHECK_CONCURRENCY)")
	flags.IntVar(&f.sampleSize, "sample-size", 0, "offending values kept per violation (default from TABLECHECK_SAMPLE_SIZE)")
	flags.StringVar(&f.delimiter, "delimiter", "", "CSV field delimiter (default ',' or tab for .tsv)")
	flags.StringVar(&f.charset, "charset", "", "CSV character encoding, detected when empty")
	flags.StringSliceVar(&f.nullTokens, "null-token", nil,
		"CSV cell text read as null (repeatable, default from TABLECHECK_NULL_TOKENS)")
	flags.BoolVar(&f.noInfer, "no-infer", false, "keep CSV cells as strings instead of inferring kinds")

	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

func (a *app) validate(cmd *cobra.Command, f validateFlags) error {
	ctx := cmd.Context()

	format, err := cli.ParseFormat(f.format)
	if err != nil {
		return usageError(err)
	}

	s, err := schema.LoadFile(f.schemaPath, predicate.Default())
	if err != nil {
		return usageError(fmt.Errorf("loading schema: %w", err))
	}

	frame, err := a.loadTable(ctx, f)
	if err != nil {
		return usageError(fmt.Errorf("loading table: %w", err))
	}

	opts := []validate.Option{validate.WithConfig(a.cfg)}

	if cmd.Flags().Changed("raise") {
		opts = append(opts, validate.WithRaiseOnError(f.raise))
	}

	if cmd.Flags().Changed("concurrency") {
		opts = append(opts, validate.WithConcurrency(f.concurrency))
	}

	if cmd.Flags().Changed("sample-size") {
		opts = append(opts, validate.WithSampleSize(f.sampleSize))
	}

	report, err := validate.Validate(ctx, frame, s, opts...)
	if report == nil {
		return usageError(err)
	}

	if renderErr := cli.Render(a.stdout, report, format); renderErr != nil {
		return usageError(renderErr)
	}

	if !report.IsValid() {
		// With raise on, err is the FailedError and its summary is printed too.
		return &exitError{code: exitInvalid, err: err}
	}

	return nil
}

func (a *app) loadTable(ctx context.Context, f validateFlags) (*table.Frame, error) {
	switch {
	case f.dataPath != "" && f.sqlitePath == "":
		if f.parquet {
			return tableio.ReadParquetFile(ctx, f.dataPath)
		}

		opts, err := csvOptions(f, a.cfg.NullTokens)
		if err != nil {
			return nil, err
		}

		return tableio.OpenFile(ctx, f.dataPath, opts...)
	case f.sqlitePath != "" && f.dataPath == "":
		if f.query == "" {
			return nil, errNoQuery
		}

		return tableio.QuerySQLite(ctx, f.sqlitePath, f.query)
	default:
		return nil, errNoSource
	}
}

// csvOptions turns the CSV flags into reader options. Tokens from the
// environment extend the empty cell; --null-token replaces the set outright.
func csvOptions(f validateFlags, envNullTokens []string) ([]tableio.CSVOption, error) {
	var opts []tableio.CSVOption

	if f.delimiter != "" {
		delim, size := utf8.DecodeRuneInString(f.delimiter)
		if size != len(f.delimiter) {
			return nil, fmt.Errorf("%w, got %q", errDelimiter, f.delimiter)
		}

		opts = append(opts, tableio.WithDelimiter(delim))
	}

	if f.charset != "" {
		opts = append(opts, tableio.WithCharset(f.charset))
	}

	switch {
	case f.nullTokens != nil:
		opts = append(opts, tableio.WithNullTokens(f.nullTokens...))
	case envNullTokens != nil:
		opts = append(opts, tableio.WithNullTokens(append([]string{""}, envNullTokens...)...))
	}

	if f.noInfer {
		opts = append(opts, tableio.WithoutInference())
	}

	return opts, nil
}
