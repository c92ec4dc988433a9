package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/stringsvc/internal/filter"
	"github.com/roach88/stringsvc/internal/phrase"
)

// ParseResult is the JSON payload of the parse command. It matches the
// interpreted_query object returned by the HTTP API.
type ParseResult struct {
	Original      string     `json:"original"`
	ParsedFilters filter.Set `json:"parsed_filters"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <query>",
		Short: "Show the filters a natural-language query maps to",
		Long: `Parse a natural-language query the way
GET /strings/filter-by-natural-language does and print the filters.

Exits with status 1 when no known phrase is found.

Example:
  stringsvc parse "single word palindromic strings"
  stringsvc parse --format json "strings longer than 10 containing the letter z"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}
			return runParse(formatter, args[0])
		},
	}
}

func runParse(formatter *OutputFormatter, query string) error {
	set, err := phrase.Parse(query)
	if err != nil {
		_ = formatter.Error(ErrCodeUnparseable, "unable to parse natural language query",
			map[string]string{"query": query})
		return WrapExitError(ExitFailure, "unparseable query", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ParseResult{Original: query, ParsedFilters: set})
	}
	return formatter.Success(set.String())
}
