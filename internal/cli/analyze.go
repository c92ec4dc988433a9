package cli

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/stringsvc/internal/analysis"
	"github.com/roach88/stringsvc/internal/ir"
)

// AnalyzeResult is the JSON payload of the analyze command.
type AnalyzeResult struct {
	Value      string        `json:"value"`
	Properties ir.Properties `json:"properties"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <value>",
		Short: "Print the properties of a string",
		Long: `Compute the properties the server stores for a string, without storing it.

Example:
  stringsvc analyze "Racecar"
  stringsvc analyze --format json "hello world"`,
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
			return runAnalyze(formatter, args[0])
		},
	}
}

func runAnalyze(formatter *OutputFormatter, value string) error {
	props := analysis.Analyze(value)
	formatter.VerboseLog("analyzed %d character(s)", props.Length)

	rows := [][]string{
		{"value", strconv.Quote(value)},
		{"length", strconv.Itoa(props.Length)},
		{"is_palindrome", strconv.FormatBool(props.IsPalindrome)},
		{"unique_characters", strconv.Itoa(props.UniqueCharacters)},
		{"word_count", strconv.Itoa(props.WordCount)},
		{"sha256_hash", props.SHA256Hash},
		{"character_frequency_map", formatFrequencies(props.CharacterFrequencyMap)},
	}
	return formatter.Table(AnalyzeResult{Value: value, Properties: props},
		[]string{"Property", "Value"}, rows)
}

// formatFrequencies renders counts as "a:2 b:1" in code point order.
func formatFrequencies(freq map[string]int) string {
	parts := make([]string, 0, len(freq))
	for _, k := range slices.Sorted(maps.Keys(freq)) {
		parts = append(parts, fmt.Sprintf("%s:%d", k, freq[k]))
	}
	return strings.Join(parts, " ")
}
