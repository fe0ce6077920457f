package commands

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/credgate/credgate/pkg/cli"
	"github.com/credgate/credgate/pkg/verdict"
)

// maxCheckRunes caps CLI input well above anything a headline needs.
const maxCheckRunes = 10000

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [text]",
		Short: "Submit text for a credibility verdict",
		Long: `Submit a headline or article text to a running CredGate service and
display the verdict.

The service classifies the text, corroborates it against trusted news
sources and returns REAL, FAKE or INVALID with supporting evidence.

Examples:
  # Check a headline
  cgctl check "Government announces new infrastructure spending"

  # Check an article by URL
  cgctl check --url https://example.com/article

  # Machine-readable output
  cgctl check "headline text" --json`,
		Args: func(cmd *cobra.Command, args []string) error {
			urlFlag, _ := cmd.Flags().GetString("url")
			if len(args) == 0 && urlFlag == "" {
				return fmt.Errorf("provide text to check or --url")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if utf8.RuneCountInString(text) > maxCheckRunes {
				return fmt.Errorf("text too long (max %d characters, got %d)",
					maxCheckRunes, utf8.RuneCountInString(text))
			}

			url, _ := cmd.Flags().GetString("url")
			server := cmd.Parent().Flag("server").Value.String()

			outputFormat := cmd.Parent().Flag("output").Value.String()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				outputFormat = "json"
			}

			client := cli.NewClient(server)
			v, err := client.Check(cmd.Context(), text, url)
			if err != nil {
				return fmt.Errorf("failed to check text: %w", err)
			}

			return displayVerdict(v, outputFormat)
		},
	}

	cmd.Flags().String("url", "", "Article URL to extract and check instead of text")
	cmd.Flags().Bool("json", false, "Print the raw verdict as JSON")

	return cmd
}

func displayVerdict(v *verdict.Verdict, format string) error {
	switch format {
	case "json":
		return cli.PrintJSON(v)
	case "yaml":
		return cli.PrintYAML(v)
	}

	// Table format
	fmt.Println()
	switch v.Prediction {
	case verdict.LabelReal:
		cli.Success(fmt.Sprintf("Verdict: %s", v.Prediction))
	case verdict.LabelFake:
		cli.Error(fmt.Sprintf("Verdict: %s", v.Prediction))
	default:
		cli.Warning(fmt.Sprintf("Verdict: %s", v.Prediction))
	}

	fmt.Printf("Confidence:  %s\n", v.Confidence)
	fmt.Printf("Explanation: %s\n", v.Explanation)

	if v.CorrectedText != "" {
		fmt.Printf("Corrected:   %s\n", v.CorrectedText)
	}
	if v.Language != "" {
		fmt.Printf("Language:    %s\n", v.Language)
	}
	if v.Sentiment != nil {
		fmt.Printf("Sentiment:   %s (polarity %.2f)\n", v.Sentiment.Label, v.Sentiment.Polarity)
	}

	if len(v.Sources) > 0 {
		fmt.Println("\nSources:")
		rows := make([][]string, 0, len(v.Sources))
		for _, s := range v.Sources {
			rows = append(rows, []string{s.Domain, s.Title, s.URL})
		}
		cli.PrintTable([]string{"Domain", "Title", "URL"}, rows)
	}

	if v.Correction != nil {
		fmt.Println("\nFact check:")
		cli.PrintTable([]string{"Domain", "Title", "URL"},
			[][]string{{v.Correction.Domain, v.Correction.Title, v.Correction.URL}})
	}

	return nil
}
