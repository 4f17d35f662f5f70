package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docquery/internal/domain"
)

var (
	askURL       string
	askQuestions []string
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer questions against a remote document",
	Long: `Download a document, retrieve relevant passages and answer each question.

Examples:
  docquery ask -u https://example.com/policy.pdf -q "What is the grace period?"
  docquery ask -u https://example.com/policy.pdf -q "Grace period?" -q "Waiting period?"`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askURL, "url", "u", "", "document URL (required)")
	askCmd.Flags().StringArrayVarP(&askQuestions, "question", "q", nil, "question to answer (repeatable, required)")
	askCmd.MarkFlagRequired("url")
	askCmd.MarkFlagRequired("question")
}

func runAsk(cmd *cobra.Command, args []string) error {
	engine, cleanup, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	bar := progressbar.NewOptions(len(askQuestions),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Answering"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	// One question per call keeps the progress bar honest; the document is
	// chunked once and served from cache on every following question.
	answers := make([]string, len(askQuestions))
	for i, question := range askQuestions {
		resp := engine.Process(domain.QueryRequest{
			Documents: askURL,
			Questions: []string{question},
		})
		answers[i] = resp.Answers[0]
		bar.Add(1)
	}

	for i, question := range askQuestions {
		fmt.Printf("--- [%d] %s\n%s\n\n", i+1, question, answers[i])
	}
	return nil
}
