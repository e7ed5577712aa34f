package cli

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/recall-go/internal/client"
	"github.com/raphaelgruber/recall-go/internal/models"
	"github.com/spf13/cobra"
)

var (
	askUser   string
	askRemote bool
	askServer string
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question over your past conversations",
	Long: `Ask a single question and get the conversational answer plus the
matching conversation references.

By default the full pipeline runs in-process against the configured
SurrealDB index and LLM provider. With --remote the question goes to a
running recall server instead.

Examples:
  recall ask --user alice "What did I discuss about golf clubs?"
  recall ask --user alice --remote "When did I plan the Lisbon trip?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askUser, "user", "u", "", "user identity to search as (required)")
	askCmd.Flags().BoolVar(&askRemote, "remote", false, "query a running recall server")
	askCmd.Flags().StringVar(&askServer, "server", "", "server URL for --remote (default RECALL_SERVER_URL)")
	_ = askCmd.MarkFlagRequired("user")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]
	ctx := context.Background()

	var result models.ParsedResult
	var err error

	if askRemote {
		result, err = client.New(askServer).Query(ctx, askUser, question)
	} else {
		m, cleanup, buildErr := buildManager(ctx)
		if buildErr != nil {
			return buildErr
		}
		defer cleanup()

		p, getErr := m.GetOrCreate(askUser)
		if getErr != nil {
			return getErr
		}
		result, err = p.Query(ctx, question)
	}
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	printResult(result)
	return nil
}

// printResult renders the answer and references.
func printResult(result models.ParsedResult) {
	fmt.Println(answerStyle.Render(result.NaturalResponse))

	if len(result.References) == 0 {
		return
	}

	fmt.Println()
	for _, ref := range result.References {
		fmt.Printf("%s %s\n", refStyle.Render("- "+ref.Summary), idStyle.Render("("+ref.ConversationID+")"))
	}
}
