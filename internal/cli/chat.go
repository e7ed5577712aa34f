package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatUser string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive session over your past conversations",
	Long: `Start a conversational session. Follow-up questions are refined
against the session history, so "what about the second one?" works.

On a terminal this runs a prompt/answer loop; with piped input it answers
one question per line.

Examples:
  recall chat --user alice
  echo "what did we decide about pricing?" | recall chat --user alice`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatUser, "user", "u", "", "user identity to search as (required)")
	_ = chatCmd.MarkFlagRequired("user")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	manager, cleanup, err := buildManager(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	pipeline, err := manager.GetOrCreate(chatUser)
	if err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Println(idStyle.Render("recall " + Version + " (ctrl-d to exit)"))
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Print(promptStyle.Render("you> "))
		}
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}

		result, err := pipeline.Query(ctx, question)
		if err != nil {
			fmt.Println(errorStyle.Render("could not generate a response"))
			continue
		}

		printResult(result)
		if interactive {
			fmt.Println()
		}
	}
	return scanner.Err()
}
