package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/guidepro/guidepro/internal/assistant"
	"github.com/guidepro/guidepro/internal/conversation"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with GuidePro in the terminal",
	Long: `Starts an interactive chat. Ask about your uploaded documents, chat about
travel, or say "book hotel" to make a reservation. Type "exit" or press Ctrl+D
to quit.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().Bool("persist", false, "store the conversation in the database")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	persist, _ := cmd.Flags().GetBool("persist")

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var store conversation.Store = conversation.NewMemoryStore()
	if persist {
		store = conversation.NewSQLiteStore(a.db)
	}
	asst, err := a.assistant(store)
	if err != nil {
		return err
	}

	conv, err := asst.StartConversation(ctx, "cli")
	if err != nil {
		return err
	}
	fmt.Printf("GuidePro: %s\n\n", conversation.Greeting)

	for {
		prompt := promptui.Prompt{Label: "You"}
		input, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				fmt.Println("Goodbye!")
				return nil
			}
			return err
		}
		if strings.EqualFold(strings.TrimSpace(input), "exit") {
			fmt.Println("Goodbye!")
			return nil
		}

		reply, err := asst.HandleMessage(ctx, conv.ID, input)
		if errors.Is(err, assistant.ErrEmptyMessage) {
			continue
		}
		if err != nil {
			return err
		}
		fmt.Printf("\nGuidePro: %s\n\n", reply.Text)
	}
}
