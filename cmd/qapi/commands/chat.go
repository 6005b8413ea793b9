package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/querio-io/qapi/pkg/qapi"
	"github.com/spf13/cobra"
)

// NewChatCommand creates the chat command group.
func NewChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with your data",
		Long:  "Send chat messages about a project's data and manage conversations",
	}

	cmd.AddCommand(newChatSendCommand())
	cmd.AddCommand(newChatConversationsCommand())

	return cmd
}

func newChatSendCommand() *cobra.Command {
	var (
		projectGUID      string
		conversationGUID string
		noStream         bool
	)

	cmd := &cobra.Command{
		Use:   "send MESSAGE",
		Short: "Send a chat message",
		Long:  "Send a message and print the reply, streamed token by token unless --no-stream is set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectGUID == "" && conversationGUID == "" {
				return ErrProjectRequired
			}

			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			ctx := context.Background()

			request := &qapi.ChatRequest{
				ConversationGUID: conversationGUID,
				ProjectGUID:      projectGUID,
				Message:          args[0],
			}

			if noStream {
				completion, err := client.Chat().Send(ctx, request)
				if err != nil {
					return fmt.Errorf("failed to send message: %w", err)
				}

				fmt.Println(completion.Content)

				return nil
			}

			stream, err := client.Chat().Stream(ctx, request)
			if err != nil {
				return fmt.Errorf("failed to start chat stream: %w", err)
			}

			callbacks := qapi.StreamCallbacks[qapi.ChatCompletion]{
				OnEvent: func(event *qapi.StreamEvent) {
					if event.Kind != qapi.EventKindData {
						return
					}

					if delta, ok := event.Data["delta"].(string); ok {
						fmt.Print(delta)
					}
				},
			}

			result, err := qapi.ProcessStreamOrResult(stream, callbacks)
			if err != nil {
				return fmt.Errorf("reading chat stream: %w", err)
			}

			fmt.Println()

			if _, err := result.Unwrap(); err != nil {
				return fmt.Errorf("chat failed: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&projectGUID, "project", "", "project GUID (starts a new conversation)")
	cmd.Flags().StringVar(&conversationGUID, "conversation", "", "existing conversation GUID")
	cmd.Flags().BoolVar(&noStream, "no-stream", false, "wait for the full reply instead of streaming")

	return cmd
}

func newChatConversationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"convs"},
		Short:   "Manage conversations",
	}

	cmd.AddCommand(newConversationsListCommand())
	cmd.AddCommand(newConversationsCreateCommand())

	return cmd
}

func newConversationsListCommand() *cobra.Command {
	var projectGUID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			params := qapi.NewQueryParams()
			if projectGUID != "" {
				params = params.WithFilter("project_guid", projectGUID)
			}

			conversations, err := client.Chat().ListConversations(context.Background(), params)
			if err != nil {
				return fmt.Errorf("failed to list conversations: %w", err)
			}

			if handled, err := renderOutput(conversations.Resources); handled {
				return err
			}

			if len(conversations.Resources) == 0 {
				_, _ = os.Stdout.WriteString("No conversations found\n")

				return nil
			}

			table := newListTable("GUID", "Title", "Project", "Created")

			for _, conversation := range conversations.Resources {
				_ = table.Append(conversation.GUID, valueOrNA(conversation.Title),
					conversation.ProjectGUID,
					conversation.CreatedAt.Format("2006-01-02"))
			}

			_ = table.Render()

			return nil
		},
	}

	cmd.Flags().StringVar(&projectGUID, "project", "", "filter by project GUID")

	return cmd
}

func newConversationsCreateCommand() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "create PROJECT_GUID",
		Short: "Start a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient(cmd.Flag("api").Value.String())
			if err != nil {
				return err
			}

			conversation, err := client.Chat().CreateConversation(context.Background(), &qapi.ConversationCreateRequest{
				ProjectGUID: args[0],
				Title:       title,
			})
			if err != nil {
				return fmt.Errorf("failed to create conversation: %w", err)
			}

			fmt.Printf("Created conversation %s\n", conversation.GUID)

			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "conversation title")

	return cmd
}
