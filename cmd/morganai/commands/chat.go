package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/morganstate-cs/morganai/pkg/chatsock"
	"github.com/morganstate-cs/morganai/pkg/cli"
)

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask the assistant a question",
	Long: `Ask the assistant one question, or stream the answer over the chat
WebSocket with --stream. Use --thread to continue a conversation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newAPIClient()
		if err != nil {
			return err
		}
		if client.token == "" {
			return fmt.Errorf("not logged in; run 'morganai login' first")
		}
		threadID, _ := cmd.Flags().GetString("thread")
		stream, _ := cmd.Flags().GetBool("stream")
		list, _ := cmd.Flags().GetBool("threads")

		if list {
			var threads []map[string]any
			if err := client.do("GET", "/api/chat/threads", nil, &threads); err != nil {
				return err
			}
			return cli.Output(threads, cli.OutputOptions{})
		}

		if len(args) == 0 {
			return fmt.Errorf("a question is required")
		}
		question := args[0]

		if stream {
			return streamChat(cmd.Context(), client, threadID, question)
		}

		var reply struct {
			ThreadID string `json:"thread_id"`
			Response string `json:"response"`
			Sources  []struct {
				Source string  `json:"source"`
				Score  float32 `json:"score"`
			} `json:"sources"`
		}
		if err := client.do("POST", "/api/chat", map[string]string{
			"message": question, "thread_id": threadID,
		}, &reply); err != nil {
			return err
		}

		fmt.Println(reply.Response)
		if len(reply.Sources) > 0 {
			var names []string
			for _, s := range reply.Sources {
				names = append(names, s.Source)
			}
			cli.PrintInfo("sources: %s", strings.Join(names, ", "))
		}
		cli.PrintInfo("thread: %s", reply.ThreadID)
		return nil
	},
}

// streamChat prints the answer incrementally over the chat WebSocket.
func streamChat(ctx context.Context, client *apiClient, threadID, question string) error {
	wsURL := strings.Replace(client.base, "http", "ws", 1) + "/api/chat/ws"

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var streamErr error
	sock := chatsock.New(wsURL, func(msg *chatsock.Message) {
		switch msg.Type {
		case "delta":
			fmt.Print(msg.Content)
		case "done":
			fmt.Println()
			cli.PrintInfo("thread: %s", msg.ThreadID)
			cancel()
		case "error":
			streamErr = fmt.Errorf("%s", msg.Error)
			cancel()
		}
	}, chatsock.WithToken(client.token), chatsock.WithLogger(newLogger()))

	runErr := make(chan error, 1)
	go func() { runErr <- sock.Run(ctx) }()

	// Wait for the channel to come up before sending.
	for {
		err := sock.Send(&chatsock.Message{Type: "message", ThreadID: threadID, Content: question})
		if err == nil {
			break
		}
		select {
		case err := <-runErr:
			return err
		case <-ctx.Done():
			return streamErr
		case <-time.After(50 * time.Millisecond):
		}
	}

	<-ctx.Done()
	if streamErr != nil {
		return streamErr
	}
	return nil
}

var summaryCmd = &cobra.Command{
	Use:   "summary <thread-id>",
	Short: "Summarize a conversation thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		client, _, err := newAPIClient()
		if err != nil {
			return err
		}
		var out struct {
			Summary string `json:"summary"`
		}
		if err := client.do("POST", "/api/chat/threads/"+args[0]+"/summary", nil, &out); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, out.Summary)
		return nil
	},
}

func init() {
	chatCmd.Flags().String("thread", "", "continue an existing thread")
	chatCmd.Flags().Bool("stream", false, "stream the answer over WebSocket")
	chatCmd.Flags().Bool("threads", false, "list threads instead of asking")
	rootCmd.AddCommand(chatCmd, summaryCmd)
}
