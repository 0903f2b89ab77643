package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/morganstate-cs/morganai/pkg/auth"
	"github.com/morganstate-cs/morganai/pkg/chat"
	"github.com/morganstate-cs/morganai/pkg/cli"
	"github.com/morganstate-cs/morganai/pkg/embed"
	"github.com/morganstate-cs/morganai/pkg/httpapi"
	"github.com/morganstate-cs/morganai/pkg/internships"
	"github.com/morganstate-cs/morganai/pkg/kb"
	"github.com/morganstate-cs/morganai/pkg/kv"
	"github.com/morganstate-cs/morganai/pkg/speech"
	"github.com/morganstate-cs/morganai/pkg/storage"
	"github.com/morganstate-cs/morganai/pkg/vecstore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the assistant API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cctx, err := currentContext()
		if err != nil {
			return err
		}
		if cctx.OpenAIKey == "" {
			return fmt.Errorf("context %q has no openai-key; run 'morganai config set'", cctx.Name)
		}
		if cctx.Secret == "" {
			return fmt.Errorf("context %q has no signing secret; run 'morganai config set'", cctx.Name)
		}
		addr, _ := cmd.Flags().GetString("addr")
		ephemeral, _ := cmd.Flags().GetBool("ephemeral")
		logger := newLogger()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dataDir := cctx.DataDir
		docsDir := ""
		if dataDir == "" {
			paths, err := cli.NewPaths()
			if err != nil {
				return err
			}
			if err := paths.EnsureAll(); err != nil {
				return err
			}
			dataDir = paths.DataPath("kv")
			docsDir = paths.DocsDir()
		} else {
			docsDir = dataDir + "/documents"
			dataDir = dataDir + "/kv"
		}

		var store kv.Store
		if ephemeral {
			store = kv.NewMemory()
		} else {
			store, err = kv.NewBadger(kv.BadgerOptions{Dir: dataDir, Logger: logger})
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
		}
		defer store.Close()

		docs, err := storage.NewLocal(docsDir)
		if err != nil {
			return fmt.Errorf("open document archive: %w", err)
		}

		index, err := vecstore.NewPersistent(ctx, store)
		if err != nil {
			return fmt.Errorf("load vector index: %w", err)
		}

		embedder := embed.NewOpenAI(cctx.OpenAIKey)
		knowledge := kb.New(embedder, index,
			kb.WithLogger(logger),
			kb.WithDocumentStore(docs))

		var completerOpts []chat.OpenAIOption
		if cctx.Model != "" {
			completerOpts = append(completerOpts, chat.WithModel(cctx.Model))
		}
		chatSvc := chat.New(
			chat.NewOpenAI(cctx.OpenAIKey, completerOpts...),
			chat.NewThreadStore(store),
			chat.WithRetriever(knowledge),
			chat.WithLogger(logger))

		var speechOpts []speech.Option
		if cctx.Voice != "" {
			speechOpts = append(speechOpts, speech.WithDefaultVoice(speech.Voice(cctx.Voice)))
		}
		voice := speech.NewOpenAI(cctx.OpenAIKey, speechOpts...)

		apiOpts := []httpapi.Option{
			httpapi.WithLogger(logger),
			httpapi.WithKnowledgeBase(knowledge, docs),
			httpapi.WithSpeech(voice, voice),
		}
		if cctx.GroupMeToken != "" && cctx.GroupMeGroup != "" {
			feed := internships.NewGroupMe(cctx.GroupMeToken, cctx.GroupMeGroup)
			apiOpts = append(apiOpts, httpapi.WithInternships(internships.New(store, feed)))
			logger.Info("internship board enabled", "group", cctx.GroupMeGroup)
		}

		api := httpapi.New(
			auth.NewUsers(store),
			auth.NewTokens([]byte(cctx.Secret)),
			chatSvc,
			apiOpts...)

		logger.Info("starting server", "addr", addr, "ephemeral", ephemeral)
		return api.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8000", "listen address")
	serveCmd.Flags().Bool("ephemeral", false, "keep all state in memory")
	rootCmd.AddCommand(serveCmd)
}
