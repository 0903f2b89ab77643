package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/morganstate-cs/morganai/pkg/cli"
	"github.com/morganstate-cs/morganai/pkg/embed"
	"github.com/morganstate-cs/morganai/pkg/kb"
	"github.com/morganstate-cs/morganai/pkg/kv"
	"github.com/morganstate-cs/morganai/pkg/storage"
	"github.com/morganstate-cs/morganai/pkg/vecstore"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Index documents into the knowledge base",
	Long: `Copy documents into the local archive and index them for retrieval.
This works directly against the server's data directory, so run it on
the machine that serves (or before starting the server).

With --all, the whole archive is re-embedded and re-indexed instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cctx, err := currentContext()
		if err != nil {
			return err
		}
		if cctx.OpenAIKey == "" {
			return fmt.Errorf("context %q has no openai-key", cctx.Name)
		}
		all, _ := cmd.Flags().GetBool("all")
		if !all && len(args) == 0 {
			return fmt.Errorf("give files to ingest, or --all to reindex the archive")
		}
		logger := newLogger()
		ctx := cmd.Context()

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
			docsDir = filepath.Join(dataDir, "documents")
			dataDir = filepath.Join(dataDir, "kv")
		}

		store, err := kv.NewBadger(kv.BadgerOptions{Dir: dataDir, Logger: logger})
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()

		docs, err := storage.NewLocal(docsDir)
		if err != nil {
			return err
		}
		index, err := vecstore.NewPersistent(ctx, store)
		if err != nil {
			return err
		}
		knowledge := kb.New(embed.NewOpenAI(cctx.OpenAIKey), index,
			kb.WithLogger(logger),
			kb.WithDocumentStore(docs))

		if all {
			chunks, err := knowledge.ReindexAll(ctx)
			if err != nil {
				return err
			}
			cli.PrintSuccess("reindexed archive: %d chunks", chunks)
			return nil
		}

		total := 0
		for _, path := range args {
			name := filepath.Base(path)
			if err := copyIntoArchive(ctx, docs, path, name); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			chunks, err := knowledge.IngestDocument(ctx, name)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			cli.PrintSuccess("%s: %d chunks", name, chunks)
			total += chunks
		}
		cli.PrintInfo("indexed %d files, %d chunks", len(args), total)
		return nil
	},
}

func copyIntoArchive(ctx context.Context, docs storage.DocumentStore, src, name string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	w, err := docs.Write(ctx, name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func init() {
	ingestCmd.Flags().Bool("all", false, "re-embed and re-index the whole archive")
	rootCmd.AddCommand(ingestCmd)
}
