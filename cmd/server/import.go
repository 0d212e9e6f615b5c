package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChoSeoyoung/tour-project/internal/blog"
	"github.com/ChoSeoyoung/tour-project/pkg/logger"
)

type importFlags struct {
	fromDriver string
	fromDSN    string
	replace    bool
}

func newImportCmd(root *rootFlags) *cobra.Command {
	flags := &importFlags{}
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy posts from another store into the configured one",
		Long: "Copy every post from a source store (by default the JSON file store)\n" +
			"into the configured store. Ids are reassigned by the target; the\n" +
			"oldest post is written first so relative order is kept.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadRuntime(cmd, root)
			if err != nil {
				return err
			}
			ctx := logger.ContextWithLogger(cmd.Context(), log)

			src, err := blog.OpenStore(ctx, blog.StoreConfig{Driver: flags.fromDriver, DSN: flags.fromDSN})
			if err != nil {
				return fmt.Errorf("open source store: %w", err)
			}
			defer src.Close()

			dst, err := openStore(ctx, cfg)
			if err != nil {
				return fmt.Errorf("open target store: %w", err)
			}
			defer dst.Close()

			n, err := importPosts(ctx, src, dst, flags.replace)
			if err != nil {
				return err
			}
			log.Info("Import completed", "posts", n, "from", flags.fromDSN, "to_driver", cfg.Database.Driver)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.fromDriver, "from-driver", blog.DriverFile, "source store driver")
	cmd.Flags().StringVar(&flags.fromDSN, "from", "data/posts.json", "source store DSN or file path")
	cmd.Flags().BoolVar(&flags.replace, "replace", false, "delete all posts in the target before importing")
	return cmd
}

// importPosts copies src into dst inside one target transaction and returns
// the number of posts written.
func importPosts(ctx context.Context, src, dst blog.Store, replace bool) (int, error) {
	posts, err := src.FindAllDesc(ctx)
	if err != nil {
		return 0, fmt.Errorf("read source posts: %w", err)
	}
	log := logger.FromContext(ctx)
	err = dst.WithTransaction(ctx, func(tx blog.Store) error {
		if replace {
			if err := tx.DeleteAll(ctx); err != nil {
				return err
			}
		}
		for i := len(posts) - 1; i >= 0; i-- {
			p := blog.NewPost(posts[i].Title, posts[i].Cost, posts[i].Content)
			if _, err := tx.Save(ctx, p); err != nil {
				return fmt.Errorf("import post %d: %w", posts[i].ID, err)
			}
			log.Debug("Imported post", "source_id", posts[i].ID, "post_id", p.ID)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(posts), nil
}
