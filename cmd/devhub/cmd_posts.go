package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mrJackie7/coderdev-hub/pkg/client"

	"github.com/spf13/cobra"
)

// postsCmd groups the discussion feed commands
var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Read and write posts",
	Long: `Read and write posts. All post commands require a login.

Available subcommands:
  list       - List posts, newest first
  show       - Show a post with its comments
  create     - Publish a post
  delete     - Delete one of your posts
  like       - Like a post
  unlike     - Remove your like
  comment    - Comment on a post
  uncomment  - Delete a comment`,
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List posts, newest first",
	Args:  cobra.NoArgs,
	RunE: postAction(func(ctx context.Context, w io.Writer, store *client.Store, args []string) error {
		if err := store.GetPosts(ctx); err != nil {
			return err
		}
		for _, p := range store.State().Post.Posts {
			printPostSummary(w, p)
		}
		return nil
	}),
}

var postsShowCmd = &cobra.Command{
	Use:   "show <post-id>",
	Short: "Show a post with its comments",
	Args:  cobra.ExactArgs(1),
	RunE: postAction(func(ctx context.Context, w io.Writer, store *client.Store, args []string) error {
		if err := store.GetPost(ctx, args[0]); err != nil {
			return err
		}
		post := store.State().Post.Post
		printPostSummary(w, *post)
		for _, c := range post.Comments {
			fmt.Fprintf(w, "  [%s] %s (%s): %s\n", c.ID, c.Name, c.Date.Format("2006/01/02"), c.Text)
		}
		return nil
	}),
}

var postsCreateCmd = &cobra.Command{
	Use:   "create <text>",
	Short: "Publish a post",
	Args:  cobra.MinimumNArgs(1),
	RunE: postAction(func(ctx context.Context, w io.Writer, store *client.Store, args []string) error {
		if err := store.AddPost(ctx, strings.Join(args, " ")); err != nil {
			return err
		}
		printPostSummary(w, store.State().Post.Posts[0])
		return nil
	}),
}

var postsDeleteCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Delete one of your posts",
	Args:  cobra.ExactArgs(1),
	RunE: postAction(func(ctx context.Context, w io.Writer, store *client.Store, args []string) error {
		return store.DeletePost(ctx, args[0])
	}),
}

var postsLikeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Like a post",
	Args:  cobra.ExactArgs(1),
	RunE: postAction(func(ctx context.Context, w io.Writer, store *client.Store, args []string) error {
		return likeResult(w, store, args[0], store.AddLike(ctx, args[0]))
	}),
}

var postsUnlikeCmd = &cobra.Command{
	Use:   "unlike <post-id>",
	Short: "Remove your like from a post",
	Args:  cobra.ExactArgs(1),
	RunE: postAction(func(ctx context.Context, w io.Writer, store *client.Store, args []string) error {
		return likeResult(w, store, args[0], store.RemoveLike(ctx, args[0]))
	}),
}

var postsCommentCmd = &cobra.Command{
	Use:   "comment <post-id> <text>",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	RunE: postAction(func(ctx context.Context, w io.Writer, store *client.Store, args []string) error {
		// load the post first so the new comment list lands on it
		if err := store.GetPost(ctx, args[0]); err != nil {
			return err
		}
		return store.AddComment(ctx, args[0], strings.Join(args[1:], " "))
	}),
}

var postsUncommentCmd = &cobra.Command{
	Use:   "uncomment <post-id> <comment-id>",
	Short: "Delete a comment",
	Args:  cobra.ExactArgs(2),
	RunE: postAction(func(ctx context.Context, w io.Writer, store *client.Store, args []string) error {
		return store.DeleteComment(ctx, args[0], args[1])
	}),
}

// feedCmd streams realtime post events
var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Stream realtime post activity until interrupted",
	RunE:  runFeed,
}

func init() {
	postsCmd.AddCommand(postsListCmd, postsShowCmd, postsCreateCmd, postsDeleteCmd)
	postsCmd.AddCommand(postsLikeCmd, postsUnlikeCmd, postsCommentCmd, postsUncommentCmd)
}

func postAction(fn func(ctx context.Context, w io.Writer, store *client.Store, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store *client.Store) error {
			if err := requireLogin(store); err != nil {
				return err
			}
			return fn(ctx, cmd.OutOrStdout(), store, args)
		})
	}
}

func likeResult(w io.Writer, store *client.Store, postID string, err error) error {
	if err != nil {
		if st := store.State().Post.Error; st != nil && len(st.Errors) > 0 {
			return errors.New(st.Errors[0].Msg)
		}
		return err
	}
	fmt.Fprintf(w, "%s\n", postID)
	return nil
}

func printPostSummary(w io.Writer, p client.Post) {
	fmt.Fprintf(w, "[%s] %s on %s\n", p.ID, p.Name, p.Date.Format("2006/01/02"))
	fmt.Fprintf(w, "  %s\n", p.Text)
	fmt.Fprintf(w, "  likes:%d comments:%d\n", len(p.Likes), len(p.Comments))
}

func runFeed(cmd *cobra.Command, args []string) error {
	path, err := resolveSessionPath(sessionFile)
	if err != nil {
		return err
	}
	sess, err := loadSession(path)
	if err != nil {
		return err
	}
	if !sess.Authenticated() {
		return fmt.Errorf("not logged in, run 'devhub login' first")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	events, err := client.New(apiURL).Feed(ctx, sess)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for ev := range events {
		fmt.Fprintf(w, "%s %s\n", ev.Type, ev.Payload)
	}
	return nil
}
