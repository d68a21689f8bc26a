package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var (
	postAuthor string
	postRepo   string
)

var postCmd = &cobra.Command{
	Use:   "post <message>",
	Short: "Post a message to the board",
	Long: `Post a message. The message is written to the local store first and then
mirrored to a configured repository; a mirror failure never loses the post.`,
	Args: cobra.ExactArgs(1),
	RunE: runPost,
}

func init() {
	postCmd.Flags().StringVarP(&postAuthor, "author", "a", "", "author name")
	postCmd.Flags().StringVarP(&postRepo, "repository", "r", "", "target repository (owner/name)")
	rootCmd.AddCommand(postCmd)
}

func runPost(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, st, err := newService(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	msg, err := svc.Post(cmd.Context(), args[0], postAuthor, postRepo)
	if err != nil {
		return err
	}

	fmt.Printf("Posted message %d at %s\n", msg.ID, msg.Timestamp)

	if msg.RemoteRef != "" {
		fmt.Printf("Mirrored: %s\n", msg.RemoteRef)
	}

	return nil
}
