package cmd

import (
	"fmt"
	"log/slog"

	"github.com/inovacc/gitboard/internal/service"

	"github.com/spf13/cobra"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the merged message feed",
	Long: `List messages from the local store and every configured mirror, merged
into one feed ordered by timestamp, newest first.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", service.DefaultListLimit, "maximum number of messages")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, st, err := newService(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	messages, err := svc.List(cmd.Context(), listLimit)
	if err != nil {
		return err
	}

	if len(messages) == 0 {
		fmt.Println("No messages.")
		return nil
	}

	for _, msg := range messages {
		fmt.Printf("%s  %-12s  [%s]  %s\n", msg.Timestamp, msg.Author, msg.Source, msg.Content)
	}

	return nil
}
