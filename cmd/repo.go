package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/ini.v1"
)

var (
	repoBranch      string
	repoMessagePath string
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage mirror repositories",
}

var repoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured mirror repositories",
	RunE:  runRepoList,
}

var repoAddCmd = &cobra.Command{
	Use:   "add <owner/name>",
	Short: "Add a mirror repository to the settings file",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepoAdd,
}

func init() {
	repoAddCmd.Flags().StringVar(&repoBranch, "branch", "main", "branch messages are committed to")
	repoAddCmd.Flags().StringVar(&repoMessagePath, "message-path", "messages", "directory holding message blobs")

	repoCmd.AddCommand(repoListCmd, repoAddCmd)
	rootCmd.AddCommand(repoCmd)
}

func runRepoList(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if len(cfg.Repositories) == 0 {
		fmt.Println("No repositories configured.")
		return nil
	}

	for i, repo := range cfg.Repositories {
		marker := " "
		if i == 0 {
			// First entry is the default write target.
			marker = "*"
		}

		fmt.Printf("%s %s (branch %s, path %s)\n", marker, repo.FullName(), repo.Branch, repo.MessagePath)
	}

	return nil
}

func runRepoAdd(_ *cobra.Command, args []string) error {
	full := args[0]

	owner, name, ok := strings.Cut(full, "/")
	if !ok || owner == "" || name == "" {
		return fmt.Errorf("invalid repository %q: want owner/name", full)
	}

	f, err := ini.LooseLoad(configPath)
	if err != nil {
		return fmt.Errorf("loading settings file: %w", err)
	}

	sec := f.Section(fmt.Sprintf("repository %q", full))
	sec.Key("branch").SetValue(repoBranch)
	sec.Key("message_path").SetValue(repoMessagePath)

	if err := saveSettings(f); err != nil {
		return err
	}

	fmt.Printf("Added repository %s\n", full)

	return nil
}
