package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/ini.v1"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the settings file",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every setting",
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <section.key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <section.key> <value>",
	Short: "Write one setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configListCmd, configGetCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigList(_ *cobra.Command, _ []string) error {
	f, err := ini.LooseLoad(configPath)
	if err != nil {
		return fmt.Errorf("loading settings file: %w", err)
	}

	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection && len(sec.Keys()) == 0 {
			continue
		}

		fmt.Printf("[%s]\n", sec.Name())

		for _, key := range sec.Keys() {
			fmt.Printf("%s = %s\n", key.Name(), key.Value())
		}

		fmt.Println()
	}

	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	section, key, err := splitConfigKey(args[0])
	if err != nil {
		return err
	}

	f, err := ini.LooseLoad(configPath)
	if err != nil {
		return fmt.Errorf("loading settings file: %w", err)
	}

	fmt.Println(f.Section(section).Key(key).Value())

	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	section, key, err := splitConfigKey(args[0])
	if err != nil {
		return err
	}

	f, err := ini.LooseLoad(configPath)
	if err != nil {
		return fmt.Errorf("loading settings file: %w", err)
	}

	f.Section(section).Key(key).SetValue(args[1])

	return saveSettings(f)
}

func splitConfigKey(arg string) (section, key string, err error) {
	section, key, ok := strings.Cut(arg, ".")
	if !ok || section == "" || key == "" {
		return "", "", fmt.Errorf("invalid key %q: want section.key", arg)
	}

	return section, key, nil
}

func saveSettings(f *ini.File) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	if err := f.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving settings file: %w", err)
	}

	return nil
}
