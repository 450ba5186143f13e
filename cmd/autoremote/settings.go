package main

import (
	"encoding/json"
	"fmt"
	"os"

	"autoremote/internal/settings"
	"autoremote/internal/util"

	"github.com/spf13/cobra"
)

func newSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and change stored settings",
	}
	cmd.AddCommand(
		newSettingsListCommand(),
		newSettingsGetCommand(),
		newSettingsSetCommand(),
		newSettingsImportCommand(),
	)
	return cmd
}

func newSettingsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored setting names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			names, err := e.store.Names()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newSettingsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Print a setting as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			raw, ok, err := e.store.Get(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("setting %s is not set", args[0])
			}

			if args[0] == settings.NameKey {
				var key string
				if err := json.Unmarshal(raw, &key); err == nil {
					raw, _ = json.Marshal(util.MaskSecret(key))
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		},
	}
}

func newSettingsSetCommand() *cobra.Command {
	var asString bool
	cmd := &cobra.Command{
		Use:   "set <name> <json-value>",
		Short: "Store a setting (value is JSON unless --string is given)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			name, value := args[0], args[1]
			if asString {
				err = e.store.Set(name, value)
			} else {
				err = e.store.SetRaw(name, json.RawMessage(value))
			}
			if err != nil {
				return err
			}
			if err := e.store.Persist(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&asString, "string", "s", false, "store the value as a plain string")
	return cmd
}

func newSettingsImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import settings from a JSON file such as AutoRemote.sublime-settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			names, err := e.store.Import(f)
			if err != nil {
				return err
			}
			if err := e.store.Persist(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d settings\n", len(names))
			return nil
		},
	}
}
