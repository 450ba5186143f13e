package main

import (
	"fmt"

	"autoremote/internal/qr"
	"autoremote/internal/util"

	"github.com/spf13/cobra"
)

func newKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the AutoRemote key",
	}
	cmd.AddCommand(newKeySetFromURLCommand(), newKeyShowCommand(), newKeyQRCommand())
	return cmd
}

func newKeySetFromURLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-from-url <url>",
		Short: "Resolve a personal AutoRemote url (or shortlink) and store its key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			key, err := e.dispatcher.SetKeyFromURL(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to parse url: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Your AutoRemote key has been updated (%d)\n", len(key))
			return nil
		},
	}
}

func newKeyShowCommand() *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the personal url for the configured key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			if reveal {
				personal, err := e.dispatcher.PersonalURL()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), personal)
				return nil
			}

			key := e.dispatcher.Client().Config().Key
			if key == "" {
				return fmt.Errorf("no AutoRemote key configured")
			}
			fmt.Fprintln(cmd.OutOrStdout(), util.MaskSecret(key))
			return nil
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "print the full personal url")
	return cmd
}

func newKeyQRCommand() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Write the personal url as a QR code PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			personal, err := e.dispatcher.PersonalURL()
			if err != nil {
				return err
			}
			if err := qr.WriteFile(out, personal); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "autoremote-key.png", "output file")
	return cmd
}
