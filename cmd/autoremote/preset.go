package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"autoremote/internal/preset"

	"github.com/spf13/cobra"
)

func newPresetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "preset",
		Aliases: []string{"presets"},
		Short:   "List or send saved messages (autoremote_messages)",
	}
	cmd.AddCommand(newPresetListCommand(), newPresetSendCommand())
	return cmd
}

func newPresetListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			presets := e.dispatcher.Presets()
			if len(presets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No presets configured (autoremote_messages)")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tCAPTION\tTYPE\tCOMMAND")
			for i, p := range presets {
				c := preset.ParseCommand(p.Payload())
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i, p.Caption(), p.Kind(), c.Command)
			}
			return tw.Flush()
		},
	}
}

func newPresetSendCommand() *cobra.Command {
	var flags sendFlags
	cmd := &cobra.Command{
		Use:   "send <index|caption>",
		Short: "Send a saved message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			p, err := lookupPreset(e.dispatcher.Presets(), args[0])
			if err != nil {
				return err
			}

			resp, err := e.dispatcher.SendPreset(cmd.Context(), p, flags.options())
			if err != nil {
				return err
			}

			printResponse(cmd.OutOrStdout(), p.Kind(), resp)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func lookupPreset(presets preset.List, ref string) (preset.Preset, error) {
	if i, err := strconv.Atoi(ref); err == nil {
		return presets.At(i)
	}
	if p, ok := presets.Find(ref); ok {
		return p, nil
	}
	return nil, fmt.Errorf("no preset with caption %q", ref)
}
