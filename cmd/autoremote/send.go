package main

import (
	"fmt"
	"io"
	"strings"

	"autoremote/internal/autoremote"
	"autoremote/internal/dispatch"

	"github.com/spf13/cobra"
)

type sendFlags struct {
	device      string
	target      string
	sender      string
	password    string
	ttl         int
	collapseKey string
	key         string
	baseURL     string
}

func (f *sendFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.device, "device", "d", "", "device name from autoremote_devices")
	cmd.Flags().StringVar(&f.target, "target", "", "target set on the message")
	cmd.Flags().StringVar(&f.sender, "sender", "", "act as this sender")
	cmd.Flags().StringVar(&f.password, "password", "", "password configured on the device")
	cmd.Flags().IntVar(&f.ttl, "ttl", 0, "seconds AutoRemote keeps trying to deliver")
	cmd.Flags().StringVar(&f.collapseKey, "collapse-key", "", "message group")
	cmd.Flags().StringVar(&f.key, "key", "", "override the configured key")
	cmd.Flags().StringVar(&f.baseURL, "baseurl", "", "override the AutoRemote base url")
}

func (f *sendFlags) options() autoremote.Options {
	return autoremote.Options{
		Device:      f.device,
		Target:      f.target,
		Sender:      f.sender,
		Password:    f.password,
		TTL:         f.ttl,
		CollapseKey: f.collapseKey,
		Key:         f.key,
		BaseURL:     f.baseURL,
	}
}

func newSendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message, notification or intent",
	}
	cmd.AddCommand(newSendMessageCommand(), newSendNotificationCommand(), newSendIntentCommand())
	return cmd
}

func newSendMessageCommand() *cobra.Command {
	var flags sendFlags
	cmd := &cobra.Command{
		Use:   "message <message>",
		Short: "Send a message (e.g. \"say=:=Hello world!\")",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, dispatch.Action{
				Kind:    autoremote.KindMessage,
				Payload: args[0],
				Options: flags.options(),
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newSendIntentCommand() *cobra.Command {
	var flags sendFlags
	cmd := &cobra.Command{
		Use:   "intent <intent>",
		Short: "Send an Android intent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, dispatch.Action{
				Kind:    autoremote.KindIntent,
				Payload: args[0],
				Options: flags.options(),
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newSendNotificationCommand() *cobra.Command {
	var (
		flags  sendFlags
		notif  autoremote.Notification
		params []string
	)
	cmd := &cobra.Command{
		Use:   "notification [action-on-receive]",
		Short: "Show a notification on the device",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			extra, err := parseParams(params)
			if err != nil {
				return err
			}
			notif.Extra = extra

			var message string
			if len(args) == 1 {
				message = args[0]
			}
			return runSend(cmd, dispatch.Action{
				Kind:         autoremote.KindNotification,
				Payload:      message,
				Notification: notif,
				Options:      flags.options(),
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&notif.Title, "title", "", "notification title")
	cmd.Flags().StringVar(&notif.Text, "text", "", "notification text")
	cmd.Flags().StringVar(&notif.Sound, "sound", "", "sound to play")
	cmd.Flags().StringVar(&notif.Icon, "icon", "", "icon url")
	cmd.Flags().StringVar(&notif.URL, "url", "", "url opened on touch")
	cmd.Flags().StringVar(&notif.ID, "id", "", "notification id")
	cmd.Flags().BoolVar(&notif.Persistent, "persistent", false, "keep the notification until dismissed")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "extra notification field as name=value (repeatable)")
	return cmd
}

func parseParams(params []string) (map[string]string, error) {
	if len(params) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(params))
	for _, p := range params {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --param %q, expected name=value", p)
		}
		out[name] = value
	}
	return out, nil
}

func runSend(cmd *cobra.Command, action dispatch.Action) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	resp, err := e.dispatcher.Send(cmd.Context(), action)
	if err != nil {
		return err
	}

	printResponse(cmd.OutOrStdout(), action.Kind, resp)
	return nil
}

func printResponse(w io.Writer, kind autoremote.Kind, resp *autoremote.Response) {
	fmt.Fprintf(w, "AutoRemote %s sent (%s)\n", kind, resp.Status)
	if body := strings.TrimSpace(string(resp.Body)); body != "" {
		fmt.Fprintln(w, body)
	}
}
