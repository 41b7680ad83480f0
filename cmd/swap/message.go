package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/swapmeet/internal/messaging"
)

func newMessageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "message",
		Aliases: []string{"msg"},
		Short:   "Messaging commands for accepted exchanges",
	}

	cmd.AddCommand(newMessageSendCmd())
	cmd.AddCommand(newMessageHistoryCmd())
	cmd.AddCommand(newMessageReadCmd())
	cmd.AddCommand(newMessageUnreadCmd())
	return cmd
}

func newMessageSendCmd() *cobra.Command {
	var (
		configPath string
		actor      string
	)

	cmd := &cobra.Command{
		Use:   "send <request-id> <content>...",
		Short: "Send a message to the other participant",
		Long:  "Sends a message on an accepted request. The recipient is the other participant.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMessageSend(cmd, configPath, actor, args[0], strings.Join(args[1:], " "))
		},
	}

	addConfigFlag(cmd, &configPath)
	addActorFlag(cmd, &actor)
	return cmd
}

func runMessageSend(cmd *cobra.Command, configPath, actor, requestID, content string) error {
	_, gormDB, actor, err := session(configPath, actor)
	if err != nil {
		return err
	}
	msg, err := messaging.Send(gormDB, requestID, actor, content)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Message %d sent to %s\n", msg.ID, msg.RecipientID)
	return nil
}

func newMessageHistoryCmd() *cobra.Command {
	var (
		configPath string
		actor      string
	)

	cmd := &cobra.Command{
		Use:   "history <request-id>",
		Short: "Show the conversation of a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMessageHistory(cmd, configPath, actor, args[0])
		},
	}

	addConfigFlag(cmd, &configPath)
	addActorFlag(cmd, &actor)
	return cmd
}

func runMessageHistory(cmd *cobra.Command, configPath, actor, requestID string) error {
	_, gormDB, actor, err := session(configPath, actor)
	if err != nil {
		return err
	}
	msgs, err := messaging.History(gormDB, requestID, actor)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(msgs) == 0 {
		fmt.Fprintln(out, "No messages.")
		return nil
	}
	for _, m := range msgs {
		marker := " "
		if m.RecipientID == actor && !m.Read {
			marker = "*"
		}
		fmt.Fprintf(out, "%s [%s] %s: %s\n", marker, formatTime(m.SentAt), m.SenderID, m.Content)
	}
	return nil
}

func newMessageReadCmd() *cobra.Command {
	var (
		configPath string
		actor      string
	)

	cmd := &cobra.Command{
		Use:   "read <request-id>",
		Short: "Mark messages addressed to you as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, actor, err := session(configPath, actor)
			if err != nil {
				return err
			}
			n, err := messaging.MarkRead(gormDB, args[0], actor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %d message(s) as read\n", n)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	addActorFlag(cmd, &actor)
	return cmd
}

func newMessageUnreadCmd() *cobra.Command {
	var (
		configPath string
		actor      string
	)

	cmd := &cobra.Command{
		Use:   "unread",
		Short: "Count unread messages addressed to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, actor, err := session(configPath, actor)
			if err != nil {
				return err
			}
			n, err := messaging.UnreadCount(gormDB, actor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d unread message(s)\n", n)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	addActorFlag(cmd, &actor)
	return cmd
}
