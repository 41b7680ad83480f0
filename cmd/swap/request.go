package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/swapmeet/internal/exchange"
	"github.com/zulandar/swapmeet/internal/fault"
	"github.com/zulandar/swapmeet/internal/models"
	"github.com/zulandar/swapmeet/internal/notify"
	"github.com/zulandar/swapmeet/internal/review"
	"gorm.io/gorm"
)

func newRequestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "request",
		Aliases: []string{"req"},
		Short:   "Exchange request commands",
	}

	cmd.AddCommand(newRequestCreateCmd())
	cmd.AddCommand(newRequestTransitionCmd("accept", "Accept a pending request addressed to you", exchange.Accept, notify.EventAccepted))
	cmd.AddCommand(newRequestTransitionCmd("refuse", "Refuse a pending request addressed to you", exchange.Refuse, notify.EventRefused))
	cmd.AddCommand(newRequestTransitionCmd("cancel", "Withdraw a pending request you sent", exchange.Cancel, notify.EventCancelled))
	cmd.AddCommand(newRequestShowCmd())
	cmd.AddCommand(newRequestListCmd())
	return cmd
}

func newRequestCreateCmd() *cobra.Command {
	var (
		configPath string
		actor      string
		itemID     string
		skillID    string
		proposal   string
		message    string
		date       string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Request an item or skill from its owner",
		Long:  "Opens a pending exchange request for exactly one item (--item) or skill (--skill).",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequestCreate(cmd, configPath, actor, itemID, skillID, proposal, message, date)
		},
	}

	addConfigFlag(cmd, &configPath)
	addActorFlag(cmd, &actor)
	cmd.Flags().StringVar(&itemID, "item", "", "id of the requested item")
	cmd.Flags().StringVar(&skillID, "skill", "", "id of the requested skill")
	cmd.Flags().StringVar(&proposal, "proposal", "", "what you offer in return (required)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "message to the owner (required)")
	cmd.Flags().StringVar(&date, "date", "", "proposed date, RFC3339 or \"YYYY-MM-DD HH:MM\" (required)")
	cmd.MarkFlagsMutuallyExclusive("item", "skill")
	cmd.MarkFlagsOneRequired("item", "skill")
	cmd.MarkFlagRequired("proposal")
	cmd.MarkFlagRequired("message")
	cmd.MarkFlagRequired("date")
	return cmd
}

func runRequestCreate(cmd *cobra.Command, configPath, actor, itemID, skillID, proposal, message, date string) error {
	proposedAt, err := parseDate(date)
	if err != nil {
		return err
	}
	target := models.ItemTarget(itemID)
	if skillID != "" {
		target = models.SkillTarget(skillID)
	}

	cfg, gormDB, actor, err := session(configPath, actor)
	if err != nil {
		return err
	}
	req, err := exchange.Create(gormDB, exchange.CreateOpts{
		RequesterID: actor,
		Target:      target,
		Proposal:    proposal,
		Note:        message,
		ProposedAt:  proposedAt,
	})
	if err != nil {
		return err
	}
	announce(cmd, cfg, notify.NewEvent(notify.EventCreated, req, actor))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created request %s\n", req.ID)
	fmt.Fprintf(out, "Owner: %s\n", req.OwnerID)
	fmt.Fprintf(out, "Status: %s\n", req.Status)
	return nil
}

type transitionFunc func(db *gorm.DB, id, actorID string) (*models.ExchangeRequest, error)

func newRequestTransitionCmd(use, short string, fn transitionFunc, kind string) *cobra.Command {
	var (
		configPath string
		actor      string
	)

	cmd := &cobra.Command{
		Use:   use + " <request-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, actor, err := session(configPath, actor)
			if err != nil {
				return err
			}
			req, err := fn(gormDB, args[0], actor)
			if err != nil {
				return err
			}
			announce(cmd, cfg, notify.NewEvent(kind, req, actor))
			fmt.Fprintf(cmd.OutOrStdout(), "Request %s is now %s\n", req.ID, req.Status)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	addActorFlag(cmd, &actor)
	return cmd
}

func newRequestShowCmd() *cobra.Command {
	var (
		configPath string
		actor      string
	)

	cmd := &cobra.Command{
		Use:   "show <request-id>",
		Short: "Show a request with its messages and reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequestShow(cmd, configPath, actor, args[0])
		},
	}

	addConfigFlag(cmd, &configPath)
	addActorFlag(cmd, &actor)
	return cmd
}

func runRequestShow(cmd *cobra.Command, configPath, actor, id string) error {
	_, gormDB, actor, err := session(configPath, actor)
	if err != nil {
		return err
	}
	req, err := exchange.View(gormDB, id, actor)
	if err != nil {
		return err
	}
	revs, err := review.ForRequest(gormDB, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Request:   %s\n", req.ID)
	fmt.Fprintf(out, "Status:    %s\n", req.Status)
	fmt.Fprintf(out, "Target:    %s\n", req.Target())
	fmt.Fprintf(out, "Requester: %s\n", req.RequesterID)
	fmt.Fprintf(out, "Owner:     %s\n", req.OwnerID)
	fmt.Fprintf(out, "Proposed:  %s\n", formatTime(req.ProposedAt))
	fmt.Fprintf(out, "Created:   %s\n", formatTime(req.CreatedAt))
	fmt.Fprintf(out, "Updated:   %s\n", formatTime(req.UpdatedAt))
	fmt.Fprintf(out, "\nProposal:\n  %s\n", req.Proposal)
	fmt.Fprintf(out, "Message:\n  %s\n", req.Note)

	if len(req.Messages) > 0 {
		fmt.Fprintf(out, "\nMessages (%d):\n", len(req.Messages))
		for _, m := range req.Messages {
			fmt.Fprintf(out, "  [%s] %s: %s\n", formatTime(m.SentAt), m.SenderID, m.Content)
		}
	}
	if len(revs) > 0 {
		fmt.Fprintf(out, "\nReviews (%d):\n", len(revs))
		for _, r := range revs {
			fmt.Fprintf(out, "  #%d %s %s -> %s: %s\n", r.ID, stars(r.Rating), r.AuthorID, r.SubjectID, r.Comment)
		}
	}
	return nil
}

// List views accepted by `request list --view`.
const (
	viewSent      = "sent"
	viewReceived  = "received"
	viewActive    = "active"
	viewCompleted = "completed"
)

func newRequestListCmd() *cobra.Command {
	var (
		configPath string
		actor      string
		view       string
		status     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your requests",
		Long:  "Lists requests you sent, received (optionally by --status), or your active and completed exchanges.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequestList(cmd, configPath, actor, view, status)
		},
	}

	addConfigFlag(cmd, &configPath)
	addActorFlag(cmd, &actor)
	cmd.Flags().StringVar(&view, "view", viewReceived, "sent, received, active or completed")
	cmd.Flags().StringVar(&status, "status", "", "filter received requests by status")
	return cmd
}

func runRequestList(cmd *cobra.Command, configPath, actor, view, status string) error {
	_, gormDB, actor, err := session(configPath, actor)
	if err != nil {
		return err
	}

	var reqs []models.ExchangeRequest
	switch view {
	case viewSent:
		reqs, err = exchange.ListSent(gormDB, actor)
	case viewReceived:
		reqs, err = exchange.ListReceived(gormDB, actor, status)
	case viewActive:
		reqs, err = exchange.Active(gormDB, actor)
	case viewCompleted:
		reqs, err = exchange.Completed(gormDB, actor)
	default:
		return fault.Validation("unknown view %q (want sent, received, active or completed)", view)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(reqs) == 0 {
		fmt.Fprintln(out, "No requests found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTARGET\tREQUESTER\tOWNER\tPROPOSED\tPROPOSAL")
	for _, r := range reqs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Status, r.Target(), r.RequesterID, r.OwnerID, formatTime(r.ProposedAt), truncate(r.Proposal, 40))
	}
	w.Flush()

	if view == viewReceived && status == "" {
		if n, err := exchange.CountPending(gormDB, actor); err == nil && n > 0 {
			fmt.Fprintf(out, "\n%d pending request(s) await your answer.\n", n)
		}
	}
	return nil
}
