package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/swapmeet/internal/exchange"
	"github.com/zulandar/swapmeet/internal/fault"
	"github.com/zulandar/swapmeet/internal/models"
	"github.com/zulandar/swapmeet/internal/notify"
	"github.com/zulandar/swapmeet/internal/review"
)

func newReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review commands",
	}

	cmd.AddCommand(newReviewSubmitCmd())
	cmd.AddCommand(newReviewEditCmd())
	cmd.AddCommand(newReviewDeleteCmd())
	cmd.AddCommand(newReviewListCmd())
	cmd.AddCommand(newReviewStatsCmd())
	return cmd
}

func parseReviewID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fault.Validation("invalid review id %q", s)
	}
	return uint(id), nil
}

func newReviewSubmitCmd() *cobra.Command {
	var (
		configPath string
		actor      string
		rating     int
		comment    string
	)

	cmd := &cobra.Command{
		Use:   "submit <request-id>",
		Short: "Review the other participant of an exchange",
		Long:  "Submits your review of an accepted exchange. The second review completes the exchange.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReviewSubmit(cmd, configPath, actor, args[0], rating, comment)
		},
	}

	addConfigFlag(cmd, &configPath)
	addActorFlag(cmd, &actor)
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "rating from 1 to 5 (required)")
	cmd.Flags().StringVarP(&comment, "comment", "m", "", "comment, at least 10 characters (required)")
	cmd.MarkFlagRequired("rating")
	cmd.MarkFlagRequired("comment")
	return cmd
}

func runReviewSubmit(cmd *cobra.Command, configPath, actor, requestID string, rating int, comment string) error {
	cfg, gormDB, actor, err := session(configPath, actor)
	if err != nil {
		return err
	}
	res, err := review.Submit(gormDB, review.SubmitOpts{
		RequestID: requestID,
		AuthorID:  actor,
		Rating:    rating,
		Comment:   comment,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Review %d recorded for %s %s\n", res.Review.ID, res.Review.SubjectID, stars(res.Review.Rating))

	req, err := exchange.Get(gormDB, requestID)
	if err != nil {
		newLogger(cmd).Warn("notify: reload request", "request", requestID, "error", err)
		return nil
	}
	evt := notify.NewEvent(notify.EventReviewed, req, actor)
	evt.Rating = res.Review.Rating
	announce(cmd, cfg, evt)
	if res.Completed {
		announce(cmd, cfg, notify.NewEvent(notify.EventCompleted, req, actor))
		fmt.Fprintf(out, "Both reviews are in: request %s is completed\n", requestID)
	}
	return nil
}

func newReviewEditCmd() *cobra.Command {
	var (
		configPath string
		actor      string
		rating     int
		comment    string
	)

	cmd := &cobra.Command{
		Use:   "edit <review-id>",
		Short: "Edit your review within 24 hours of posting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReviewID(args[0])
			if err != nil {
				return err
			}
			_, gormDB, actor, err := session(configPath, actor)
			if err != nil {
				return err
			}
			rev, err := review.Edit(gormDB, id, actor, rating, comment)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Review %d updated %s\n", rev.ID, stars(rev.Rating))
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	addActorFlag(cmd, &actor)
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "new rating from 1 to 5 (required)")
	cmd.Flags().StringVarP(&comment, "comment", "m", "", "new comment (required)")
	cmd.MarkFlagRequired("rating")
	cmd.MarkFlagRequired("comment")
	return cmd
}

func newReviewDeleteCmd() *cobra.Command {
	var (
		configPath string
		actor      string
	)

	cmd := &cobra.Command{
		Use:   "delete <review-id>",
		Short: "Hide a review you wrote or received",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReviewID(args[0])
			if err != nil {
				return err
			}
			_, gormDB, actor, err := session(configPath, actor)
			if err != nil {
				return err
			}
			if err := review.Delete(gormDB, id, actor); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Review %d hidden\n", id)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	addActorFlag(cmd, &actor)
	return cmd
}

func newReviewListCmd() *cobra.Command {
	var (
		configPath string
		user       string
		given      bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reviews received (or given) by a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReviewList(cmd, configPath, user, given, limit)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&user, "user", "u", "", "user id (required)")
	cmd.Flags().BoolVar(&given, "given", false, "list reviews the user wrote instead")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the N most recent received reviews")
	cmd.MarkFlagRequired("user")
	return cmd
}

func runReviewList(cmd *cobra.Command, configPath, user string, given bool, limit int) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	var revs []models.Review
	switch {
	case given:
		revs, err = review.Given(gormDB, user)
	case limit > 0:
		revs, err = review.Recent(gormDB, user, limit)
	default:
		revs, err = review.Received(gormDB, user)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(revs) == 0 {
		fmt.Fprintln(out, "No reviews found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREQUEST\tAUTHOR\tSUBJECT\tRATING\tPOSTED\tCOMMENT")
	for _, r := range revs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.RequestID, r.AuthorID, r.SubjectID, stars(r.Rating), formatTime(r.CreatedAt), truncate(r.Comment, 50))
	}
	w.Flush()
	return nil
}

func newReviewStatsCmd() *cobra.Command {
	var (
		configPath string
		user       string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show rating statistics for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			s, err := review.StatsFor(gormDB, user)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatStats(user, s))
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&user, "user", "u", "", "user id (required)")
	cmd.MarkFlagRequired("user")
	return cmd
}
