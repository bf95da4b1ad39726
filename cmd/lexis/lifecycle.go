package main

import (
	"fmt"

	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/service"
	"github.com/spf13/cobra"
)

func newReviewCmd(c *cli, result, short string) *cobra.Command {
	return &cobra.Command{
		Use:   result + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.vocab()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var res *service.ReviewResult
			if result == "known" {
				res, err = svc.ReviewKnown(cmd.Context(), id)
			} else {
				res, err = svc.ReviewUnknown(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			return c.emit(res, func() {
				if res.Outcome == domain.OutcomePromoted {
					fmt.Fprintf(c.out, "%s [%s] mastered (id %s)\n", res.Entry.Word, res.Entry.Language, res.Mastered.ID)
					return
				}
				fmt.Fprintf(c.out, "%s [%s] hp %d\n", res.Entry.Word, res.Entry.Language, res.Entry.HP)
			})
		},
	}
}

func newPromoteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "promote ID",
		Short: "Move an active word to the mastered registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.vocab()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			m, err := svc.Promote(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.printMastered(m)
		},
	}
}

func newMasteredCmd(c *cli) *cobra.Command {
	var (
		language string
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "mastered [ID]",
		Short: "List mastered words, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.vocab()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				m, err := svc.GetMastered(cmd.Context(), id)
				if err != nil {
					return err
				}
				return c.printMastered(m)
			}
			entries, err := svc.ListMastered(cmd.Context(), language, limit)
			if err != nil {
				return err
			}
			return c.printMasteredList(entries)
		},
	}
	cmd.Flags().StringVarP(&language, "lang", "l", "", "Only words in this language")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of words")
	return cmd
}

func newDemoteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "demote MASTERED_ID",
		Short: "Return a mastered word to active learning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.vocab()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := svc.Demote(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.printEntry(e)
		},
	}
}

func newStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the vocabulary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.vocab()
			if err != nil {
				return err
			}
			s, err := svc.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return c.printSummary(s)
		},
	}
}
