package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/service"
	"github.com/spf13/cobra"
)

func newAddCmd(c *cli) *cobra.Command {
	var (
		in       service.AddWordInput
		language string
	)
	cmd := &cobra.Command{
		Use:   "add WORD",
		Short: "Record an encounter with a word, creating it if new",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.vocab()
			if err != nil {
				return err
			}
			in.Word = args[0]
			in.Language = language
			res, err := svc.AddWord(cmd.Context(), in)
			if err != nil {
				return err
			}
			return c.emit(res, func() {
				verb := "Encountered"
				if res.Created {
					verb = "Added"
				}
				fmt.Fprintf(c.out, "%s %s [%s] in slot %d (hp %d, %d encounters)\n",
					verb, res.Entry.Word, res.Entry.Language, res.Slot, res.Entry.HP, res.Entry.EncounterCount)
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&language, "lang", "l", "", "Language code of the word (required)")
	f.StringVarP(&in.Sentence, "sentence", "s", "", "Sentence the word appeared in")
	f.StringVar(&in.Source.ID, "source-id", "", "Identifier of the source work")
	f.StringVar(&in.Source.Title, "source-title", "", "Title of the source work")
	f.StringVar(&in.Translations.Reference.Google, "ref-google", "", "Reference-language translation (Google)")
	f.StringVar(&in.Translations.Reference.DeepL, "ref-deepl", "", "Reference-language translation (DeepL)")
	f.StringVar(&in.Translations.Target.Google, "target-google", "", "Target-language rendering (Google)")
	f.StringVar(&in.Translations.Target.DeepL, "target-deepl", "", "Target-language rendering (DeepL)")
	_ = cmd.MarkFlagRequired("lang")
	return cmd
}

func newAddManualCmd(c *cli) *cobra.Command {
	var language, note string
	cmd := &cobra.Command{
		Use:   "add-manual WORD",
		Short: "Add a word without an encounter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.vocab()
			if err != nil {
				return err
			}
			e, err := svc.AddManual(cmd.Context(), args[0], language, note)
			if err != nil {
				return err
			}
			return c.printEntry(e)
		},
	}
	cmd.Flags().StringVarP(&language, "lang", "l", "", "Language code of the word (required)")
	cmd.Flags().StringVarP(&note, "note", "n", "", "Note to attach")
	_ = cmd.MarkFlagRequired("lang")
	return cmd
}

func newListCmd(c *cli) *cobra.Command {
	var (
		language string
		sortKey  string
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active words",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.vocab()
			if err != nil {
				return err
			}
			key, err := domain.ParseSortKey(sortKey)
			if err != nil {
				return err
			}
			entries, err := svc.ListActive(cmd.Context(), service.ListFilter{Language: language, Sort: key, Limit: limit})
			if err != nil {
				return err
			}
			return c.printEntries(entries)
		},
	}
	cmd.Flags().StringVarP(&language, "lang", "l", "", "Only words in this language")
	cmd.Flags().StringVar(&sortKey, "sort", "",
		"Order: last_encounter, first_encounter, encounter_count, last_reviewed, alphabetical")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of words")
	return cmd
}

func newShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one active word",
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
			e, err := svc.GetEntry(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.printEntry(e)
		},
	}
}

func newEncountersCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "encounters ID",
		Short: "Show the stored encounters of a word",
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
			encounters, err := svc.GetEncounters(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.printEncounters(encounters)
		},
	}
}

func newSearchCmd(c *cli) *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:   "search WORD",
		Short: "Find active words by normalized spelling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.vocab()
			if err != nil {
				return err
			}
			entries, err := svc.Search(cmd.Context(), args[0], language)
			if err != nil {
				return err
			}
			return c.printEntries(entries)
		},
	}
	cmd.Flags().StringVarP(&language, "lang", "l", "", "Only words in this language")
	return cmd
}

func newStrugglingCmd(c *cli) *cobra.Command {
	var (
		language string
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "struggling",
		Short: "List words whose HP is above the struggling threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.vocab()
			if err != nil {
				return err
			}
			entries, err := svc.ListStruggling(cmd.Context(), language, limit)
			if err != nil {
				return err
			}
			return c.printEntries(entries)
		},
	}
	cmd.Flags().StringVarP(&language, "lang", "l", "", "Only words in this language")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of words")
	return cmd
}

func newRenameCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rename ID WORD",
		Short: "Correct the spelling of a word",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.vocab()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := svc.Rename(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			return c.printEntry(e)
		},
	}
}

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an active word and its encounters",
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
			if err := svc.Delete(cmd.Context(), id); err != nil {
				return err
			}
			return c.emit(map[string]string{"deleted": id.String()}, func() {
				fmt.Fprintf(c.out, "Deleted %s\n", id)
			})
		},
	}
}

func newNoteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "note ID [NOTE]",
		Short: "Set the note of a word; omit NOTE to clear it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.vocab()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var note string
			if len(args) == 2 {
				note = args[1]
			}
			e, err := svc.UpdateNote(cmd.Context(), id, note)
			if err != nil {
				return err
			}
			return c.printEntry(e)
		},
	}
}

func newParentCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "parent ID [PARENT_ID]",
		Short: "Link a word to a parent word; omit PARENT_ID to unlink",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.vocab()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var parentID *uuid.UUID
			if len(args) == 2 {
				pid, err := parseID(args[1])
				if err != nil {
					return err
				}
				parentID = &pid
			}
			e, err := svc.SetParent(cmd.Context(), id, parentID)
			if err != nil {
				return err
			}
			return c.printEntry(e)
		},
	}
}

func newChildrenCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "children ID",
		Short: "List the words linked to a parent",
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
			children, err := svc.Children(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.printEntries(children)
		},
	}
}
