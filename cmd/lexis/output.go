package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/domain"
)

// emit prints v as indented JSON when --json is set and calls text otherwise.
func (c *cli) emit(v interface{}, text func()) error {
	if c.jsonOutput {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text()
	return nil
}

func (c *cli) printEntries(entries []*domain.Entry) error {
	if entries == nil {
		entries = []*domain.Entry{}
	}
	return c.emit(entries, func() {
		if len(entries) == 0 {
			fmt.Fprintln(c.out, "No words.")
			return
		}
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tWORD\tLANG\tHP\tSEEN\tFIRST\tLAST")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
				e.ID, e.Word, e.Language, e.HP, e.EncounterCount, e.FirstSeenDay, e.LastEncounterDay)
		}
		_ = tw.Flush()
	})
}

func (c *cli) printEntry(e *domain.Entry) error {
	return c.emit(e, func() {
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "ID:\t%s\n", e.ID)
		fmt.Fprintf(tw, "Word:\t%s\n", e.Word)
		fmt.Fprintf(tw, "Language:\t%s\n", e.Language)
		fmt.Fprintf(tw, "HP:\t%d\n", e.HP)
		fmt.Fprintf(tw, "Encounters:\t%d\n", e.EncounterCount)
		fmt.Fprintf(tw, "First seen:\tday %d\n", e.FirstSeenDay)
		fmt.Fprintf(tw, "Last seen:\tday %d\n", e.LastEncounterDay)
		if e.Breakthrough > 0 {
			fmt.Fprintf(tw, "Breakthrough:\t%d\n", e.Breakthrough)
		}
		if e.ParentID != nil {
			fmt.Fprintf(tw, "Parent:\t%s\n", e.ParentID)
		}
		if e.Note != "" {
			fmt.Fprintf(tw, "Note:\t%s\n", e.Note)
		}
		_ = tw.Flush()
	})
}

func (c *cli) printEncounters(encounters []*domain.Encounter) error {
	if encounters == nil {
		encounters = []*domain.Encounter{}
	}
	return c.emit(encounters, func() {
		if len(encounters) == 0 {
			fmt.Fprintln(c.out, "No encounters.")
			return
		}
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SLOT\tDAY\tGAP\tSOURCE\tSENTENCE")
		for _, e := range encounters {
			gap := "-"
			if e.DayGap != nil {
				gap = fmt.Sprint(*e.DayGap)
			}
			fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", e.Slot, e.Day, gap, e.Source.Title, e.Sentence)
		}
		_ = tw.Flush()
	})
}

func (c *cli) printMasteredList(entries []*domain.MasteredEntry) error {
	if entries == nil {
		entries = []*domain.MasteredEntry{}
	}
	return c.emit(entries, func() {
		if len(entries) == 0 {
			fmt.Fprintln(c.out, "No mastered words.")
			return
		}
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tWORD\tLANG\tENCOUNTERS\tBREAKTHROUGHS\tPROMOTED")
		for _, m := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
				m.ID, m.Word, m.Language, m.TotalEncounters, m.BreakthroughCount,
				m.PromotedAt.Format("2006-01-02"))
		}
		_ = tw.Flush()
	})
}

func (c *cli) printMastered(m *domain.MasteredEntry) error {
	return c.emit(m, func() {
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "ID:\t%s\n", m.ID)
		fmt.Fprintf(tw, "Word:\t%s\n", m.Word)
		fmt.Fprintf(tw, "Language:\t%s\n", m.Language)
		fmt.Fprintf(tw, "Encounters:\t%d\n", m.TotalEncounters)
		fmt.Fprintf(tw, "Days:\t%d to %d\n", m.FirstEncounterDay, m.LastEncounterDay)
		fmt.Fprintf(tw, "Breakthroughs:\t%d\n", m.BreakthroughCount)
		if m.FirstEncounter != nil && m.FirstEncounter.Sentence != "" {
			fmt.Fprintf(tw, "First sentence:\t%s\n", m.FirstEncounter.Sentence)
		}
		_ = tw.Flush()
	})
}

func (c *cli) printSummary(s *domain.Summary) error {
	return c.emit(s, func() {
		fmt.Fprintf(c.out, "Day %d: %d words, %d encounters, %d mastered\n",
			s.CurrentDay, s.TotalWords, s.TotalEncounters, s.MasteredCount)
		langs := make([]string, 0, len(s.WordsByLanguage))
		for lang := range s.WordsByLanguage {
			langs = append(langs, lang)
		}
		sort.Strings(langs)
		parts := make([]string, 0, len(langs))
		for _, lang := range langs {
			parts = append(parts, fmt.Sprintf("%s=%d", lang, s.WordsByLanguage[lang]))
		}
		if len(parts) > 0 {
			fmt.Fprintln(c.out, "By language:", strings.Join(parts, " "))
		}
	})
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", raw, domain.ErrInvalidID)
	}
	return id, nil
}
