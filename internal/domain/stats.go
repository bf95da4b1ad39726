package domain

// Summary aggregates the vocabulary for progress displays.
type Summary struct {
	CurrentDay      int            `json:"current_day"`
	WordsByLanguage map[string]int `json:"words_by_language"`
	TotalWords      int            `json:"total_words"`
	TotalEncounters int            `json:"total_encounters"`
	MasteredCount   int            `json:"mastered_count"`
}

// SortKey selects the ordering of active-entry listings.
type SortKey string

// Supported listing orders
const (
	SortLastEncounter  SortKey = "last_encounter"
	SortFirstEncounter SortKey = "first_encounter"
	SortEncounterCount SortKey = "encounter_count"
	SortLastReviewed   SortKey = "last_reviewed"
	SortAlphabetical   SortKey = "alphabetical"
)

// ParseSortKey maps a raw sort name to a SortKey. Empty selects the default.
func ParseSortKey(raw string) (SortKey, error) {
	switch k := SortKey(raw); k {
	case "":
		return SortLastEncounter, nil
	case SortLastEncounter, SortFirstEncounter, SortEncounterCount, SortLastReviewed, SortAlphabetical:
		return k, nil
	default:
		return "", NewValidationError("sort", "is not a supported order", ErrValidation)
	}
}
