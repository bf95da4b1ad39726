package api

import (
	"encoding/json"
	"strings"

	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/service"
)

// TranslationRequest holds one language's rendering of the encounter sentence.
type TranslationRequest struct {
	Google string `json:"google"`
	DeepL  string `json:"deepl"`
}

// SourceRequest describes the work an encounter came from. ID and Title are
// stored as they are; everything else is kept as an opaque detail blob.
type SourceRequest struct {
	ID            string   `json:"id"             validate:"max=256"`
	Title         string   `json:"title"          validate:"max=1024"`
	Series        string   `json:"series,omitempty"`
	Relationships []string `json:"relationships,omitempty"`
	Published     string   `json:"published,omitempty"`
	Updated       string   `json:"updated,omitempty"`
}

// sourceDetail is the serialized form of the non-indexed source fields.
type sourceDetail struct {
	Series        string   `json:"series,omitempty"`
	Relationships []string `json:"relationships,omitempty"`
	Published     string   `json:"published,omitempty"`
	Updated       string   `json:"updated,omitempty"`
}

// AddWordRequest is the payload of POST /api/words.
type AddWordRequest struct {
	Word     string `json:"word"     validate:"required,max=256"`
	Language string `json:"language" validate:"required,max=16"`
	Sentence string `json:"sentence" validate:"max=4096"`
	// Translations are keyed by language code.
	Translations map[string]TranslationRequest `json:"translations,omitempty"`
	Source       *SourceRequest                `json:"source,omitempty"`
}

// AddManualRequest is the payload of POST /api/words/manual.
type AddManualRequest struct {
	Word     string `json:"word"     validate:"required,max=256"`
	Language string `json:"language" validate:"required,max=16"`
	Note     string `json:"note"     validate:"max=4096"`
}

// RenameRequest is the payload of PUT /api/words/{id}/word.
type RenameRequest struct {
	Word string `json:"word" validate:"required,max=256"`
}

// NoteRequest is the payload of PUT /api/words/{id}/note. An empty note
// clears it.
type NoteRequest struct {
	Note string `json:"note" validate:"max=4096"`
}

// ParentRequest is the payload of PUT /api/words/{id}/parent. A null or
// missing parent_id clears the link.
type ParentRequest struct {
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
}

// ReviewRequest is the payload of POST /api/words/{id}/review.
type ReviewRequest struct {
	Result string `json:"result" validate:"required,oneof=known unknown"`
}

// AddWordResponse reports the outcome of POST /api/words.
type AddWordResponse struct {
	Created bool          `json:"created"`
	Slot    int           `json:"slot"`
	Entry   *domain.Entry `json:"entry"`
}

// ReviewResponse reports the outcome of a review. Mastered is present when
// the review promoted the word.
type ReviewResponse struct {
	Outcome  domain.ReviewOutcome  `json:"outcome"`
	Entry    *domain.Entry         `json:"entry"`
	Mastered *domain.MasteredEntry `json:"mastered,omitempty"`
}

// EntryListResponse wraps a listing of active entries.
type EntryListResponse struct {
	Entries []*domain.Entry `json:"entries"`
	Count   int             `json:"count"`
}

// EncounterListResponse wraps the stored encounters of an entry.
type EncounterListResponse struct {
	Encounters []*domain.Encounter `json:"encounters"`
	Count      int                 `json:"count"`
}

// MasteredListResponse wraps a listing of visible mastered entries.
type MasteredListResponse struct {
	Entries []*domain.MasteredEntry `json:"entries"`
	Count   int                     `json:"count"`
}

// toAddWordInput maps the request onto the service input. The reference
// language and the word's own language select the two translation pairs.
func (req *AddWordRequest) toAddWordInput(referenceLanguage string) (service.AddWordInput, error) {
	in := service.AddWordInput{
		Word:     req.Word,
		Language: req.Language,
		Sentence: req.Sentence,
	}

	byLang := make(map[string]TranslationRequest, len(req.Translations))
	for lang, tr := range req.Translations {
		byLang[domain.NormalizeLanguage(lang)] = tr
	}
	if tr, ok := byLang[domain.NormalizeLanguage(referenceLanguage)]; ok {
		in.Translations.Reference = domain.TranslationPair{Google: tr.Google, DeepL: tr.DeepL}
	}
	if tr, ok := byLang[domain.NormalizeLanguage(req.Language)]; ok {
		in.Translations.Target = domain.TranslationPair{Google: tr.Google, DeepL: tr.DeepL}
	}

	if req.Source != nil {
		in.Source = domain.Source{
			ID:    strings.TrimSpace(req.Source.ID),
			Title: strings.TrimSpace(req.Source.Title),
		}
		detail := sourceDetail{
			Series:        req.Source.Series,
			Relationships: req.Source.Relationships,
			Published:     req.Source.Published,
			Updated:       req.Source.Updated,
		}
		if detail.Series != "" || len(detail.Relationships) > 0 || detail.Published != "" || detail.Updated != "" {
			b, err := json.Marshal(detail)
			if err != nil {
				return service.AddWordInput{}, err
			}
			in.Source.Detail = string(b)
		}
	}

	return in, nil
}

func entryList(entries []*domain.Entry) EntryListResponse {
	if entries == nil {
		entries = []*domain.Entry{}
	}
	return EntryListResponse{Entries: entries, Count: len(entries)}
}
