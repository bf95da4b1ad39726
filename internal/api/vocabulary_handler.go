package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/api/shared"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/service"
)

// VocabularyHandler serves the vocabulary endpoints.
type VocabularyHandler struct {
	svc               service.VocabularyService
	referenceLanguage string
	logger            *slog.Logger
}

// NewVocabularyHandler creates a VocabularyHandler. referenceLanguage selects
// which incoming translation is stored as the reference rendering.
func NewVocabularyHandler(
	svc service.VocabularyService,
	referenceLanguage string,
	logger *slog.Logger,
) *VocabularyHandler {
	if svc == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("vocabulary service cannot be nil for VocabularyHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &VocabularyHandler{
		svc:               svc,
		referenceLanguage: referenceLanguage,
		logger:            logger.With(slog.String("component", "vocabulary_handler")),
	}
}

// Routes registers the vocabulary endpoints on r.
func (h *VocabularyHandler) Routes(r chi.Router) {
	r.Route("/words", func(r chi.Router) {
		r.Post("/", h.AddWord)
		r.Get("/", h.ListWords)
		r.Post("/manual", h.AddManual)
		r.Get("/search", h.SearchWords)
		r.Get("/struggling", h.ListStruggling)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetWord)
			r.Delete("/", h.DeleteWord)
			r.Get("/encounters", h.GetEncounters)
			r.Get("/children", h.GetChildren)
			r.Put("/word", h.RenameWord)
			r.Put("/note", h.UpdateNote)
			r.Put("/parent", h.SetParent)
			r.Post("/review", h.ReviewWord)
			r.Post("/promote", h.PromoteWord)
		})
	})

	r.Route("/mastered", func(r chi.Router) {
		r.Get("/", h.ListMastered)
		r.Get("/{id}", h.GetMastered)
		r.Post("/{id}/demote", h.DemoteWord)
	})

	r.Get("/stats", h.GetStats)
}

// AddWord handles POST /words. A new word answers 201, a repeat encounter 200.
func (h *VocabularyHandler) AddWord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req AddWordRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	in, err := req.toAddWordInput(h.referenceLanguage)
	if err != nil {
		HandleAPIError(w, r, err, "Invalid source metadata")
		return
	}

	res, err := h.svc.AddWord(r.Context(), in)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	log.Debug("word encounter recorded",
		slog.String("entry_id", res.Entry.ID.String()),
		slog.Bool("created", res.Created),
		slog.Int("slot", res.Slot))
	shared.RespondWithJSON(w, r, status, AddWordResponse{Created: res.Created, Slot: res.Slot, Entry: res.Entry})
}

// AddManual handles POST /words/manual.
func (h *VocabularyHandler) AddManual(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req AddManualRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	entry, err := h.svc.AddManual(r.Context(), req.Word, req.Language, req.Note)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, entry)
}

// ListWords handles GET /words?language=&sort=&limit=.
func (h *VocabularyHandler) ListWords(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		HandleAPIError(w, r, err, SanitizeValidationError(err))
		return
	}

	q := r.URL.Query()
	sortKey, err := domain.ParseSortKey(q.Get("sort"))
	if err != nil {
		HandleAPIError(w, r, err, "Invalid sort key")
		return
	}

	entries, err := h.svc.ListActive(r.Context(), service.ListFilter{
		Language: q.Get("language"),
		Sort:     sortKey,
		Limit:    limit,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, entryList(entries))
}

// SearchWords handles GET /words/search?word=&language=.
func (h *VocabularyHandler) SearchWords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.svc.Search(r.Context(), q.Get("word"), q.Get("language"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, entryList(entries))
}

// ListStruggling handles GET /words/struggling?language=&limit=.
func (h *VocabularyHandler) ListStruggling(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		HandleAPIError(w, r, err, SanitizeValidationError(err))
		return
	}

	entries, err := h.svc.ListStruggling(r.Context(), r.URL.Query().Get("language"), limit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, entryList(entries))
}

// GetWord handles GET /words/{id}.
func (h *VocabularyHandler) GetWord(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	entry, err := h.svc.GetEntry(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, entry)
}

// GetEncounters handles GET /words/{id}/encounters.
func (h *VocabularyHandler) GetEncounters(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	encounters, err := h.svc.GetEncounters(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if encounters == nil {
		encounters = []*domain.Encounter{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, EncounterListResponse{Encounters: encounters, Count: len(encounters)})
}

// GetChildren handles GET /words/{id}/children.
func (h *VocabularyHandler) GetChildren(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	children, err := h.svc.Children(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, entryList(children))
}

// RenameWord handles PUT /words/{id}/word.
func (h *VocabularyHandler) RenameWord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	id, ok := handlePathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req RenameRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	entry, err := h.svc.Rename(r.Context(), id, req.Word)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, entry)
}

// UpdateNote handles PUT /words/{id}/note.
func (h *VocabularyHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	id, ok := handlePathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req NoteRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	entry, err := h.svc.UpdateNote(r.Context(), id, req.Note)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, entry)
}

// SetParent handles PUT /words/{id}/parent.
func (h *VocabularyHandler) SetParent(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	id, ok := handlePathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req ParentRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	var parentID *uuid.UUID
	if req.ParentID != nil && strings.TrimSpace(*req.ParentID) != "" {
		pid, err := uuid.Parse(*req.ParentID)
		if err != nil {
			HandleAPIError(w, r, domain.NewValidationError("parent_id", "has invalid format", domain.ErrInvalidID), "")
			return
		}
		parentID = &pid
	}

	entry, err := h.svc.SetParent(r.Context(), id, parentID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, entry)
}

// DeleteWord handles DELETE /words/{id}.
func (h *VocabularyHandler) DeleteWord(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReviewWord handles POST /words/{id}/review.
func (h *VocabularyHandler) ReviewWord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	id, ok := handlePathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req ReviewRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	var (
		res *service.ReviewResult
		err error
	)
	if req.Result == "known" {
		res, err = h.svc.ReviewKnown(r.Context(), id)
	} else {
		res, err = h.svc.ReviewUnknown(r.Context(), id)
	}
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("word reviewed",
		slog.String("entry_id", id.String()),
		slog.String("outcome", string(res.Outcome)))
	shared.RespondWithJSON(w, r, http.StatusOK, ReviewResponse{
		Outcome:  res.Outcome,
		Entry:    res.Entry,
		Mastered: res.Mastered,
	})
}

// PromoteWord handles POST /words/{id}/promote.
func (h *VocabularyHandler) PromoteWord(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	mastered, err := h.svc.Promote(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, mastered)
}

// ListMastered handles GET /mastered?language=&limit=.
func (h *VocabularyHandler) ListMastered(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		HandleAPIError(w, r, err, SanitizeValidationError(err))
		return
	}

	entries, err := h.svc.ListMastered(r.Context(), r.URL.Query().Get("language"), limit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if entries == nil {
		entries = []*domain.MasteredEntry{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MasteredListResponse{Entries: entries, Count: len(entries)})
}

// GetMastered handles GET /mastered/{id}.
func (h *VocabularyHandler) GetMastered(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	m, err := h.svc.GetMastered(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, m)
}

// DemoteWord handles POST /mastered/{id}/demote.
func (h *VocabularyHandler) DemoteWord(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathUUID(w, r, "id", h.logger)
	if !ok {
		return
	}

	entry, err := h.svc.Demote(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, entry)
}

// GetStats handles GET /stats.
func (h *VocabularyHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Stats(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}
