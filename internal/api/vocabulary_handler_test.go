package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/lexis/internal/api"
	"github.com/phrazzld/lexis/internal/api/middleware"
	"github.com/phrazzld/lexis/internal/api/shared"
	"github.com/phrazzld/lexis/internal/calendar"
	"github.com/phrazzld/lexis/internal/domain"
	"github.com/phrazzld/lexis/internal/platform/logger"
	"github.com/phrazzld/lexis/internal/platform/sqlstore"
	"github.com/phrazzld/lexis/internal/service"
	"github.com/phrazzld/lexis/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC)

type testServer struct {
	router http.Handler
	clock  *calendar.ManualClock
	logs   *logger.TestLogBuffer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log, buf := logger.GetTestLogger(t)
	db := testdb.NewSQLite(t)
	stores := sqlstore.NewStores(db.DB, db.Dialect, log)
	clock := calendar.NewManualClock(testEpoch.Add(12 * time.Hour))

	svc, err := service.NewVocabularyService(
		db.DB,
		service.Repositories{Entries: stores.Entries, Encounters: stores.Encounters, Mastered: stores.Mastered},
		calendar.New(testEpoch, clock),
		nil,
		service.Options{},
		log,
	)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(log))
	r.Route("/api", api.NewVocabularyHandler(svc, "en", log).Routes)

	return &testServer{router: r, clock: clock, logs: buf}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body == nil {
		req.Body = http.NoBody
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) addWord(t *testing.T, word, language string) *domain.Entry {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/words", map[string]interface{}{
		"word":     word,
		"language": language,
		"sentence": "una frase con " + word,
	})
	require.Contains(t, []int{http.StatusCreated, http.StatusOK}, rec.Code, rec.Body.String())
	return decode[api.AddWordResponse](t, rec).Entry
}

func TestAddWord_CreatedThenRepeat(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	payload := map[string]interface{}{
		"word":     "  Árbol ",
		"language": "ES",
		"sentence": "El árbol es alto.",
		"translations": map[string]interface{}{
			"en": map[string]string{"google": "The tree is tall.", "deepl": "The tree is tall."},
			"es": map[string]string{"google": "El árbol es alto."},
		},
		"source": map[string]interface{}{
			"id":     "book-1",
			"title":  "Cien años",
			"series": "Clásicos",
		},
	}

	rec := s.do(t, http.MethodPost, "/api/words", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[api.AddWordResponse](t, rec)
	assert.True(t, created.Created)
	assert.Equal(t, 0, created.Slot)
	assert.Equal(t, "es", created.Entry.Language)
	assert.Equal(t, "árbol", created.Entry.Key)
	assert.NotEmpty(t, rec.Header().Get(middleware.TraceIDHeader))

	s.clock.AdvanceDays(2)
	rec = s.do(t, http.MethodPost, "/api/words", payload)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	repeat := decode[api.AddWordResponse](t, rec)
	assert.False(t, repeat.Created)
	assert.Equal(t, 1, repeat.Slot)
	assert.Equal(t, created.Entry.ID, repeat.Entry.ID)
	assert.Equal(t, 2, repeat.Entry.EncounterCount)

	rec = s.do(t, http.MethodGet, "/api/words/"+created.Entry.ID.String()+"/encounters", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[api.EncounterListResponse](t, rec)
	require.Equal(t, 2, list.Count)

	first := list.Encounters[0]
	assert.Equal(t, 0, first.Slot)
	assert.Equal(t, "The tree is tall.", first.Translations.Reference.Google)
	assert.Equal(t, "El árbol es alto.", first.Translations.Target.Google)
	assert.Equal(t, "book-1", first.Source.ID)
	assert.Contains(t, first.Source.Detail, "Clásicos")
	require.NotNil(t, list.Encounters[1].DayGap)
	assert.Equal(t, 2, *list.Encounters[1].DayGap)
}

func TestAddWord_BadRequests(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	tests := []struct {
		name string
		body interface{}
		kind string
	}{
		{"missing body", nil, "validation"},
		{"missing language", map[string]string{"word": "hola"}, "validation"},
		{"blank word", map[string]string{"word": "   ", "language": "es"}, "empty_input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/words", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			resp := decode[shared.ErrorResponse](t, rec)
			assert.Equal(t, tt.kind, resp.Kind)
			assert.NotEmpty(t, resp.TraceID)
		})
	}
}

func TestAddManual_Conflict(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	body := map[string]string{"word": "chat", "language": "fr", "note": "cat"}
	rec := s.do(t, http.MethodPost, "/api/words/manual", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	entry := decode[domain.Entry](t, rec)
	assert.Equal(t, "cat", entry.Note)

	rec = s.do(t, http.MethodPost, "/api/words/manual", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decode[shared.ErrorResponse](t, rec)
	assert.Equal(t, "conflict", resp.Kind)
	assert.Equal(t, "Word already exists", resp.Error)
}

func TestGetWord_Errors(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/words/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", decode[shared.ErrorResponse](t, rec).Kind)

	rec = s.do(t, http.MethodGet, "/api/words/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode[shared.ErrorResponse](t, rec)
	assert.Equal(t, "not_found", resp.Kind)
	assert.Equal(t, "Word not found", resp.Error)
}

func TestListWords(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	s.addWord(t, "gato", "es")
	s.clock.AdvanceDays(1)
	s.addWord(t, "perro", "es")
	s.addWord(t, "chien", "fr")

	rec := s.do(t, http.MethodGet, "/api/words?language=es&sort=alphabetical", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	list := decode[api.EntryListResponse](t, rec)
	require.Equal(t, 2, list.Count)
	assert.Equal(t, "gato", list.Entries[0].Word)
	assert.Equal(t, "perro", list.Entries[1].Word)

	rec = s.do(t, http.MethodGet, "/api/words?limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[api.EntryListResponse](t, rec).Count)

	rec = s.do(t, http.MethodGet, "/api/words?sort=random", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/words?limit=-3", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/words/search?word=GATO&language=es", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[api.EntryListResponse](t, rec)
	require.Equal(t, 1, found.Count)
	assert.Equal(t, "gato", found.Entries[0].Word)
}

func TestRenameNoteDelete(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	entry := s.addWord(t, "casa", "es")
	path := "/api/words/" + entry.ID.String()

	rec := s.do(t, http.MethodPut, path+"/word", map[string]string{"word": "Casita"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "casita", decode[domain.Entry](t, rec).Key)

	rec = s.do(t, http.MethodPut, path+"/note", map[string]string{"note": "little house"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "little house", decode[domain.Entry](t, rec).Note)

	rec = s.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviewPromoteDemote(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	entry := s.addWord(t, "luna", "es")
	path := "/api/words/" + entry.ID.String()

	rec := s.do(t, http.MethodPost, path+"/review", map[string]string{"result": "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, path+"/review", map[string]string{"result": "unknown"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	review := decode[api.ReviewResponse](t, rec)
	assert.Equal(t, domain.OutcomeHPIncreased, review.Outcome)
	assert.Equal(t, domain.InitialHP+domain.UnknownHPGain, review.Entry.HP)

	var mastered *domain.MasteredEntry
	for i := 0; i < 20 && mastered == nil; i++ {
		rec = s.do(t, http.MethodPost, path+"/review", map[string]string{"result": "known"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		mastered = decode[api.ReviewResponse](t, rec).Mastered
	}
	require.NotNil(t, mastered)

	rec = s.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/words", map[string]string{"word": "luna", "language": "es"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decode[shared.ErrorResponse](t, rec)
	assert.Equal(t, "already_mastered", resp.Kind)
	assert.NotNil(t, resp.Related)

	rec = s.do(t, http.MethodGet, "/api/mastered?language=es", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[api.MasteredListResponse](t, rec).Count)

	rec = s.do(t, http.MethodGet, "/api/mastered/"+mastered.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "luna", decode[domain.MasteredEntry](t, rec).Word)

	rec = s.do(t, http.MethodPost, "/api/mastered/"+mastered.ID.String()+"/demote", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	revived := decode[domain.Entry](t, rec)
	assert.Equal(t, domain.InitialHP, revived.HP)
	assert.Equal(t, 1, revived.Breakthrough)

	rec = s.do(t, http.MethodPost, "/api/mastered/"+mastered.ID.String()+"/demote", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/words/"+revived.ID.String()+"/promote", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, mastered.ID, decode[domain.MasteredEntry](t, rec).ID)
}

func TestSetParent(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	parent := s.addWord(t, "comer", "es")
	child := s.addWord(t, "comido", "es")
	other := s.addWord(t, "manger", "fr")

	rec := s.do(t, http.MethodPut, "/api/words/"+child.ID.String()+"/parent",
		map[string]string{"parent_id": parent.ID.String()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[domain.Entry](t, rec)
	require.NotNil(t, updated.ParentID)
	assert.Equal(t, parent.ID, *updated.ParentID)

	rec = s.do(t, http.MethodGet, "/api/words/"+parent.ID.String()+"/children", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	children := decode[api.EntryListResponse](t, rec)
	require.Equal(t, 1, children.Count)
	assert.Equal(t, child.ID, children.Entries[0].ID)

	rec = s.do(t, http.MethodPut, "/api/words/"+other.ID.String()+"/parent",
		map[string]string{"parent_id": parent.ID.String()})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "language_mismatch", decode[shared.ErrorResponse](t, rec).Kind)

	rec = s.do(t, http.MethodPut, "/api/words/"+parent.ID.String()+"/parent",
		map[string]string{"parent_id": parent.ID.String()})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "self_reference", decode[shared.ErrorResponse](t, rec).Kind)

	rec = s.do(t, http.MethodPut, "/api/words/"+child.ID.String()+"/parent",
		map[string]string{"parent_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/words/"+child.ID.String()+"/parent",
		map[string]interface{}{"parent_id": nil})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, decode[domain.Entry](t, rec).ParentID)
}

func TestStatsAndStruggling(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	entry := s.addWord(t, "difícil", "es")
	s.addWord(t, "facile", "fr")
	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodPost, "/api/words/"+entry.ID.String()+"/review",
			map[string]string{"result": "unknown"})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	s.clock.AdvanceDays(4)

	rec := s.do(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[domain.Summary](t, rec)
	assert.Equal(t, 4, summary.CurrentDay)
	assert.Equal(t, 2, summary.TotalWords)
	assert.Equal(t, map[string]int{"es": 1, "fr": 1}, summary.WordsByLanguage)

	rec = s.do(t, http.MethodGet, "/api/words/struggling", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	struggling := decode[api.EntryListResponse](t, rec)
	require.Equal(t, 1, struggling.Count)
	assert.Equal(t, entry.ID, struggling.Entries[0].ID)
}

func TestGetChildren_MissingParent(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/words/"+uuid.NewString()+"/children", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[shared.ErrorResponse](t, rec).Kind)
}
