package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matiasleandrokruk/groundedgrowth/internal/domain/journal"
)

const entryText = "Hoy me levanté temprano y salí a correr por el parque."

func newJournalHandler(t *testing.T) (*JournalHandler, *journal.Service, string) {
	t.Helper()
	db := mustOpenDB(t)
	svc := journal.NewService(db)
	return NewJournalHandler(svc), svc, insertUser(t, db, "owner@example.com")
}

func createEntry(t *testing.T, h *JournalHandler, userID string) journal.Entry {
	t.Helper()
	rr := httptest.NewRecorder()
	h.CreateEntry(rr, newRequest(t, http.MethodPost, "/api/journal", userID, EntryRequest{Content: entryText}, nil))
	if rr.Code != http.StatusCreated {
		t.Fatalf("CreateEntry status = %d; body: %s", rr.Code, rr.Body.String())
	}
	return decodeBody[journal.Entry](t, rr)
}

func TestJournalHandler_CreateAndGet(t *testing.T) {
	t.Parallel()

	h, svc, userID := newJournalHandler(t)
	e := createEntry(t, h, userID)
	if _, err := svc.SaveAnalysis(t.Context(), userID, e.ID, "<p>ok</p>", "local"); err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	h.GetEntry(rr, newRequest(t, http.MethodGet, "/api/journal/"+e.ID, userID, nil, map[string]string{"id": e.ID}))
	if rr.Code != http.StatusOK {
		t.Fatalf("GetEntry status = %d", rr.Code)
	}
	got := decodeBody[journal.Entry](t, rr)
	if got.Content != entryText || len(got.Analyses) != 1 || got.Analyses[0].AIProvider != "local" {
		t.Errorf("unexpected entry %+v", got)
	}
	if !strings.Contains(rr.Header().Get("Content-Type"), "application/json") {
		t.Errorf("Content-Type = %q", rr.Header().Get("Content-Type"))
	}
}

func TestJournalHandler_Validation(t *testing.T) {
	t.Parallel()

	h, _, userID := newJournalHandler(t)
	rr := httptest.NewRecorder()
	h.CreateEntry(rr, newRequest(t, http.MethodPost, "/api/journal", userID, EntryRequest{Content: "corto"}, nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", rr.Code)
	}
	if got := decodeBody[errorBody](t, rr); got.Error != "La entrada debe tener al menos 10 caracteres" {
		t.Errorf("error = %q", got.Error)
	}
}

func TestJournalHandler_UpdateDeleteNotFound(t *testing.T) {
	t.Parallel()

	h, _, userID := newJournalHandler(t)
	e := createEntry(t, h, userID)
	params := map[string]string{"id": e.ID}

	rr := httptest.NewRecorder()
	h.UpdateEntry(rr, newRequest(t, http.MethodPut, "/api/journal/"+e.ID, userID, EntryRequest{Content: entryText + " Editado."}, params))
	if rr.Code != http.StatusOK {
		t.Fatalf("UpdateEntry status = %d; body: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	h.DeleteEntry(rr, newRequest(t, http.MethodDelete, "/api/journal/"+e.ID, userID, nil, params))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("DeleteEntry status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.UpdateEntry(rr, newRequest(t, http.MethodPut, "/api/journal/"+e.ID, userID, EntryRequest{Content: entryText}, params))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("UpdateEntry after delete status = %d; want 404", rr.Code)
	}
	if got := decodeBody[errorBody](t, rr); got.Error != "Entrada no encontrada" {
		t.Errorf("error = %q", got.Error)
	}
}

func TestJournalHandler_List(t *testing.T) {
	t.Parallel()

	h, _, userID := newJournalHandler(t)
	createEntry(t, h, userID)
	createEntry(t, h, userID)

	rr := httptest.NewRecorder()
	h.ListEntries(rr, newRequest(t, http.MethodGet, "/api/journal", userID, nil, nil))
	list := decodeBody[struct {
		Data []journal.Entry `json:"data"`
		Meta Meta            `json:"meta"`
	}](t, rr)
	if len(list.Data) != 2 || list.Meta.Total != 2 || list.Meta.Limit != defaultPageLimit {
		t.Errorf("unexpected list %+v", list)
	}
	for _, e := range list.Data {
		if e.Analyses == nil {
			t.Errorf("entry %s should carry an empty analyses list", e.ID)
		}
	}
}
