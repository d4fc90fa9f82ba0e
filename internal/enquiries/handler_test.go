package enquiries

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sanctified-studios/studio/internal/dispatch"
	"github.com/sanctified-studios/studio/internal/receipts"
)

type stubDeliverer struct {
	keys   []string
	pushed bool
}

func (d *stubDeliverer) Deliver(_ context.Context, doc receipts.Deliverable, opts dispatch.Options) dispatch.Result {
	d.keys = append(d.keys, doc.Key())
	d.pushed = opts.Push
	return dispatch.Result{Message: doc.Message("https://files.example/q.pdf"), Link: "https://files.example/q.pdf"}
}

func newTestRouter(repo *memoryRepo, d *stubDeliverer) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, NewService(repo, "91"), d, receipts.DefaultStudio)
	r := chi.NewRouter()
	r.Route("/enquiries", h.MountRoutes)
	return r
}

func send(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const intake = `{"name":"Priya","phone":"9827411116","amount":55000,"event_date":"2026-02-14","package":"regular"}`

func TestEnquiryLifecycleOverHTTP(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo, &stubDeliverer{})

	rec := send(router, http.MethodPost, "/enquiries", intake)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created Enquiry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "+919827411116", created.Phone)

	rec = send(router, http.MethodGet, "/enquiries/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = send(router, http.MethodPatch, "/enquiries/"+created.ID.String(), `{"name":"Priya Sharma"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "Priya Sharma", repo.items[created.ID].Name)

	rec = send(router, http.MethodGet, "/enquiries?sort=name", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Items []Enquiry `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)

	rec = send(router, http.MethodDelete, "/enquiries/"+created.ID.String(), "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = send(router, http.MethodGet, "/enquiries/"+created.ID.String(), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateEnquiryRejectsBadInput(t *testing.T) {
	router := newTestRouter(newMemoryRepo(), &stubDeliverer{})

	rec := send(router, http.MethodPost, "/enquiries", `{"name":"Priya","phone":"1","event_date":"2026-02-14","package":"regular"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(router, http.MethodPost, "/enquiries", `{"name":"Priya","unknown":true}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(router, http.MethodGet, "/enquiries/not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShareQuotation(t *testing.T) {
	repo := newMemoryRepo()
	d := &stubDeliverer{}
	router := newTestRouter(repo, d)

	rec := send(router, http.MethodPost, "/enquiries", intake)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Enquiry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = send(router, http.MethodPost, "/enquiries/"+created.ID.String()+"/share", `{"push":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res dispatch.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Contains(t, res.Message, "https://files.example/q.pdf")
	require.True(t, d.pushed)
	require.Len(t, d.keys, 1)

	rec = send(router, http.MethodPost, "/enquiries/"+created.ID.String()+"/share", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, d.pushed)
	require.Equal(t, d.keys[0], d.keys[1])
}
