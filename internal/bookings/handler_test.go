package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sanctified-studios/studio/internal/dispatch"
	"github.com/sanctified-studios/studio/internal/receipts"
	"github.com/sanctified-studios/studio/internal/shared"
)

type recordingDeliverer struct {
	delivered []string
	renderErr error
}

func (d *recordingDeliverer) Deliver(_ context.Context, doc receipts.Deliverable, _ dispatch.Options) dispatch.Result {
	d.delivered = append(d.delivered, doc.Key())
	return dispatch.Result{Message: doc.Message(""), ChatLink: "https://wa.me/x"}
}

func (d *recordingDeliverer) Render(_ context.Context, doc receipts.Deliverable) ([]byte, error) {
	if d.renderErr != nil {
		return nil, shared.RenderError{Err: d.renderErr}
	}
	return []byte("%PDF " + doc.Key()), nil
}

func newTestRouter(repo *memoryRepo, deliverer *recordingDeliverer) http.Handler {
	h := NewHandler(newDiscardLogger(), newTestService(repo), deliverer, receipts.StudioInfo{})
	r := chi.NewRouter()
	r.Route("/bookings", h.MountRoutes)
	r.Route("/enquiries", h.MountConversionRoutes)
	return r
}

func do(t *testing.T, router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPaymentEndpointDeliversAfterWrite(t *testing.T) {
	repo := newMemoryRepo()
	deliverer := &recordingDeliverer{}
	router := newTestRouter(repo, deliverer)
	b := seedBooking(repo, rupees(10000), rupees(4000))

	rec := do(t, router, http.MethodPost, "/bookings/"+b.ID.String()+"/payments",
		`{"amount":"6,000","kind":"final"}`, map[string]string{"Idempotency-Key": "tap-1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Booking   Booking          `json:"booking"`
		ReceiptID string           `json:"receipt_id"`
		Delivery  *dispatch.Result `json:"delivery"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "completed", string(body.Booking.Status))
	require.Equal(t, receipts.ReceiptID(b.ID, 1), body.ReceiptID)
	require.NotNil(t, body.Delivery)
	require.Equal(t, []string{receipts.ReceiptKey(b.ID, 1)}, deliverer.delivered)
}

func TestPaymentEndpointDoesNotNotifyOnStoreFailure(t *testing.T) {
	repo := newMemoryRepo()
	deliverer := &recordingDeliverer{}
	router := newTestRouter(repo, deliverer)
	b := seedBooking(repo, rupees(10000), 0)
	repo.fail["update"] = errors.New("upstream timeout")

	rec := do(t, router, http.MethodPost, "/bookings/"+b.ID.String()+"/payments",
		`{"amount":4000}`, map[string]string{"Idempotency-Key": "tap-1"})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), "upstream timeout")
	require.Empty(t, deliverer.delivered)
}

func TestPaymentEndpointDuplicateKey(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo, &recordingDeliverer{})
	b := seedBooking(repo, rupees(10000), 0)
	path := "/bookings/" + b.ID.String() + "/payments"

	rec := do(t, router, http.MethodPost, path, `{"amount":1000,"notify":false}`, map[string]string{"Idempotency-Key": "k"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, router, http.MethodPost, path, `{"amount":1000,"notify":false}`, map[string]string{"Idempotency-Key": "k"})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, rupees(1000), repo.bookings[b.ID].Advance)
}

func TestPaymentEndpointZeroAmountWarns(t *testing.T) {
	repo := newMemoryRepo()
	deliverer := &recordingDeliverer{}
	router := newTestRouter(repo, deliverer)
	b := seedBooking(repo, rupees(10000), 0)

	rec := do(t, router, http.MethodPost, "/bookings/"+b.ID.String()+"/payments", `{"amount":"abc"}`, map[string]string{"Idempotency-Key": "k"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), shared.WarningZeroPayment)
	require.Empty(t, deliverer.delivered)
}

func TestConvertEndpoint(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo, &recordingDeliverer{})
	enq := seedEnquiry(repo, rupees(10000))
	path := "/enquiries/" + enq.ID.String() + "/convert"

	rec := do(t, router, http.MethodPost, path, `{"advance":2500}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, path, `{"advance":2500}`, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Len(t, repo.bookings, 1)
}

func TestCancelEndpointReturnsWarning(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo, &recordingDeliverer{})
	b := seedBooking(repo, rupees(10000), rupees(8000))

	rec := do(t, router, http.MethodPost, "/bookings/"+b.ID.String()+"/cancel", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), shared.WarningCancelWithBalance)
}

func TestReceiptPDFEndpoint(t *testing.T) {
	repo := newMemoryRepo()
	deliverer := &recordingDeliverer{}
	router := newTestRouter(repo, deliverer)
	b := seedBooking(repo, rupees(10000), 0)

	rec := do(t, router, http.MethodPost, "/bookings/"+b.ID.String()+"/payments", `{"amount":1000,"notify":false}`, map[string]string{"Idempotency-Key": "k"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodGet, "/bookings/"+b.ID.String()+"/receipts/1.pdf", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Equal(t, "%PDF "+receipts.ReceiptKey(b.ID, 1), rec.Body.String())

	rec = do(t, router, http.MethodGet, "/bookings/"+b.ID.String()+"/receipts/9.pdf", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	deliverer.renderErr = errors.New("gotenberg down")
	rec = do(t, router, http.MethodGet, "/bookings/"+b.ID.String()+"/receipts/1.pdf", "", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestListAndShow(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo, &recordingDeliverer{})
	b := seedBooking(repo, rupees(10000), 0)

	rec := do(t, router, http.MethodGet, "/bookings?status=active&sort=-event_date", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), b.ID.String())

	rec = do(t, router, http.MethodGet, "/bookings?colour=red", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/bookings/not-a-uuid", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResendReceiptEndpoint(t *testing.T) {
	repo := newMemoryRepo()
	deliverer := &recordingDeliverer{}
	router := newTestRouter(repo, deliverer)
	b := seedBooking(repo, rupees(10000), 0)

	rec := do(t, router, http.MethodPost, "/bookings/"+b.ID.String()+"/payments", `{"amount":1000,"notify":false}`, map[string]string{"Idempotency-Key": "k"})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Empty(t, deliverer.delivered)

	rec = do(t, router, http.MethodPost, "/bookings/"+b.ID.String()+"/receipts/1/send", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, []string{receipts.ReceiptKey(b.ID, 1)}, deliverer.delivered)

	rec = do(t, router, http.MethodPost, "/bookings/"+b.ID.String()+"/receipts/0/send", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEditEndpointRejectsMalformedTotal(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo, &recordingDeliverer{})
	b := seedBooking(repo, rupees(10000), rupees(4000))

	rec := do(t, router, http.MethodPatch, "/bookings/"+b.ID.String(), `{"total":"abc"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "total")
	require.Equal(t, rupees(10000), repo.bookings[b.ID].Total)
}
