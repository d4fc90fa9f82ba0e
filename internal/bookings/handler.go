package bookings

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sanctified-studios/studio/internal/dispatch"
	"github.com/sanctified-studios/studio/internal/platform/httpx"
	"github.com/sanctified-studios/studio/internal/receipts"
	"github.com/sanctified-studios/studio/internal/shared"
)

// Deliverer renders and sends documents.
type Deliverer interface {
	Deliver(ctx context.Context, doc receipts.Deliverable, opts dispatch.Options) dispatch.Result
	Render(ctx context.Context, doc receipts.Deliverable) ([]byte, error)
}

// Handler manages booking HTTP endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	delivery Deliverer
	issuer   receipts.StudioInfo
}

// NewHandler creates a new handler.
func NewHandler(logger *slog.Logger, service *Service, delivery Deliverer, issuer receipts.StudioInfo) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, delivery: delivery, issuer: issuer}
}

// MountRoutes registers routes under /bookings.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/export.xlsx", h.export)
	r.Get("/{id}", h.show)
	r.Patch("/{id}", h.edit)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/cancel", h.cancel)
	r.Get("/{id}/payments", h.payments)
	r.Post("/{id}/payments", h.applyPayment)
	r.Get("/{id}/receipts/{seq}.pdf", h.receiptPDF)
	r.Post("/{id}/receipts/{seq}/send", h.resendReceipt)
}

// MountConversionRoutes registers the conversion endpoint under /enquiries.
func (h *Handler) MountConversionRoutes(r chi.Router) {
	r.Post("/{id}/convert", h.convert)
}

type writeResponse struct {
	Booking   Booking          `json:"booking"`
	Payment   *Payment         `json:"payment,omitempty"`
	ReceiptID string           `json:"receipt_id,omitempty"`
	Delivery  *dispatch.Result `json:"delivery,omitempty"`
	Warnings  []shared.Warning `json:"warnings,omitempty"`
}

// respondWrite runs only after the service reported a committed write, so a
// receipt never goes out for a change that was not stored.
func (h *Handler) respondWrite(w http.ResponseWriter, r *http.Request, status int, res Result, notify, push bool) {
	out := writeResponse{Booking: res.Booking, Payment: res.Payment, Warnings: res.Warnings}
	if res.Payment != nil {
		out.ReceiptID = res.Payment.ReceiptID()
		if notify && h.delivery != nil {
			delivery := h.delivery.Deliver(r.Context(), Receipt(res.Booking, *res.Payment, h.issuer), dispatch.Options{Push: push})
			out.Delivery = &delivery
			out.Warnings = append(out.Warnings, delivery.Warnings...)
		}
	}
	httpx.JSON(w, status, out)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q, err := shared.ParseListQuery(r.URL.Query(), ListColumns())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, err := h.service.List(r.Context(), q)
	if err != nil {
		h.logger.Error("list bookings failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Booking{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

// export downloads the filtered booking list as a spreadsheet.
func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	q, err := shared.ParseListQuery(r.URL.Query(), ListColumns())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, err := h.service.List(r.Context(), q)
	if err != nil {
		h.logger.Error("export bookings failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, items); err != nil {
		h.logger.Error("write bookings workbook", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	res, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create booking failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.respondWrite(w, r, http.StatusCreated, res, req.Notify, req.Push)
}

func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req ConvertRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, err)
			return
		}
	}
	res, err := h.service.Convert(r.Context(), id, req)
	if err != nil {
		h.logger.Warn("convert enquiry failed", slog.String("enquiry_id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.respondWrite(w, r, http.StatusCreated, res, req.Notify, req.Push)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) edit(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req EditRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	b, err := h.service.Edit(r.Context(), id, req)
	if err != nil {
		h.logger.Error("edit booking failed", slog.String("booking_id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	res, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		h.logger.Error("cancel booking failed", slog.String("booking_id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, writeResponse{Booking: res.Booking, Warnings: res.Warnings})
}

func (h *Handler) payments(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, err := h.service.Payments(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Payment{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) applyPayment(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req PaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	req.IdempotencyKey = r.Header.Get("Idempotency-Key")
	res, err := h.service.ApplyPayment(r.Context(), id, req)
	if err != nil {
		h.logger.Warn("apply payment failed", slog.String("booking_id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	status := http.StatusOK
	if res.Payment != nil {
		status = http.StatusCreated
	}
	notify := req.Notify == nil || *req.Notify
	h.respondWrite(w, r, status, res, notify, req.Push)
}

func (h *Handler) loadReceipt(r *http.Request) (receipts.Receipt, error) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		return receipts.Receipt{}, err
	}
	seq, err := strconv.Atoi(chi.URLParam(r, "seq"))
	if err != nil || seq < 1 {
		return receipts.Receipt{}, shared.ValidationError{Field: "seq", Msg: "must be a positive integer"}
	}
	b, p, err := h.service.Payment(r.Context(), id, seq)
	if err != nil {
		return receipts.Receipt{}, err
	}
	return Receipt(b, p, h.issuer), nil
}

func (h *Handler) receiptPDF(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.loadReceipt(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pdf, err := h.delivery.Render(r.Context(), receipt)
	if err != nil {
		h.logger.Error("render receipt failed", slog.String("receipt", receipt.ID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+receipt.Filename()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) resendReceipt(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.loadReceipt(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	push := r.URL.Query().Get("push") == "true"
	httpx.JSON(w, http.StatusOK, h.delivery.Deliver(r.Context(), receipt, dispatch.Options{Push: push}))
}
