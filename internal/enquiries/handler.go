package enquiries

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sanctified-studios/studio/internal/dispatch"
	"github.com/sanctified-studios/studio/internal/platform/httpx"
	"github.com/sanctified-studios/studio/internal/receipts"
	"github.com/sanctified-studios/studio/internal/shared"
)

// Deliverer sends a rendered quotation.
type Deliverer interface {
	Deliver(ctx context.Context, doc receipts.Deliverable, opts dispatch.Options) dispatch.Result
}

// Handler wires enquiry HTTP endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	delivery Deliverer
	issuer   receipts.StudioInfo
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, delivery Deliverer, issuer receipts.StudioInfo) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, delivery: delivery, issuer: issuer}
}

// MountRoutes registers enquiry routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/share", h.share)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q, err := shared.ParseListQuery(r.URL.Query(), ListColumns())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, err := h.service.List(r.Context(), q)
	if err != nil {
		h.logger.Error("list enquiries failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Enquiry{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	e, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Warn("create enquiry failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, e)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	e, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.logger.Warn("update enquiry failed", slog.String("enquiry_id", id.String()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, e)
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

type shareRequest struct {
	Push bool `json:"push"`
}

// share sends the quotation for an enquiry to the customer.
func (h *Handler) share(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req shareRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.RespondError(w, err)
			return
		}
	}
	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	res := h.delivery.Deliver(r.Context(), Quotation(e, h.issuer), dispatch.Options{Push: req.Push})
	httpx.JSON(w, http.StatusOK, res)
}
