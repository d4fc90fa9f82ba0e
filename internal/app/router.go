package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sanctified-studios/studio/internal/bookings"
	"github.com/sanctified-studios/studio/internal/enquiries"
	"github.com/sanctified-studios/studio/internal/observability"
	"github.com/sanctified-studios/studio/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	EnquiryHandler *enquiries.Handler
	BookingHandler *bookings.Handler
	JobHandler     *jobs.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with studio defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	hash := ""
	if params.Config != nil {
		hash = params.Config.OperatorTokenHash
	}
	r.Group(func(r chi.Router) {
		r.Use(OperatorAuth(hash, params.Logger))
		if params.EnquiryHandler != nil || params.BookingHandler != nil {
			r.Route("/enquiries", func(r chi.Router) {
				if params.EnquiryHandler != nil {
					params.EnquiryHandler.MountRoutes(r)
				}
				if params.BookingHandler != nil {
					params.BookingHandler.MountConversionRoutes(r)
				}
			})
		}
		if params.BookingHandler != nil {
			r.Route("/bookings", params.BookingHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
