package bookings

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sanctified-studios/studio/internal/enquiries"
	"github.com/sanctified-studios/studio/internal/ledger"
	"github.com/sanctified-studios/studio/internal/messaging"
	"github.com/sanctified-studios/studio/internal/money"
	"github.com/sanctified-studios/studio/internal/observability"
	"github.com/sanctified-studios/studio/internal/shared"
)

// ServiceConfig tunes the booking service.
type ServiceConfig struct {
	DefaultCountry string
}

// Service owns every booking write. Remaining balance and status always come from
// the ledger package applied to the row read under lock.
type Service struct {
	repo     Repository
	config   ServiceConfig
	validate *validator.Validate
	metrics  *observability.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs the service. metrics and logger may be nil.
func NewService(repo Repository, config ServiceConfig, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		config:   config,
		validate: shared.NewValidator(),
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Convert turns an enquiry into a booking. The booking insert, the optional
// advance payment row and the enquiry status change commit together or not at all.
func (s *Service) Convert(ctx context.Context, enquiryID uuid.UUID, req ConvertRequest) (Result, error) {
	var res Result
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		enq, err := tx.GetEnquiryForUpdate(ctx, enquiryID)
		if err != nil {
			return err
		}
		if enq.Converted() {
			return shared.ErrAlreadyConverted
		}

		now := s.now().UTC()
		snap := ledger.Open(enq.Amount, 0)
		b := Booking{
			ID:           uuid.New(),
			EnquiryID:    &enq.ID,
			Studio:       enq.Studio,
			Name:         enq.Name,
			Phone:        enq.Phone,
			InitialTotal: snap.Total,
			EventDate:    enq.EventDate,
			Package:      enq.Package,
			CustomEvents: enq.CustomEvents,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		b.setLedger(snap)

		payment := s.pay(&b, req.Advance, KindConversion, "", now)
		if err := tx.Insert(ctx, b); err != nil {
			return err
		}
		if payment != nil {
			if err := tx.InsertPayment(ctx, *payment); err != nil {
				return err
			}
		}
		if err := tx.MarkEnquiryActive(ctx, enq.ID, now); err != nil {
			return err
		}
		res = Result{Booking: b, Payment: payment}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	s.observe(res.Payment)
	s.logger.Info("enquiry converted",
		slog.String("enquiry_id", enquiryID.String()),
		slog.String("booking_id", res.Booking.ID.String()),
		slog.String("status", string(res.Booking.Status)))
	return res, nil
}

// Create enters a booking directly. An idempotency key is optional here; when
// given, a replay is rejected.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Result, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return Result{}, err
	}
	phone, err := s.normalizePhone(req.Phone)
	if err != nil {
		return Result{}, err
	}
	total, err := shared.PriceField("total", req.Total)
	if err != nil {
		return Result{}, err
	}
	if req.EventDate.IsZero() {
		return Result{}, shared.ValidationError{Field: "event_date", Msg: "required"}
	}
	if req.Package != enquiries.PackageCustom {
		req.CustomEvents = nil
	} else if len(req.CustomEvents) == 0 {
		return Result{}, shared.ValidationError{Field: "custom_events", Msg: "custom package needs at least one event"}
	}
	studio := req.Studio
	if studio == "" {
		studio = enquiries.StudioWedding
	}

	var res Result
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if req.IdempotencyKey != "" {
			if err := tx.ClaimIdempotencyKey(ctx, req.IdempotencyKey, moduleCreate); err != nil {
				return err
			}
		}
		now := s.now().UTC()
		snap := ledger.Open(total, 0)
		b := Booking{
			ID:           uuid.New(),
			Studio:       studio,
			Name:         req.Name,
			Phone:        phone,
			InitialTotal: snap.Total,
			EventDate:    req.EventDate,
			Package:      req.Package,
			CustomEvents: req.CustomEvents,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		b.setLedger(snap)

		payment := s.pay(&b, req.Advance, KindAdvance, "", now)
		if err := tx.Insert(ctx, b); err != nil {
			return err
		}
		if payment != nil {
			if err := tx.InsertPayment(ctx, *payment); err != nil {
				return err
			}
		}
		res = Result{Booking: b, Payment: payment}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	s.observe(res.Payment)
	return res, nil
}

// ApplyPayment records one payment. The idempotency key is claimed in the same
// transaction as the ledger write, so a replayed request changes nothing. A zero
// amount, which is also what malformed input decodes to, writes nothing.
func (s *Service) ApplyPayment(ctx context.Context, id uuid.UUID, req PaymentRequest) (Result, error) {
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	if req.IdempotencyKey == "" {
		return Result{}, shared.ValidationError{Field: "Idempotency-Key", Msg: "header required for payments"}
	}
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return Result{}, err
	}
	kind := req.Kind
	if kind == "" {
		kind = KindAdvance
	}

	if req.Amount <= 0 {
		b, err := s.repo.Get(ctx, id)
		if err != nil {
			return Result{}, err
		}
		if b.Status == ledger.StatusCancelled {
			return Result{}, shared.ErrBookingCancelled
		}
		s.logger.Warn("zero payment ignored", slog.String("booking_id", id.String()))
		return Result{Booking: b, Warnings: []shared.Warning{{
			Code:    shared.WarningZeroPayment,
			Message: "payment amount is zero or could not be read; nothing was recorded",
		}}}, nil
	}

	var res Result
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.ClaimIdempotencyKey(ctx, req.IdempotencyKey, modulePayment); err != nil {
			return err
		}
		b, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if b.Status == ledger.StatusCancelled {
			return shared.ErrBookingCancelled
		}
		now := s.now().UTC()
		payment := s.pay(&b, req.Amount, kind, req.IdempotencyKey, now)
		b.UpdatedAt = now
		if err := tx.Update(ctx, b); err != nil {
			return err
		}
		if err := tx.InsertPayment(ctx, *payment); err != nil {
			return err
		}
		res = Result{Booking: b, Payment: payment}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	s.observe(res.Payment)
	s.logger.Info("payment recorded",
		slog.String("booking_id", id.String()),
		slog.String("kind", string(kind)),
		slog.String("amount", res.Payment.Amount.String()),
		slog.String("status", string(res.Booking.Status)))
	return res, nil
}

// pay applies amount to b through the ledger and returns the payment row to
// store, or nil when there is nothing to record.
func (s *Service) pay(b *Booking, amount money.Money, kind Kind, key string, at time.Time) *Payment {
	if amount <= 0 {
		return nil
	}
	before := b.Snapshot()
	var after ledger.Snapshot
	if kind == KindFinal {
		after = ledger.RecordFinalSettlement(before, amount)
	} else {
		after = ledger.RecordAdvance(before, amount)
	}
	b.setLedger(after)
	b.PaymentCount++
	return &Payment{
		ID:             uuid.New(),
		BookingID:      b.ID,
		Seq:            b.PaymentCount,
		Kind:           kind,
		Amount:         amount,
		AdvanceBefore:  before.Advance,
		RemainingAfter: after.Remaining,
		TotalAt:        after.Total,
		IdempotencyKey: key,
		CreatedAt:      at,
	}
}

// Edit updates name, phone, total or event date. A new total recomputes the
// balance from the locked row; advance is never touched.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, req EditRequest) (Booking, error) {
	if err := shared.ValidateStruct(s.validate, req); err != nil {
		return Booking{}, err
	}
	var phone string
	if req.Phone != nil {
		var err error
		if phone, err = s.normalizePhone(*req.Phone); err != nil {
			return Booking{}, err
		}
	}
	var name string
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			return Booking{}, shared.ValidationError{Field: "name", Msg: "required"}
		}
	}
	if req.EventDate != nil && req.EventDate.IsZero() {
		return Booking{}, shared.ValidationError{Field: "event_date", Msg: "required"}
	}
	var newTotal *money.Money
	if req.Total != nil {
		total, err := shared.PriceField("total", *req.Total)
		if err != nil {
			return Booking{}, err
		}
		newTotal = &total
	}

	var out Booking
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		b, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req.Name != nil {
			b.Name = name
		}
		if req.Phone != nil {
			b.Phone = phone
		}
		if req.EventDate != nil {
			b.EventDate = *req.EventDate
		}
		total := b.Total
		if newTotal != nil {
			total = *newTotal
		}
		b.setLedger(ledger.EditTotals(b.Snapshot(), total))
		b.UpdatedAt = s.now().UTC()
		if err := tx.Update(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return Booking{}, err
	}
	return out, nil
}

// Cancel marks the booking cancelled. Cancelling with money still owed succeeds
// and returns a warning.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (Result, error) {
	var res Result
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		b, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		snap, warn := ledger.Cancel(b.Snapshot())
		b.setLedger(snap)
		b.UpdatedAt = s.now().UTC()
		if err := tx.Update(ctx, b); err != nil {
			return err
		}
		res.Booking = b
		if warn != nil {
			res.Warnings = append(res.Warnings, *warn)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	if len(res.Warnings) > 0 {
		s.logger.Warn("booking cancelled with balance",
			slog.String("booking_id", id.String()),
			slog.String("remaining", res.Booking.Remaining.String()))
	}
	return res, nil
}

// Get loads one booking.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Booking, error) {
	return s.repo.Get(ctx, id)
}

// List returns bookings matching q.
func (s *Service) List(ctx context.Context, q shared.ListQuery) ([]Booking, error) {
	return s.repo.List(ctx, q)
}

// Payments lists recorded payments in order.
func (s *Service) Payments(ctx context.Context, id uuid.UUID) ([]Payment, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Payments(ctx, id)
}

// Payment loads one payment with its booking.
func (s *Service) Payment(ctx context.Context, id uuid.UUID, seq int) (Booking, Payment, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return Booking{}, Payment{}, err
	}
	p, err := s.repo.Payment(ctx, id, seq)
	if err != nil {
		return Booking{}, Payment{}, err
	}
	return b, p, nil
}

// Delete hard-deletes the booking and its payments.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("booking deleted", slog.String("booking_id", id.String()))
	return nil
}

func (s *Service) observe(p *Payment) {
	if p == nil {
		return
	}
	rupees, _ := p.Amount.Decimal().Float64()
	s.metrics.PaymentApplied(string(p.Kind), rupees)
}

func (s *Service) normalizePhone(raw string) (string, error) {
	phone, err := messaging.NormalizePhone(raw, s.config.DefaultCountry)
	if err != nil {
		return "", err
	}
	if err := s.validate.Var(phone, "e164"); err != nil {
		return "", shared.ValidationError{Field: "phone", Msg: "must be an international phone number"}
	}
	return phone, nil
}
