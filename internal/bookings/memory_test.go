package bookings

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sanctified-studios/studio/internal/enquiries"
	"github.com/sanctified-studios/studio/internal/shared"
)

type memoryRepo struct {
	bookings  map[uuid.UUID]Booking
	enquiries map[uuid.UUID]enquiries.Enquiry
	payments  map[uuid.UUID][]Payment
	keys      map[string]string

	// failures injected per operation name
	fail map[string]error
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		bookings:  make(map[uuid.UUID]Booking),
		enquiries: make(map[uuid.UUID]enquiries.Enquiry),
		payments:  make(map[uuid.UUID][]Payment),
		keys:      make(map[string]string),
		fail:      make(map[string]error),
	}
}

func (r *memoryRepo) snapshot() *memoryRepo {
	cp := newMemoryRepo()
	for k, v := range r.bookings {
		cp.bookings[k] = v
	}
	for k, v := range r.enquiries {
		cp.enquiries[k] = v
	}
	for k, v := range r.payments {
		cp.payments[k] = append([]Payment(nil), v...)
	}
	for k, v := range r.keys {
		cp.keys[k] = v
	}
	cp.fail = r.fail
	return cp
}

func (r *memoryRepo) restore(from *memoryRepo) {
	r.bookings = from.bookings
	r.enquiries = from.enquiries
	r.payments = from.payments
	r.keys = from.keys
}

// WithTx discards every change when fn fails, like a rolled back transaction.
func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	saved := r.snapshot()
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.restore(saved)
		return err
	}
	if err := r.fail["commit"]; err != nil {
		r.restore(saved)
		return shared.Persistence("commit transaction", err)
	}
	return nil
}

func (r *memoryRepo) Get(_ context.Context, id uuid.UUID) (Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return Booking{}, notFound(id)
	}
	return b, nil
}

func (r *memoryRepo) List(_ context.Context, q shared.ListQuery) ([]Booking, error) {
	var out []Booking
	for _, b := range r.bookings {
		match := true
		for _, f := range q.Filters {
			if f.Field == "status" && string(b.Status) != f.Value {
				match = false
			}
		}
		if match {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepo) Payments(_ context.Context, bookingID uuid.UUID) ([]Payment, error) {
	return append([]Payment(nil), r.payments[bookingID]...), nil
}

func (r *memoryRepo) Payment(_ context.Context, bookingID uuid.UUID, seq int) (Payment, error) {
	for _, p := range r.payments[bookingID] {
		if p.Seq == seq {
			return p, nil
		}
	}
	return Payment{}, shared.NotFoundError{Resource: "payment"}
}

func (r *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.bookings[id]; !ok {
		return notFound(id)
	}
	delete(r.bookings, id)
	delete(r.payments, id)
	return nil
}

func (tx *memoryTx) ClaimIdempotencyKey(_ context.Context, key, module string) error {
	if _, ok := tx.repo.keys[key]; ok {
		return shared.ErrIdempotencyConflict
	}
	tx.repo.keys[key] = module
	return nil
}

func (tx *memoryTx) GetEnquiryForUpdate(_ context.Context, id uuid.UUID) (enquiries.Enquiry, error) {
	e, ok := tx.repo.enquiries[id]
	if !ok {
		return enquiries.Enquiry{}, shared.NotFoundError{Resource: "enquiry", ID: id.String()}
	}
	return e, nil
}

func (tx *memoryTx) MarkEnquiryActive(_ context.Context, id uuid.UUID, at time.Time) error {
	if err := tx.repo.fail["mark_enquiry"]; err != nil {
		return shared.Persistence("mark enquiry active", err)
	}
	e := tx.repo.enquiries[id]
	if e.Status != enquiries.StatusEnquiry {
		return shared.ErrAlreadyConverted
	}
	e.Status = enquiries.StatusActive
	e.UpdatedAt = at
	tx.repo.enquiries[id] = e
	return nil
}

func (tx *memoryTx) GetForUpdate(ctx context.Context, id uuid.UUID) (Booking, error) {
	return tx.repo.Get(ctx, id)
}

func (tx *memoryTx) Insert(_ context.Context, b Booking) error {
	if err := tx.repo.fail["insert"]; err != nil {
		return shared.Persistence("create booking", err)
	}
	tx.repo.bookings[b.ID] = b
	return nil
}

func (tx *memoryTx) Update(_ context.Context, b Booking) error {
	if err := tx.repo.fail["update"]; err != nil {
		return shared.Persistence("update booking", err)
	}
	if _, ok := tx.repo.bookings[b.ID]; !ok {
		return notFound(b.ID)
	}
	tx.repo.bookings[b.ID] = b
	return nil
}

func (tx *memoryTx) InsertPayment(_ context.Context, p Payment) error {
	if err := tx.repo.fail["insert_payment"]; err != nil {
		return shared.Persistence("record payment", err)
	}
	tx.repo.payments[p.BookingID] = append(tx.repo.payments[p.BookingID], p)
	return nil
}

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
