package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanctified-studios/studio/internal/enquiries"
	"github.com/sanctified-studios/studio/internal/platform/db"
	"github.com/sanctified-studios/studio/internal/shared"
)

// Repository defines booking persistence.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (Booking, error)
	List(ctx context.Context, q shared.ListQuery) ([]Booking, error)
	Payments(ctx context.Context, bookingID uuid.UUID) ([]Payment, error)
	Payment(ctx context.Context, bookingID uuid.UUID, seq int) (Payment, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Write operations (transactional)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes transactional operations. Reads ending in ForUpdate hold
// a row lock until the transaction ends.
type TxRepository interface {
	ClaimIdempotencyKey(ctx context.Context, key, module string) error
	GetEnquiryForUpdate(ctx context.Context, id uuid.UUID) (enquiries.Enquiry, error)
	MarkEnquiryActive(ctx context.Context, id uuid.UUID, at time.Time) error
	GetForUpdate(ctx context.Context, id uuid.UUID) (Booking, error)
	Insert(ctx context.Context, b Booking) error
	Update(ctx context.Context, b Booking) error
	InsertPayment(ctx context.Context, p Payment) error
}

// repository implements Repository using pgxpool.
type repository struct {
	pool        *pgxpool.Pool
	idempotency *shared.IdempotencyStore
}

// NewRepository creates a new repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool, idempotency: shared.NewIdempotencyStore(pool)}
}

// txRepository implements TxRepository.
type txRepository struct {
	tx          pgx.Tx
	idempotency *shared.IdempotencyStore
}

// WithTx wraps callback in repeatable-read transaction.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx, idempotency: r.idempotency.Bind(tx)})
	})
	return shared.Persistence("transaction", err)
}

const bookingColumns = `id, enquiry_id, studio, name, phone, total, initial_total, advance, remaining, status,
	event_date, package, custom_events, payment_count, created_at, updated_at`

func scanBooking(row pgx.Row) (Booking, error) {
	var (
		b      Booking
		events []byte
	)
	if err := row.Scan(&b.ID, &b.EnquiryID, &b.Studio, &b.Name, &b.Phone, &b.Total, &b.InitialTotal,
		&b.Advance, &b.Remaining, &b.Status, &b.EventDate, &b.Package, &events, &b.PaymentCount,
		&b.CreatedAt, &b.UpdatedAt); err != nil {
		return Booking{}, err
	}
	if len(events) > 0 {
		if err := json.Unmarshal(events, &b.CustomEvents); err != nil {
			return Booking{}, fmt.Errorf("decode custom events: %w", err)
		}
	}
	return b, nil
}

const paymentColumns = `id, booking_id, seq, kind, amount, advance_before, remaining_after, total_at,
	idempotency_key, created_at`

func scanPayment(row pgx.Row) (Payment, error) {
	var (
		p   Payment
		key *string
	)
	if err := row.Scan(&p.ID, &p.BookingID, &p.Seq, &p.Kind, &p.Amount, &p.AdvanceBefore,
		&p.RemainingAfter, &p.TotalAt, &key, &p.CreatedAt); err != nil {
		return Payment{}, err
	}
	if key != nil {
		p.IdempotencyKey = *key
	}
	return p, nil
}

func notFound(id uuid.UUID) error {
	return shared.NotFoundError{Resource: "booking", ID: id.String()}
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Booking, error) {
	b, err := scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Booking{}, notFound(id)
		}
		return Booking{}, shared.Persistence("load booking", err)
	}
	return b, nil
}

func (r *repository) List(ctx context.Context, q shared.ListQuery) ([]Booking, error) {
	tail, args, err := q.SQL(listColumns, shared.Sort{Field: "event_date"})
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+bookingColumns+` FROM bookings`+tail, args...)
	if err != nil {
		return nil, shared.Persistence("list bookings", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, shared.Persistence("list bookings", err)
		}
		out = append(out, b)
	}
	return out, shared.Persistence("list bookings", rows.Err())
}

func (r *repository) Payments(ctx context.Context, bookingID uuid.UUID) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM booking_payments WHERE booking_id = $1 ORDER BY seq`, bookingID)
	if err != nil {
		return nil, shared.Persistence("list payments", err)
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, shared.Persistence("list payments", err)
		}
		out = append(out, p)
	}
	return out, shared.Persistence("list payments", rows.Err())
}

func (r *repository) Payment(ctx context.Context, bookingID uuid.UUID, seq int) (Payment, error) {
	p, err := scanPayment(r.pool.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM booking_payments WHERE booking_id = $1 AND seq = $2`, bookingID, seq))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, shared.NotFoundError{Resource: "payment", ID: fmt.Sprintf("%s/%d", bookingID, seq)}
		}
		return Payment{}, shared.Persistence("load payment", err)
	}
	return p, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return shared.Persistence("delete booking", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}

func (t *txRepository) ClaimIdempotencyKey(ctx context.Context, key, module string) error {
	return shared.Persistence("claim idempotency key", t.idempotency.CheckAndInsert(ctx, key, module))
}

func (t *txRepository) GetEnquiryForUpdate(ctx context.Context, id uuid.UUID) (enquiries.Enquiry, error) {
	e, err := enquiries.Scan(t.tx.QueryRow(ctx,
		`SELECT `+enquiries.SelectColumns+` FROM enquiries WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return enquiries.Enquiry{}, shared.NotFoundError{Resource: "enquiry", ID: id.String()}
		}
		return enquiries.Enquiry{}, shared.Persistence("lock enquiry", err)
	}
	return e, nil
}

func (t *txRepository) MarkEnquiryActive(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE enquiries SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
		id, enquiries.StatusActive, at, enquiries.StatusEnquiry)
	if err != nil {
		return shared.Persistence("mark enquiry active", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrAlreadyConverted
	}
	return nil
}

func (t *txRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (Booking, error) {
	b, err := scanBooking(t.tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Booking{}, notFound(id)
		}
		return Booking{}, shared.Persistence("lock booking", err)
	}
	return b, nil
}

func (t *txRepository) Insert(ctx context.Context, b Booking) error {
	events, err := enquiries.EncodeEvents(b.CustomEvents)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		b.ID, b.EnquiryID, b.Studio, b.Name, b.Phone, b.Total, b.InitialTotal, b.Advance, b.Remaining,
		b.Status, b.EventDate, b.Package, events, b.PaymentCount, b.CreatedAt, b.UpdatedAt)
	return shared.Persistence("create booking", err)
}

func (t *txRepository) Update(ctx context.Context, b Booking) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE bookings
		SET name = $2, phone = $3, total = $4, advance = $5, remaining = $6, status = $7,
		    event_date = $8, payment_count = $9, updated_at = $10
		WHERE id = $1`,
		b.ID, b.Name, b.Phone, b.Total, b.Advance, b.Remaining, b.Status, b.EventDate, b.PaymentCount, b.UpdatedAt)
	if err != nil {
		return shared.Persistence("update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(b.ID)
	}
	return nil
}

func (t *txRepository) InsertPayment(ctx context.Context, p Payment) error {
	var key *string
	if p.IdempotencyKey != "" {
		key = &p.IdempotencyKey
	}
	_, err := t.tx.Exec(ctx, `
		INSERT INTO booking_payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.BookingID, p.Seq, p.Kind, p.Amount, p.AdvanceBefore, p.RemainingAfter, p.TotalAt, key, p.CreatedAt)
	return shared.Persistence("record payment", err)
}
