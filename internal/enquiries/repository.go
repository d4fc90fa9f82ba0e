package enquiries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanctified-studios/studio/internal/shared"
)

// Repository defines enquiry persistence.
type Repository interface {
	Create(ctx context.Context, e Enquiry) error
	Get(ctx context.Context, id uuid.UUID) (Enquiry, error)
	List(ctx context.Context, q shared.ListQuery) ([]Enquiry, error)
	Update(ctx context.Context, e Enquiry) (Enquiry, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// repository implements Repository using pgxpool.
type repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// SelectColumns is shared with the booking converter, which reads enquiries
// inside its own transaction.
const SelectColumns = `id, studio, name, phone, amount, event_date, package, custom_events, status, created_at, updated_at`

// Scan reads one enquiry row selected with SelectColumns.
func Scan(row pgx.Row) (Enquiry, error) {
	var (
		e      Enquiry
		events []byte
	)
	if err := row.Scan(&e.ID, &e.Studio, &e.Name, &e.Phone, &e.Amount, &e.EventDate,
		&e.Package, &events, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return Enquiry{}, err
	}
	if len(events) > 0 {
		if err := json.Unmarshal(events, &e.CustomEvents); err != nil {
			return Enquiry{}, fmt.Errorf("decode custom events: %w", err)
		}
	}
	return e, nil
}

// EncodeEvents renders custom events for a jsonb column.
func EncodeEvents(events []CustomEvent) ([]byte, error) {
	if events == nil {
		events = []CustomEvent{}
	}
	return json.Marshal(events)
}

func (r *repository) Create(ctx context.Context, e Enquiry) error {
	events, err := EncodeEvents(e.CustomEvents)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO enquiries (id, studio, name, phone, amount, event_date, package, custom_events, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.Studio, e.Name, e.Phone, e.Amount, e.EventDate, e.Package, events, e.Status, e.CreatedAt, e.UpdatedAt)
	return shared.Persistence("create enquiry", err)
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Enquiry, error) {
	e, err := Scan(r.pool.QueryRow(ctx, `SELECT `+SelectColumns+` FROM enquiries WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Enquiry{}, shared.NotFoundError{Resource: "enquiry", ID: id.String()}
		}
		return Enquiry{}, shared.Persistence("load enquiry", err)
	}
	return e, nil
}

func (r *repository) List(ctx context.Context, q shared.ListQuery) ([]Enquiry, error) {
	tail, args, err := q.SQL(listColumns, shared.Sort{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+SelectColumns+` FROM enquiries`+tail, args...)
	if err != nil {
		return nil, shared.Persistence("list enquiries", err)
	}
	defer rows.Close()

	var out []Enquiry
	for rows.Next() {
		e, err := Scan(rows)
		if err != nil {
			return nil, shared.Persistence("list enquiries", err)
		}
		out = append(out, e)
	}
	return out, shared.Persistence("list enquiries", rows.Err())
}

// Update writes the editable fields and returns the stored row. The amount only
// changes while the row is still an enquiry; the guard sits in the UPDATE itself
// so a conversion committing after the caller's read cannot be overtaken.
func (r *repository) Update(ctx context.Context, e Enquiry) (Enquiry, error) {
	events, err := EncodeEvents(e.CustomEvents)
	if err != nil {
		return Enquiry{}, err
	}
	out, err := Scan(r.pool.QueryRow(ctx, `
		UPDATE enquiries
		SET studio = $2, name = $3, phone = $4, amount = $5, event_date = $6, package = $7,
		    custom_events = $8, updated_at = $9
		WHERE id = $1 AND (status = $10 OR amount = $5)
		RETURNING `+SelectColumns,
		e.ID, e.Studio, e.Name, e.Phone, e.Amount, e.EventDate, e.Package, events, e.UpdatedAt, StatusEnquiry))
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Enquiry{}, shared.Persistence("update enquiry", err)
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM enquiries WHERE id = $1)`, e.ID).Scan(&exists); err != nil {
		return Enquiry{}, shared.Persistence("update enquiry", err)
	}
	if !exists {
		return Enquiry{}, shared.NotFoundError{Resource: "enquiry", ID: e.ID.String()}
	}
	return Enquiry{}, ErrAmountFrozen
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM enquiries WHERE id = $1`, id)
	if err != nil {
		return shared.Persistence("delete enquiry", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFoundError{Resource: "enquiry", ID: id.String()}
	}
	return nil
}
