package bookings

import (
	"time"

	"github.com/google/uuid"

	"github.com/sanctified-studios/studio/internal/enquiries"
	"github.com/sanctified-studios/studio/internal/ledger"
	"github.com/sanctified-studios/studio/internal/money"
	"github.com/sanctified-studios/studio/internal/receipts"
	"github.com/sanctified-studios/studio/internal/shared"
)

// Kind labels a payment. The ledger treats every kind the same way.
type Kind string

const (
	KindAdvance    Kind = "advance"
	KindFinal      Kind = "final"
	KindConversion Kind = "conversion"
)

// idempotency module names.
const (
	modulePayment = "bookings.payment"
	moduleCreate  = "bookings.create"
)

// Booking is a confirmed engagement with its running ledger.
type Booking struct {
	ID           uuid.UUID               `json:"id"`
	EnquiryID    *uuid.UUID              `json:"enquiry_id,omitempty"`
	Studio       enquiries.Studio        `json:"studio"`
	Name         string                  `json:"name"`
	Phone        string                  `json:"phone"`
	Total        money.Money             `json:"total"`
	InitialTotal money.Money             `json:"initial_total"`
	Advance      money.Money             `json:"advance"`
	Remaining    money.Money             `json:"remaining"`
	Status       ledger.Status           `json:"status"`
	EventDate    shared.Date             `json:"event_date"`
	Package      enquiries.Package       `json:"package"`
	CustomEvents []enquiries.CustomEvent `json:"custom_events,omitempty"`
	PaymentCount int                     `json:"payment_count"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// Snapshot returns the ledger view of the booking.
func (b Booking) Snapshot() ledger.Snapshot {
	return ledger.Snapshot{Total: b.Total, Advance: b.Advance, Remaining: b.Remaining, Status: b.Status}
}

func (b *Booking) setLedger(s ledger.Snapshot) {
	b.Total = s.Total
	b.Advance = s.Advance
	b.Remaining = s.Remaining
	b.Status = s.Status
}

// Payment is one recorded payment with the ledger values around it.
type Payment struct {
	ID             uuid.UUID   `json:"id"`
	BookingID      uuid.UUID   `json:"booking_id"`
	Seq            int         `json:"seq"`
	Kind           Kind        `json:"kind"`
	Amount         money.Money `json:"amount"`
	AdvanceBefore  money.Money `json:"advance_before"`
	RemainingAfter money.Money `json:"remaining_after"`
	TotalAt        money.Money `json:"total_at"`
	IdempotencyKey string      `json:"-"`
	CreatedAt      time.Time   `json:"created_at"`
}

// ReceiptID is the stable id of the receipt for this payment.
func (p Payment) ReceiptID() string { return receipts.ReceiptID(p.BookingID, p.Seq) }

// PaymentRequest records money received against a booking.
type PaymentRequest struct {
	Amount         money.Money `json:"amount"`
	Kind           Kind        `json:"kind" validate:"omitempty,oneof=advance final"`
	Notify         *bool       `json:"notify"`
	Push           bool        `json:"push"`
	IdempotencyKey string      `json:"-"`
}

// EditRequest patches booking fields; nil fields stay unchanged.
type EditRequest struct {
	Name      *string      `json:"name" validate:"omitempty,max=120"`
	Phone     *string      `json:"phone" validate:"omitempty,max=32"`
	Total     *money.Price `json:"total"`
	EventDate *shared.Date `json:"event_date"`
}

// CreateRequest enters a booking directly without an enquiry.
type CreateRequest struct {
	Studio         enquiries.Studio        `json:"studio" validate:"omitempty,oneof=wedding baby"`
	Name           string                  `json:"name" validate:"required,max=120"`
	Phone          string                  `json:"phone" validate:"required,max=32"`
	Total          money.Price             `json:"total"`
	Advance        money.Money             `json:"advance"`
	EventDate      shared.Date             `json:"event_date"`
	Package        enquiries.Package       `json:"package" validate:"required,oneof=regular premium custom"`
	CustomEvents   []enquiries.CustomEvent `json:"custom_events" validate:"omitempty,dive"`
	Notify         bool                    `json:"notify"`
	Push           bool                    `json:"push"`
	IdempotencyKey string                  `json:"-"`
}

// ConvertRequest turns an enquiry into a booking with an optional advance.
type ConvertRequest struct {
	Advance money.Money `json:"advance"`
	Notify  bool        `json:"notify"`
	Push    bool        `json:"push"`
}

// Result is a booking write with the payment it recorded, if any.
type Result struct {
	Booking  Booking          `json:"booking"`
	Payment  *Payment         `json:"payment,omitempty"`
	Warnings []shared.Warning `json:"warnings,omitempty"`
}

var listColumns = map[string]string{
	"name":       "name",
	"phone":      "phone",
	"studio":     "studio",
	"package":    "package",
	"status":     "status",
	"total":      "total",
	"advance":    "advance",
	"remaining":  "remaining",
	"event_date": "event_date",
	"created_at": "created_at",
	"enquiry_id": "enquiry_id",
}

// ListColumns exposes the filterable fields to handlers.
func ListColumns() map[string]string { return listColumns }

// Events lists the functions the booking covers for documents.
func (b Booking) Events() []receipts.Event {
	return enquiries.ReceiptEvents(b.Studio, b.Package, b.CustomEvents)
}

// Receipt builds the receipt for payment p from values recorded with the payment,
// so re-rendering an old receipt shows what was true at the time.
func Receipt(b Booking, p Payment, issuer receipts.StudioInfo) receipts.Receipt {
	return receipts.Build(receipts.BookingSnapshot{
		ID:        b.ID,
		Name:      b.Name,
		Phone:     b.Phone,
		EventDate: b.EventDate,
		Total:     p.TotalAt,
		Advance:   p.AdvanceBefore + p.Amount,
		Remaining: p.RemainingAfter,
		Studio:    b.Studio.Label(),
		Package:   b.Package.Label(),
		Events:    b.Events(),
	}, receipts.Payment{Seq: p.Seq, Amount: p.Amount, AdvanceBefore: p.AdvanceBefore}, issuer)
}
