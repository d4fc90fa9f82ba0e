// Package receipts turns ledger snapshots into receipt and quotation content and
// the chat messages that accompany them.
package receipts

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sanctified-studios/studio/internal/money"
	"github.com/sanctified-studios/studio/internal/shared"
)

// Footer closes every document.
const Footer = "Thank you for choosing Baby Studio • Wedding Studio • Events"

// Terms printed under the amounts.
var Terms = []string{
	"This is a computer generated receipt and needs no signature.",
	"The remaining amount is payable on or before the event date.",
}

// StudioInfo identifies the issuer on documents and messages.
type StudioInfo struct {
	Name    string
	Contact string
}

// DefaultStudio is used when nothing is configured.
var DefaultStudio = StudioInfo{Name: "Sanctified Studios", Contact: "Gorakhpur 9827411116"}

func (s StudioInfo) orDefault() StudioInfo {
	if s.Name == "" {
		s.Name = DefaultStudio.Name
	}
	if s.Contact == "" {
		s.Contact = DefaultStudio.Contact
	}
	return s
}

// Signature is the sign-off used in chat messages.
func (s StudioInfo) Signature() string {
	s = s.orDefault()
	return fmt.Sprintf("Regards,\n%s %s", s.Name, s.Contact)
}

// Event is one function listed on a document.
type Event struct {
	Function string
	Date     shared.Date
	Time     string
	Service  string
	Address  string
}

// Describe renders the event on one line.
func (e Event) Describe() string {
	parts := []string{e.Function}
	if !e.Date.IsZero() {
		parts = append(parts, e.Date.Display())
	}
	if e.Time != "" {
		parts = append(parts, e.Time)
	}
	if e.Service != "" {
		parts = append(parts, e.Service)
	}
	if e.Address != "" {
		parts = append(parts, e.Address)
	}
	return strings.Join(parts, " · ")
}

// BookingSnapshot is a booking as read in the same transaction that applied a
// payment. Advance and Remaining are the values after that payment.
type BookingSnapshot struct {
	ID        uuid.UUID
	Name      string
	Phone     string
	EventDate shared.Date
	Total     money.Money
	Advance   money.Money
	Remaining money.Money
	Studio    string
	Package   string
	Events    []Event
}

// Payment is the payment just applied to the booking.
type Payment struct {
	Seq           int
	Amount        money.Money
	AdvanceBefore money.Money
}

// Receipt is the content of one payment receipt.
type Receipt struct {
	ID             string
	BookingID      uuid.UUID
	Seq            int
	Name           string
	Phone          string
	EventDate      shared.Date
	Total          money.Money
	AdvanceBefore  money.Money
	PaidNow        money.Money
	AdvanceAfter   money.Money
	RemainingAfter money.Money
	Studio         string
	Package        string
	Events         []Event
	Issuer         StudioInfo
}

// ReceiptID derives the printed receipt number from the booking and payment
// sequence so rendering the same payment twice yields the same number. It is short
// enough to read out and may repeat across bookings; ReceiptKey does not.
func ReceiptID(bookingID uuid.UUID, seq int) string {
	return fmt.Sprintf("SS-%s-%d", strings.ToUpper(bookingID.String()[:8]), seq)
}

// ReceiptKey identifies one payment's receipt for link caching and storage.
func ReceiptKey(bookingID uuid.UUID, seq int) string {
	return fmt.Sprintf("receipt:%s:%d", bookingID, seq)
}

// Build maps a booking snapshot and the payment just applied to receipt content.
func Build(b BookingSnapshot, p Payment, issuer StudioInfo) Receipt {
	events := make([]Event, len(b.Events))
	copy(events, b.Events)
	return Receipt{
		ID:             ReceiptID(b.ID, p.Seq),
		BookingID:      b.ID,
		Seq:            p.Seq,
		Name:           b.Name,
		Phone:          b.Phone,
		EventDate:      b.EventDate,
		Total:          b.Total,
		AdvanceBefore:  p.AdvanceBefore,
		PaidNow:        p.Amount,
		AdvanceAfter:   b.Advance,
		RemainingAfter: b.Remaining,
		Studio:         b.Studio,
		Package:        b.Package,
		Events:         events,
		Issuer:         issuer.orDefault(),
	}
}

// Key identifies the receipt for caching and coalescing.
func (r Receipt) Key() string { return ReceiptKey(r.BookingID, r.Seq) }

// Recipient is the customer phone.
func (r Receipt) Recipient() string { return r.Phone }

// Filename is the suggested storage name.
func (r Receipt) Filename() string { return fmt.Sprintf("receipt-%s-%d.pdf", r.BookingID, r.Seq) }

// Document lays the receipt out for renderers.
func (r Receipt) Document() Document {
	return Document{
		Kind:      KindReceipt,
		Title:     "Payment Receipt",
		Number:    r.ID,
		Issuer:    r.Issuer,
		Customer:  r.Name,
		Phone:     r.Phone,
		EventDate: r.EventDate.Display(),
		Studio:    r.Studio,
		Package:   r.Package,
		Events:    r.Events,
		Rows: []Row{
			{Label: "Total Amount", Value: money.Format(r.Total)},
			{Label: "Advance Paid (before this payment)", Value: money.Format(r.AdvanceBefore)},
			{Label: "Paid Now (this receipt)", Value: money.Format(r.PaidNow), Emphasis: true},
			{Label: "Advance Paid (after this payment)", Value: money.Format(r.AdvanceAfter)},
			{Label: "Remaining Amount", Value: money.Format(r.RemainingAfter), Emphasis: true},
		},
		Terms:  Terms,
		Footer: Footer,
	}
}

// Message composes the chat text for the receipt. See BuildDeliveryMessage.
func (r Receipt) Message(link string) string { return BuildDeliveryMessage(r, link) }

// BuildDeliveryMessage returns a greeting with the hosted link, or when there is
// no link, a plain-text itemisation built only from the receipt values.
func BuildDeliveryMessage(r Receipt, link string) string {
	if link != "" {
		return fmt.Sprintf("Hello %s,\n\nHere is your receipt: %s\n\nThank you!", r.Name, link)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", r.Name)
	fmt.Fprintf(&b, "Payment receipt %s\n", r.ID)
	fmt.Fprintf(&b, "Event: %s\n", describeEvent(r.Package, r.EventDate))
	fmt.Fprintf(&b, "Total Amount: %s\n", money.Format(r.Total))
	fmt.Fprintf(&b, "Paid Now: %s\n", money.Format(r.PaidNow))
	fmt.Fprintf(&b, "Advance Paid: %s\n", money.Format(r.AdvanceAfter))
	fmt.Fprintf(&b, "Remaining Amount: %s\n\n", money.Format(r.RemainingAfter))
	b.WriteString(r.Issuer.Signature())
	return b.String()
}

func describeEvent(pkg string, date shared.Date) string {
	label := "Event"
	if pkg != "" {
		label = pkg + " package"
	}
	return label + " on " + date.Display()
}
