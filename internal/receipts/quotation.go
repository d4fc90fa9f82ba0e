package receipts

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sanctified-studios/studio/internal/money"
	"github.com/sanctified-studios/studio/internal/shared"
)

// EnquirySnapshot is the enquiry content a quotation is built from.
type EnquirySnapshot struct {
	ID        uuid.UUID
	Name      string
	Phone     string
	EventDate shared.Date
	Total     money.Money
	Studio    string
	Package   string
	Events    []Event
	// Revision changes whenever the enquiry is edited.
	Revision int64
}

// Quotation is the document sent in reply to an enquiry.
type Quotation struct {
	ID        string
	EnquiryID uuid.UUID
	Name      string
	Phone     string
	EventDate shared.Date
	Total     money.Money
	Studio    string
	Package   string
	Events    []Event
	Issuer    StudioInfo
	Revision  int64
}

// BuildQuotation maps an enquiry to quotation content. Re-sharing an unchanged
// enquiry reuses the hosted copy.
func BuildQuotation(e EnquirySnapshot, issuer StudioInfo) Quotation {
	events := make([]Event, len(e.Events))
	copy(events, e.Events)
	return Quotation{
		ID:        fmt.Sprintf("SQ-%s", strings.ToUpper(e.ID.String()[:8])),
		EnquiryID: e.ID,
		Name:      e.Name,
		Phone:     e.Phone,
		EventDate: e.EventDate,
		Total:     e.Total,
		Studio:    e.Studio,
		Package:   e.Package,
		Events:    events,
		Issuer:    issuer.orDefault(),
		Revision:  e.Revision,
	}
}

func (q Quotation) Key() string { return fmt.Sprintf("quotation:%s:%d", q.EnquiryID, q.Revision) }

func (q Quotation) Recipient() string { return q.Phone }

func (q Quotation) Filename() string {
	return fmt.Sprintf("quotation-%s-%d.pdf", q.EnquiryID, q.Revision)
}

// Document lays the quotation out for renderers.
func (q Quotation) Document() Document {
	return Document{
		Kind:      KindQuotation,
		Title:     "Quotation",
		Number:    q.ID,
		Issuer:    q.Issuer,
		Customer:  q.Name,
		Phone:     q.Phone,
		EventDate: q.EventDate.Display(),
		Studio:    q.Studio,
		Package:   q.Package,
		Events:    q.Events,
		Rows: []Row{
			{Label: "Total Amount", Value: money.Format(q.Total), Emphasis: true},
		},
		Footer: Footer,
	}
}

func (q Quotation) Message(link string) string { return BuildQuotationMessage(q, link) }

// BuildQuotationMessage mirrors BuildDeliveryMessage for quotations.
func BuildQuotationMessage(q Quotation, link string) string {
	if link != "" {
		return fmt.Sprintf("Hello %s,\n\nHere is your quotation: %s\n\nThank you!", q.Name, link)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", q.Name)
	b.WriteString("Thank you for your enquiry. Here is your quotation.\n")
	if q.Studio != "" {
		fmt.Fprintf(&b, "Studio: %s\n", q.Studio)
	}
	fmt.Fprintf(&b, "Event: %s\n", describeEvent(q.Package, q.EventDate))
	if len(q.Events) > 0 {
		b.WriteString("Functions:\n")
		for _, ev := range q.Events {
			fmt.Fprintf(&b, "- %s\n", ev.Describe())
		}
	}
	fmt.Fprintf(&b, "Total Amount: %s\n\n", money.Format(q.Total))
	b.WriteString(q.Issuer.Signature())
	return b.String()
}
