package enquiries

import (
	"github.com/sanctified-studios/studio/internal/receipts"
)

// ReceiptEvents lists the functions a package covers in document form.
func ReceiptEvents(studio Studio, pkg Package, custom []CustomEvent) []receipts.Event {
	events := Events(studio, pkg, custom)
	if len(events) == 0 {
		return nil
	}
	out := make([]receipts.Event, 0, len(events))
	for _, ev := range events {
		out = append(out, receipts.Event{
			Function: ev.Function,
			Date:     ev.Date,
			Time:     ev.Time,
			Service:  ev.Service,
			Address:  ev.Address,
		})
	}
	return out
}

// Quotation builds the quotation sent in reply to the enquiry.
func Quotation(e Enquiry, issuer receipts.StudioInfo) receipts.Quotation {
	return receipts.BuildQuotation(receipts.EnquirySnapshot{
		ID:        e.ID,
		Name:      e.Name,
		Phone:     e.Phone,
		EventDate: e.EventDate,
		Total:     e.Amount,
		Studio:    e.Studio.Label(),
		Package:   e.Package.Label(),
		Events:    ReceiptEvents(e.Studio, e.Package, e.CustomEvents),
		Revision:  e.UpdatedAt.UnixNano(),
	}, issuer)
}
