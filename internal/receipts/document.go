package receipts

import (
	"context"
)

// Kind distinguishes document templates.
type Kind string

const (
	KindReceipt   Kind = "receipt"
	KindQuotation Kind = "quotation"
)

// Row is one labelled amount.
type Row struct {
	Label    string
	Value    string
	Emphasis bool
}

// Document is the renderer-neutral layout of a receipt or quotation. All values
// are already formatted for display.
type Document struct {
	Kind      Kind
	Title     string
	Number    string
	Issuer    StudioInfo
	Customer  string
	Phone     string
	EventDate string
	Studio    string
	Package   string
	Events    []Event
	Rows      []Row
	Terms     []string
	Footer    string
}

// Deliverable is anything that can be rendered and sent to a customer.
type Deliverable interface {
	Key() string
	Recipient() string
	Filename() string
	Document() Document
	Message(link string) string
}

// Renderer turns a document into PDF bytes. Failures are RenderError.
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}
