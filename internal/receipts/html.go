package receipts

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/sanctified-studios/studio/internal/shared"
	"github.com/sanctified-studios/studio/web"
)

// PDFClient exposes the subset of the report client used by the renderer.
type PDFClient interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// HTMLRenderer executes the embedded document template and converts the HTML to
// PDF through Gotenberg.
type HTMLRenderer struct {
	tpl    *template.Template
	client PDFClient
}

// NewHTMLRenderer parses the receipt template and wires the PDF client.
func NewHTMLRenderer(client PDFClient) (*HTMLRenderer, error) {
	if client == nil {
		return nil, fmt.Errorf("receipts renderer: pdf client required")
	}
	tpl, err := template.New("document.html").ParseFS(web.Templates, "templates/receipts/document.html")
	if err != nil {
		return nil, err
	}
	return &HTMLRenderer{tpl: tpl, client: client}, nil
}

type htmlView struct {
	Document
	ContactQR template.URL
}

// HTML executes the template only.
func (r *HTMLRenderer) HTML(doc Document) (string, error) {
	qr, err := contactQRDataURL(doc.Issuer)
	if err != nil {
		return "", shared.RenderError{Err: err}
	}
	buf := &bytes.Buffer{}
	if err := r.tpl.Execute(buf, htmlView{Document: doc, ContactQR: qr}); err != nil {
		return "", shared.RenderError{Err: err}
	}
	return buf.String(), nil
}

// Render produces PDF bytes.
func (r *HTMLRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	if r == nil || r.tpl == nil || r.client == nil {
		return nil, shared.RenderError{Err: fmt.Errorf("receipts renderer not initialised")}
	}
	html, err := r.HTML(doc)
	if err != nil {
		return nil, err
	}
	pdf, err := r.client.RenderHTML(ctx, html)
	if err != nil {
		return nil, shared.RenderError{Err: err}
	}
	return pdf, nil
}
