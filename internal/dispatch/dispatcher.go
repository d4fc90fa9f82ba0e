// Package dispatch delivers receipts and quotations to customers once the write
// they describe has been stored.
package dispatch

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/sanctified-studios/studio/internal/messaging"
	"github.com/sanctified-studios/studio/internal/observability"
	"github.com/sanctified-studios/studio/internal/receipts"
	"github.com/sanctified-studios/studio/internal/shared"
)

const contentTypePDF = "application/pdf"

// Uploader hosts a rendered document and returns its link.
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// LinkCache remembers hosted links by document key.
type LinkCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, link string) error
}

// Sender pushes a document through the business messaging API.
type Sender interface {
	Enabled() bool
	SendDocument(ctx context.Context, phone, link, filename, caption string) (string, error)
}

// Result is what the operator gets back after a delivery attempt.
type Result struct {
	Link              string           `json:"link,omitempty"`
	Message           string           `json:"message"`
	ChatLink          string           `json:"chat_link"`
	ProviderMessageID string           `json:"provider_message_id,omitempty"`
	Degraded          bool             `json:"degraded"`
	Warnings          []shared.Warning `json:"warnings,omitempty"`
}

// Options tune the dispatcher.
type Options struct {
	// Push sends the document through the business API when a sender is
	// configured. Otherwise only the chat link is returned.
	Push bool
}

// Dispatcher renders, hosts and announces documents.
type Dispatcher struct {
	renderer receipts.Renderer
	uploader Uploader
	cache    LinkCache
	sender   Sender
	metrics  *observability.Metrics
	logger   *slog.Logger
	group    singleflight.Group
}

// New constructs a dispatcher. cache, sender and metrics may be nil.
func New(renderer receipts.Renderer, uploader Uploader, cache LinkCache, sender Sender, metrics *observability.Metrics, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		renderer: renderer,
		uploader: uploader,
		cache:    cache,
		sender:   sender,
		metrics:  metrics,
		logger:   logger,
	}
}

// Deliver must only be called after the ledger write the document describes has
// committed. Render and upload failures degrade to the plain-text message; the
// result always carries a chat link and the message text.
func (d *Dispatcher) Deliver(ctx context.Context, doc receipts.Deliverable, opts Options) Result {
	var res Result

	link, err := d.hostedLink(ctx, doc)
	if err != nil {
		reason := "unknown"
		switch {
		case shared.IsRender(err):
			reason = "render"
		case shared.IsUpload(err):
			reason = "upload"
		}
		d.metrics.ReceiptFallback(reason)
		d.logger.Warn("document attachment degraded",
			slog.String("document", doc.Key()),
			slog.String("reason", reason),
			slog.Any("error", err))
		res.Degraded = true
		res.Warnings = append(res.Warnings, shared.Warning{
			Code:    shared.WarningAttachmentFailed,
			Message: "the document could not be attached (" + err.Error() + "); a plain-text summary was prepared instead",
		})
	}

	res.Link = link
	res.Message = doc.Message(link)
	res.ChatLink = messaging.ChatLink(doc.Recipient(), res.Message)

	if opts.Push && link != "" && d.sender != nil && d.sender.Enabled() {
		id, err := d.sender.SendDocument(ctx, doc.Recipient(), link, doc.Filename(), res.Message)
		if err != nil {
			d.metrics.MessageDelivery("failed")
			d.logger.Warn("business api delivery failed", slog.String("document", doc.Key()), slog.Any("error", err))
			res.Warnings = append(res.Warnings, shared.Warning{
				Code:    shared.WarningDeliveryFailed,
				Message: "WhatsApp delivery failed: " + err.Error() + "; use the chat link instead",
			})
		} else {
			d.metrics.MessageDelivery("sent")
			res.ProviderMessageID = id
		}
	}
	return res
}

// Render produces the PDF without hosting it.
func (d *Dispatcher) Render(ctx context.Context, doc receipts.Deliverable) ([]byte, error) {
	if d.renderer == nil {
		return nil, shared.RenderError{Err: errors.New("no renderer configured")}
	}
	return d.renderer.Render(ctx, doc.Document())
}

// hostedLink returns a cached link or renders and uploads the document. Concurrent
// calls for the same key share one render.
func (d *Dispatcher) hostedLink(ctx context.Context, doc receipts.Deliverable) (string, error) {
	key := doc.Key()
	if d.cache != nil {
		link, err := d.cache.Get(ctx, key)
		if err != nil {
			d.logger.Warn("link cache read failed", slog.String("document", key), slog.Any("error", err))
		} else if link != "" {
			return link, nil
		}
	}

	v, err, _ := d.group.Do(key, func() (any, error) {
		pdf, err := d.Render(ctx, doc)
		if err != nil {
			return "", err
		}
		if d.uploader == nil {
			return "", shared.UploadError{Err: errors.New("no document storage configured")}
		}
		link, err := d.uploader.Upload(ctx, doc.Filename(), contentTypePDF, pdf)
		if err != nil {
			var upload shared.UploadError
			if !errors.As(err, &upload) {
				err = shared.UploadError{Err: err}
			}
			return "", err
		}
		if d.cache != nil {
			if err := d.cache.Set(ctx, key, link); err != nil {
				d.logger.Warn("link cache write failed", slog.String("document", key), slog.Any("error", err))
			}
		}
		return link, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
