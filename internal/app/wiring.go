package app

import (
	"fmt"

	"github.com/sanctified-studios/studio/internal/messaging"
	"github.com/sanctified-studios/studio/internal/receipts"
	"github.com/sanctified-studios/studio/internal/storage"
	"github.com/sanctified-studios/studio/report"
)

// NewRenderer picks the receipt PDF backend named by RECEIPT_RENDERER.
func NewRenderer(cfg *Config) (receipts.Renderer, error) {
	switch cfg.ReceiptRenderer {
	case RendererFPDF:
		return receipts.NewFPDFRenderer(), nil
	case RendererGotenberg, "":
		return receipts.NewHTMLRenderer(report.NewClient(cfg.GotenbergURL))
	default:
		return nil, fmt.Errorf("unknown receipt renderer %q", cfg.ReceiptRenderer)
	}
}

// Issuer is the studio identity printed on documents.
func (c *Config) Issuer() receipts.StudioInfo {
	info := receipts.DefaultStudio
	if c.StudioName != "" {
		info.Name = c.StudioName
	}
	if c.StudioContact != "" {
		info.Contact = c.StudioContact
	}
	return info
}

// StorageConfig maps the storage keys.
func (c *Config) StorageConfig() storage.Config {
	return storage.Config{BaseURL: c.StorageURL, Bucket: c.StorageBucket, APIKey: c.StorageKey}
}

// MessagingConfig maps the business messaging keys.
func (c *Config) MessagingConfig() messaging.CloudConfig {
	return messaging.CloudConfig{BaseURL: c.WhatsAppAPIURL, PhoneNumberID: c.WhatsAppPhoneID, Token: c.WhatsAppToken}
}
