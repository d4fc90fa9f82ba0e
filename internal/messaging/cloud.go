package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sanctified-studios/studio/internal/shared"
)

const providerName = "whatsapp"

// CloudConfig configures the WhatsApp Cloud API client.
type CloudConfig struct {
	BaseURL       string
	PhoneNumberID string
	Token         string
	HTTPClient    *http.Client
}

// CloudClient sends documents through the WhatsApp Business Cloud API.
type CloudClient struct {
	baseURL       string
	phoneNumberID string
	token         string
	httpClient    *http.Client
}

// NewCloudClient constructs a client. A client without token or phone number id is
// disabled and every send reports so.
func NewCloudClient(cfg CloudConfig) *CloudClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &CloudClient{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		phoneNumberID: cfg.PhoneNumberID,
		token:         cfg.Token,
		httpClient:    httpClient,
	}
}

// Enabled reports whether credentials are configured.
func (c *CloudClient) Enabled() bool {
	return c != nil && c.token != "" && c.phoneNumberID != "" && c.baseURL != ""
}

type documentBody struct {
	Link     string `json:"link"`
	Filename string `json:"filename,omitempty"`
	Caption  string `json:"caption,omitempty"`
}

type textBody struct {
	Body string `json:"body"`
}

type messageRequest struct {
	MessagingProduct string        `json:"messaging_product"`
	To               string        `json:"to"`
	Type             string        `json:"type"`
	Document         *documentBody `json:"document,omitempty"`
	Text             *textBody     `json:"text,omitempty"`
}

type messageResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// SendDocument pushes a hosted document with a caption and returns the provider
// message id.
func (c *CloudClient) SendDocument(ctx context.Context, phone, link, filename, caption string) (string, error) {
	return c.send(ctx, messageRequest{
		MessagingProduct: "whatsapp",
		To:               Digits(phone),
		Type:             "document",
		Document:         &documentBody{Link: link, Filename: filename, Caption: caption},
	})
}

// SendText pushes a plain text message.
func (c *CloudClient) SendText(ctx context.Context, phone, body string) (string, error) {
	return c.send(ctx, messageRequest{
		MessagingProduct: "whatsapp",
		To:               Digits(phone),
		Type:             "text",
		Text:             &textBody{Body: body},
	})
}

func (c *CloudClient) send(ctx context.Context, msg messageRequest) (string, error) {
	if !c.Enabled() {
		return "", shared.DeliveryError{Provider: providerName, Err: fmt.Errorf("cloud api not configured")}
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", shared.DeliveryError{Provider: providerName, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", shared.DeliveryError{Provider: providerName, Status: resp.StatusCode, Err: err}
	}

	var decoded messageResponse
	_ = json.Unmarshal(raw, &decoded)
	if resp.StatusCode >= 400 || decoded.Error != nil {
		detail := strings.TrimSpace(string(raw))
		if decoded.Error != nil && decoded.Error.Message != "" {
			detail = decoded.Error.Message
		}
		return "", shared.DeliveryError{Provider: providerName, Status: resp.StatusCode, Payload: detail}
	}
	if len(decoded.Messages) == 0 || decoded.Messages[0].ID == "" {
		return "", shared.DeliveryError{Provider: providerName, Status: resp.StatusCode, Payload: "response carried no message id"}
	}
	return decoded.Messages[0].ID, nil
}
