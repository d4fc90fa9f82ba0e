package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanctified-studios/studio/internal/shared"
)

func TestSendDocument(t *testing.T) {
	var got messageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/PHONE/messages", r.URL.Path)
		assert.Equal(t, "Bearer tkn", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	client := NewCloudClient(CloudConfig{BaseURL: srv.URL, PhoneNumberID: "PHONE", Token: "tkn"})
	id, err := client.SendDocument(context.Background(), "+919827411116", "https://files/r.pdf", "r.pdf", "Your receipt")
	require.NoError(t, err)
	require.Equal(t, "wamid.1", id)
	require.Equal(t, "919827411116", got.To)
	require.Equal(t, "document", got.Type)
	require.Equal(t, "https://files/r.pdf", got.Document.Link)
}

func TestSendDocumentProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Recipient not on allow list","code":131030}}`))
	}))
	defer srv.Close()

	client := NewCloudClient(CloudConfig{BaseURL: srv.URL, PhoneNumberID: "PHONE", Token: "tkn"})
	_, err := client.SendDocument(context.Background(), "919827411116", "https://files/r.pdf", "r.pdf", "")
	var derr shared.DeliveryError
	require.True(t, errors.As(err, &derr))
	require.Equal(t, http.StatusBadRequest, derr.Status)
	require.Equal(t, "Recipient not on allow list", derr.Payload)
}

func TestDisabledClient(t *testing.T) {
	client := NewCloudClient(CloudConfig{})
	require.False(t, client.Enabled())
	_, err := client.SendText(context.Background(), "919827411116", "hi")
	require.Error(t, err)
}
