package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailer_Send(t *testing.T) {
	var got resendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer key-123", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id":"email-abc"}`))
	}))
	defer srv.Close()

	m := NewMailer("key-123", "owner@example.com")
	m.baseURL = srv.URL

	result, err := m.Send(context.Background(), "Ada", "ada@example.com", "hello\nthere")
	require.NoError(t, err)
	assert.Equal(t, "email-abc", result.ID)

	assert.Equal(t, []string{"owner@example.com"}, got.To)
	assert.Equal(t, "ada@example.com", got.ReplyTo)
	assert.Equal(t, "Portfolio Inquiry from Ada", got.Subject)
	assert.Contains(t, got.HTML, "hello<br>there")
	assert.Contains(t, got.From, "Portfolio Contact")
}

func TestMailer_SendUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid to address"}`))
	}))
	defer srv.Close()

	m := NewMailer("key-123", "owner@example.com")
	m.baseURL = srv.URL

	_, err := m.Send(context.Background(), "Ada", "ada@example.com", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "invalid to address")
}
