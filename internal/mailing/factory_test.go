package mailing

import (
	"context"
	"testing"
	"time"

	"github.com/ignite/newsletter/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSender_HTTP(t *testing.T) {
	s, err := NewSender(context.Background(), config.EmailClientConfig{
		Provider:            ProviderHTTP,
		BaseURL:             "http://localhost:4010/",
		SenderEmail:         "newsletter@example.com",
		AuthorizationToken:  "token",
		TimeoutMilliseconds: 250,
	})
	require.NoError(t, err)

	client, ok := s.(*HTTPClient)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:4010", client.baseURL)
	assert.Equal(t, 250*time.Millisecond, client.timeout)
	assert.Equal(t, "newsletter@example.com", client.sender.String())
}

func TestNewSender_SES(t *testing.T) {
	s, err := NewSender(context.Background(), config.EmailClientConfig{
		Provider:     ProviderSES,
		SenderEmail:  "newsletter@example.com",
		SESRegion:    "eu-west-1",
		SESAccessKey: "AKIDEXAMPLE",
		SESSecretKey: "secret",
	})
	require.NoError(t, err)

	ses, ok := s.(*SESSender)
	require.True(t, ok)
	assert.Equal(t, DefaultTimeout, ses.timeout)
}

func TestNewSender_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.EmailClientConfig
	}{
		{"bad sender", config.EmailClientConfig{Provider: ProviderHTTP, BaseURL: "http://x", SenderEmail: "nope"}},
		{"missing base url", config.EmailClientConfig{Provider: ProviderHTTP, SenderEmail: "a@example.com"}},
		{"unknown provider", config.EmailClientConfig{Provider: "carrier-pigeon", SenderEmail: "a@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSender(context.Background(), tt.cfg)
			assert.Error(t, err)
		})
	}
}
