package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func turnstileServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	server := httptest.NewServer(handler)
	oldURL := turnstileVerifyURL
	turnstileVerifyURL = server.URL
	t.Cleanup(func() {
		turnstileVerifyURL = oldURL
		server.Close()
	})
}

func TestVerifyTurnstileToken(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing inputs", func(t *testing.T) {
		success, err := VerifyTurnstileToken(ctx, "", "secret", "127.0.0.1")
		assert.False(t, success)
		assert.ErrorContains(t, err, "missing token")
	})

	t.Run("Verification success", func(t *testing.T) {
		turnstileServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "valid-token", r.PostForm.Get("response"))
			assert.Equal(t, "1.1.1.1", r.PostForm.Get("remoteip"))
			json.NewEncoder(w).Encode(TurnstileResponse{Success: true})
		})

		success, err := VerifyTurnstileToken(ctx, "valid-token", "secret", "1.1.1.1")
		assert.NoError(t, err)
		assert.True(t, success)
	})

	t.Run("Verification failure with error codes", func(t *testing.T) {
		turnstileServer(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(TurnstileResponse{ErrorCodes: []string{"invalid-input-response"}})
		})

		success, err := VerifyTurnstileToken(ctx, "invalid-token", "secret", "1.1.1.1")
		assert.False(t, success)
		assert.ErrorContains(t, err, "invalid-input-response")
	})

	t.Run("Malformed JSON response", func(t *testing.T) {
		turnstileServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{ malformed json }"))
		})

		success, err := VerifyTurnstileToken(ctx, "token", "secret", "1.1.1.1")
		assert.False(t, success)
		assert.ErrorContains(t, err, "failed to decode")
	})
}
