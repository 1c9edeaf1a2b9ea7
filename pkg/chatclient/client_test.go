package chatclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-go-golems/bookworm/pkg/conversation"
)

func TestSendChatPlainPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, DefaultPath, r.URL.Path)

		var req struct {
			Message string `json:"message"`
			History string `json:"history"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "what do you have on whales", req.Message)

		var history []conversation.Turn
		require.NoError(t, json.Unmarshal([]byte(req.History), &history))
		require.Len(t, history, 1)
		assert.Equal(t, conversation.RoleUser, history[0].Role)

		_, _ = w.Write([]byte(`{"reply":"two matches","ids":["b1","b2"],"needsVectorSearch":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.SendChat(context.Background(), "what do you have on whales", []conversation.Turn{
		{Role: conversation.RoleUser, Content: "what do you have on whales"},
	})
	require.NoError(t, err)
	assert.Equal(t, "two matches", resp.Reply)
	assert.Equal(t, []string{"b1", "b2"}, resp.IDs)
	assert.True(t, resp.NeedsVectorSearch)
}

func TestSendChatValueEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"value":{"reply":"from the envelope","ids":["b9"],"needsVectorSearch":true}}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL).SendChat(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "from the envelope", resp.Reply)
	assert.Equal(t, []string{"b9"}, resp.IDs)
}

func TestSendChatDerivesIDsFromLegacyBooks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"reply":"ok","books":[{"ID":"b1","title":"Moby Dick"},{"ID":""},{"ID":"b3"}],"needsVectorSearch":true}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL).SendChat(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b3"}, resp.IDs)
}

func TestSendChatDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"reply":"just an answer"}`))
	}))
	defer srv.Close()

	resp, err := New(srv.URL).SendChat(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.False(t, resp.NeedsVectorSearch)
	require.NotNil(t, resp.IDs)
	assert.Empty(t, resp.IDs)
}

func TestSendChatNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).SendChat(context.Background(), "hi", nil)
	require.Error(t, err)
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusBadGateway, te.StatusCode)
}

func TestSendChatMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"reply":`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).SendChat(context.Background(), "hi", nil)
	var te *TransportError
	require.True(t, errors.As(err, &te))
}

func TestSendChatNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := New(srv.URL).SendChat(context.Background(), "hi", nil)
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.StatusCode)
}
