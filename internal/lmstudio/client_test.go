package lmstudio

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, qpm int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{
		BaseURL:          srv.URL + "/v1",
		Model:            "test-model",
		Timeout:          5 * time.Second,
		StatusTimeout:    time.Second,
		QueriesPerMinute: qpm,
	})
}

func TestStatus_Online(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"qwen"},{"id":"llama"}]}`))
	}, 0)

	st := c.Status(context.Background())
	assert.True(t, st.Online)
	assert.Equal(t, []string{"qwen", "llama"}, st.Models)
	require.NotNil(t, st.ActiveModel)
	assert.Equal(t, "qwen", *st.ActiveModel)
}

func TestStatus_NoModelsLoaded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}, 0)

	st := c.Status(context.Background())
	assert.True(t, st.Online)
	assert.Empty(t, st.Models)
	assert.Nil(t, st.ActiveModel)
}

func TestStatus_Offline(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, 0)

	st := c.Status(context.Background())
	assert.False(t, st.Online)
	assert.NotNil(t, st.Models)
	assert.Nil(t, st.ActiveModel)
}

func TestStatus_Unreachable(t *testing.T) {
	c := NewClient(Options{BaseURL: "http://127.0.0.1:1/v1", Timeout: time.Second, StatusTimeout: 500 * time.Millisecond})

	st := c.Status(context.Background())
	assert.False(t, st.Online)
}

func TestQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[0].Content, "Project context: api service")
		assert.Equal(t, "explain main.go", req.Messages[1].Content)
		assert.Equal(t, 500, req.MaxTokens)
		assert.InDelta(t, 0.7, req.Temperature, 0.0001)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"It starts the server."}}]}`))
	}, 0)

	reply, err := c.Query(context.Background(), "explain main.go", "api service")
	require.NoError(t, err)
	assert.Equal(t, "It starts the server.", reply)
}

func TestQuery_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}, 0)

	_, err := c.Query(context.Background(), "hi", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestQuery_NoChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}, 0)

	_, err := c.Query(context.Background(), "hi", "")
	assert.Error(t, err)
}

func TestQuery_RateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}, 1)

	_, err := c.Query(context.Background(), "one", "")
	require.NoError(t, err)

	_, err = c.Query(context.Background(), "two", "")
	assert.ErrorIs(t, err, ErrRateLimited)
}
