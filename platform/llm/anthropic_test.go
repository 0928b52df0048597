package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseDelta(text string) string {
	b, _ := json.Marshal(map[string]any{
		"type":  "content_block_delta",
		"index": 0,
		"delta": map[string]string{"type": "text_delta", "text": text},
	})
	return fmt.Sprintf("event: content_block_delta\ndata: %s\n\n", b)
}

const messageStop = "event: message_stop\ndata: {\"type\":\"message_stop\"}\n\n"

func server(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "test-model", MaxTokens: 100})
}

func TestStreamTextRelaysDeltasInOrder(t *testing.T) {
	client := server(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))

		var req messagesRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, "rewrite this", req.Messages[0].Content)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: message_start\ndata: {\"type\":\"message_start\"}\n\n")
		fmt.Fprint(w, ": keep-alive\n\n")
		for _, part := range []string{"# Policy", "\n\n", "Wash hands."} {
			fmt.Fprint(w, sseDelta(part))
		}
		fmt.Fprint(w, messageStop)
	})

	var got []string
	text, err := client.StreamText(context.Background(), "rewrite this", func(s string) error {
		got = append(got, s)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"# Policy", "\n\n", "Wash hands."}, got)
	assert.Equal(t, "# Policy\n\nWash hands.", text)
}

func TestStreamTextWithoutMessageStop(t *testing.T) {
	client := server(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sseDelta("partial"))
	})
	_, err := client.StreamText(context.Background(), "x", nil)
	assert.ErrorIs(t, err, ErrIncompleteStream)
}

func TestStreamTextErrorEvent(t *testing.T) {
	client := server(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sseDelta("a"))
		fmt.Fprint(w, "event: error\ndata: {\"type\":\"error\",\"error\":{\"type\":\"overloaded_error\",\"message\":\"Overloaded\"}}\n\n")
	})
	_, err := client.StreamText(context.Background(), "x", nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "overloaded_error", apiErr.Type)
}

func TestStreamTextHTTPError(t *testing.T) {
	client := server(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)
	})
	_, err := client.StreamText(context.Background(), "x", nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid x-api-key", apiErr.Message)
}

func TestStreamTextNotConfigured(t *testing.T) {
	_, err := New(Config{}).StreamText(context.Background(), "x", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestReadSSEMultilineAndTrailingEvent(t *testing.T) {
	in := "event: a\ndata: one\ndata: two\n\nevent: b\ndata: last"
	var events []string
	err := readSSE(strings.NewReader(in), func(ev, data string) error {
		events = append(events, ev+"="+data)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a=one\ntwo", "b=last"}, events)
}
