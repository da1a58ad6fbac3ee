package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tokokecil/pos-backend/internal/pos"
)

func TestAnswer(t *testing.T) {
	var gotPath string
	var gotReq generateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Coffee is your best seller."}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "gemini-2.5-flash", zaptest.NewLogger(t))
	defer c.Close()

	data := BusinessSnapshot{
		Products: []pos.Product{{ID: "prod-a", Name: "Coffee", PriceCents: 250, Stock: 10}},
	}
	answer, err := c.Answer(context.Background(), "What sells best?", nil, data)

	require.NoError(t, err)
	assert.Equal(t, "Coffee is your best seller.", answer)
	assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", gotPath)

	require.NotNil(t, gotReq.SystemInstruction)
	assert.Contains(t, gotReq.SystemInstruction.Parts[0].Text, "Coffee")
	require.Len(t, gotReq.Contents, 1)
	assert.Equal(t, "What sells best?", gotReq.Contents[0].Parts[0].Text)
}

func TestAnswer_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "gemini-2.5-flash", zaptest.NewLogger(t))
	defer c.Close()

	_, err := c.Answer(context.Background(), "hi", nil, BusinessSnapshot{})
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestAnswer_EmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "gemini-2.5-flash", zaptest.NewLogger(t))
	defer c.Close()

	_, err := c.Answer(context.Background(), "hi", nil, BusinessSnapshot{})
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestBuildSystemPrompt_History(t *testing.T) {
	p := BuildSystemPrompt(BusinessSnapshot{}, []Turn{
		{Sender: "user", Text: "How were sales yesterday?"},
		{Sender: "assistant", Text: "Slow morning, strong afternoon."},
	})
	assert.True(t, strings.Contains(p, "user: How were sales yesterday?"))
	assert.True(t, strings.Contains(p, "assistant: Slow morning, strong afternoon."))
}
