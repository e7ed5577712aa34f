package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/raphaelgruber/recall-go/internal/chatbot"
	"github.com/raphaelgruber/recall-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	response string
	err      error
}

func (s *stubGenerator) Generate(context.Context, string) (string, error) {
	return s.response, s.err
}

func (s *stubGenerator) GenerateMessages(context.Context, []llms.MessageContent) (string, error) {
	return s.response, s.err
}

type stubRetriever struct {
	docs []models.Document
	err  error
}

func (s *stubRetriever) Retrieve(context.Context, string, string) ([]models.Document, error) {
	return s.docs, s.err
}

func newTestServer(gen chatbot.Generator, ret chatbot.DocumentRetriever) *Server {
	logger := slog.New(slog.DiscardHandler)
	manager := chatbot.NewManager(chatbot.Deps{
		Generator: gen,
		Retriever: ret,
		Logger:    logger,
	})
	return New("0", manager, logger)
}

func postQuery(t *testing.T, handler http.Handler, body QueryRequest) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestQueryEndpoint(t *testing.T) {
	gen := &stubGenerator{response: "You discussed Lisbon flights.\n" +
		chatbot.Marker + ` {"results":[{"summary":"booked flights","conversation_id":"c1"}]}`}
	ret := &stubRetriever{docs: []models.Document{
		{Content: "booked flights", Metadata: map[string]string{"conversation_id": "c1", "user_id": "alice"}},
	}}
	srv := newTestServer(gen, ret)

	rec := postQuery(t, srv.Handler(), QueryRequest{UserID: "alice", Input: "what about my trip?"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "You discussed Lisbon flights.", resp.NaturalResponse)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "booked flights", resp.Results[0].Summary)
	assert.Equal(t, "c1", resp.Results[0].ConversationID)
}

func TestQueryEndpointNoMatches(t *testing.T) {
	srv := newTestServer(&stubGenerator{response: "unused"}, &stubRetriever{})

	rec := postQuery(t, srv.Handler(), QueryRequest{UserID: "alice", Input: "anything"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, chatbot.NoMatchResponse, resp.NaturalResponse)
	assert.Empty(t, resp.Results)
}

func TestQueryEndpointMissingUserID(t *testing.T) {
	srv := newTestServer(&stubGenerator{}, &stubRetriever{})

	rec := postQuery(t, srv.Handler(), QueryRequest{Input: "anything"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryEndpointEmptyInput(t *testing.T) {
	srv := newTestServer(&stubGenerator{}, &stubRetriever{})

	rec := postQuery(t, srv.Handler(), QueryRequest{UserID: "alice"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryEndpointGenerationFailureIsGeneric(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model exploded: stack trace here")}
	ret := &stubRetriever{docs: []models.Document{{Content: "doc"}}}
	srv := newTestServer(gen, ret)

	rec := postQuery(t, srv.Handler(), QueryRequest{UserID: "alice", Input: "anything"})

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	// Internal detail never reaches the caller.
	assert.Equal(t, genericFailure, resp.Error)
	assert.NotContains(t, rec.Body.String(), "exploded")
}

func TestQueryEndpointBadBody(t *testing.T) {
	srv := newTestServer(&stubGenerator{}, &stubRetriever{})

	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsEndpoint(t *testing.T) {
	gen := &stubGenerator{response: "hi " + chatbot.Marker + ` {"results":[]}`}
	srv := newTestServer(gen, &stubRetriever{docs: []models.Document{{Content: "doc"}}})

	postQuery(t, srv.Handler(), QueryRequest{UserID: "alice", Input: "anything"})

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Contains(t, snapshot, "uptime_seconds")
	assert.Contains(t, snapshot, "query")
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&stubGenerator{}, &stubRetriever{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
