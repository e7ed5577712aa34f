package retriever

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/raphaelgruber/recall-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndex serves per-user summaries and records the filters it was
// queried with.
type fakeIndex struct {
	byUser   map[string][]models.Summary
	err      error
	userIDs  []string
	embedded [][]float32
}

func (f *fakeIndex) QuerySearchSummaries(_ context.Context, embedding []float32, userID string, limit int) ([]models.Summary, error) {
	f.userIDs = append(f.userIDs, userID)
	f.embedded = append(f.embedded, embedding)
	if f.err != nil {
		return nil, f.err
	}
	hits := f.byUser[userID]
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 0.5}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRetrieveScopedToUser(t *testing.T) {
	index := &fakeIndex{byUser: map[string][]models.Summary{
		"alice": {
			{UserID: "alice", ConversationID: "c1", Content: "booked flights to Lisbon"},
			{UserID: "alice", ConversationID: "c2", Content: "asked about visa rules"},
		},
		"bob": {
			{UserID: "bob", ConversationID: "c9", Content: "debugged a kernel panic"},
		},
	}}
	r := New(index, &fakeEmbedder{}, 4, testLogger())

	docs, err := r.Retrieve(context.Background(), "travel plans", "alice")

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "booked flights to Lisbon", docs[0].Content)
	assert.Equal(t, "c1", docs[0].Metadata["conversation_id"])
	assert.Equal(t, "alice", docs[0].Metadata["user_id"])
	assert.Equal(t, []string{"alice"}, index.userIDs)
}

func TestRetrieveNoCrossUserContamination(t *testing.T) {
	// Seed an index with documents for many users, then check random
	// identity pairs: a query for one user must never surface another
	// user's documents.
	rng := rand.New(rand.NewSource(1))
	index := &fakeIndex{byUser: map[string][]models.Summary{}}
	users := make([]string, 20)
	for i := range users {
		user := fmt.Sprintf("user-%d", i)
		users[i] = user
		for j := 0; j < 5; j++ {
			index.byUser[user] = append(index.byUser[user], models.Summary{
				UserID:         user,
				ConversationID: fmt.Sprintf("conv-%d-%d", i, j),
				Content:        fmt.Sprintf("note %d for %s", j, user),
			})
		}
	}
	r := New(index, &fakeEmbedder{}, 4, testLogger())

	for i := 0; i < 100; i++ {
		querying := users[rng.Intn(len(users))]
		docs, err := r.Retrieve(context.Background(), "anything", querying)
		require.NoError(t, err)
		require.NotEmpty(t, docs)
		for _, doc := range docs {
			assert.Equal(t, querying, doc.Metadata["user_id"])
		}
	}
}

func TestRetrieveEmptyUserIDFailsClosed(t *testing.T) {
	index := &fakeIndex{byUser: map[string][]models.Summary{
		"alice": {{UserID: "alice", ConversationID: "c1", Content: "secret"}},
	}}
	embedder := &fakeEmbedder{}
	r := New(index, embedder, 4, testLogger())

	docs, err := r.Retrieve(context.Background(), "anything", "")

	require.NoError(t, err)
	assert.Empty(t, docs)
	// Fails closed before touching the embedder or the index.
	assert.Zero(t, embedder.calls)
	assert.Empty(t, index.userIDs)
}

func TestRetrieveDropsCrossUserHits(t *testing.T) {
	index := &fakeIndex{byUser: map[string][]models.Summary{
		"alice": {
			{UserID: "alice", ConversationID: "c1", Content: "mine"},
			{UserID: "mallory", ConversationID: "c2", Content: "not mine"},
		},
	}}
	r := New(index, &fakeEmbedder{}, 4, testLogger())

	docs, err := r.Retrieve(context.Background(), "anything", "alice")

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "mine", docs[0].Content)
}

func TestRetrieveEmbedError(t *testing.T) {
	r := New(&fakeIndex{}, &fakeEmbedder{err: errors.New("model offline")}, 4, testLogger())

	_, err := r.Retrieve(context.Background(), "anything", "alice")

	require.ErrorContains(t, err, "embed query")
}

func TestRetrieveSearchError(t *testing.T) {
	index := &fakeIndex{err: errors.New("connection reset")}
	r := New(index, &fakeEmbedder{}, 4, testLogger())

	_, err := r.Retrieve(context.Background(), "anything", "alice")

	require.ErrorContains(t, err, "search index")
}

func TestBuildContext(t *testing.T) {
	docs := []models.Document{
		{Content: "first summary", Metadata: map[string]string{"conversation_id": "c1"}},
		{Content: "second summary", Metadata: map[string]string{"conversation_id": "c2"}},
	}

	got := BuildContext(docs)

	want := "Content: first summary\nMetadata: {\"conversation_id\":\"c1\"}\n\n" +
		"Content: second summary\nMetadata: {\"conversation_id\":\"c2\"}"
	assert.Equal(t, want, got)
}

func TestBuildContextEmpty(t *testing.T) {
	assert.Equal(t, "", BuildContext(nil))
}
