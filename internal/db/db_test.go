// Package db provides integration tests for SurrealDB operations.
package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDB *Client
var testContainer testcontainers.Container

const testDimension = 8

// TestMain sets up and tears down the SurrealDB container for all tests.
func TestMain(m *testing.M) {
	// Disable ryuk (cleanup container) as it can cause issues in some environments
	os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")

	ctx := context.Background()

	var err error
	testContainer, err = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "surrealdb/surrealdb:v3.0.0-beta.1",
			ExposedPorts: []string{"8000/tcp"},
			Cmd:          []string{"start", "--log", "info", "--user", "root", "--pass", "root"},
			WaitingFor:   wait.ForLog("Started web server").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		log.Fatalf("Failed to start SurrealDB container: %v", err)
	}

	host, err := testContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	// Workaround: testcontainers may return "null" as host in some environments
	if host == "" || host == "null" {
		host = "localhost"
	}
	mappedPort, err := testContainer.MappedPort(ctx, "8000")
	if err != nil {
		log.Fatalf("Failed to get mapped port: %v", err)
	}

	testDB, err = NewClient(ctx, Config{
		URL:       fmt.Sprintf("ws://%s:%s/rpc", host, mappedPort.Port()),
		Namespace: "test",
		Database:  "test",
		Username:  "root",
		Password:  "root",
		AuthLevel: "root",
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := testDB.InitSchema(ctx, testDimension); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	code := m.Run()

	_ = testDB.Close(ctx)
	_ = testContainer.Terminate(ctx)

	os.Exit(code)
}

// testEmbedding returns a deterministic vector; the seed nudges it so
// different summaries land at different distances from each other.
func testEmbedding(seed int) []float32 {
	embedding := make([]float32, testDimension)
	for i := range embedding {
		embedding[i] = float32(i+seed) / float32(testDimension)
	}
	return embedding
}

func wipe(t *testing.T) {
	t.Helper()
	if err := testDB.WipeData(context.Background()); err != nil {
		t.Fatalf("WipeData failed: %v", err)
	}
}

func TestCreateAndSearchSummaries(t *testing.T) {
	ctx := context.Background()
	wipe(t)

	if err := testDB.QueryCreateSummary(ctx, "alice", "conv-1", "Discussed moving to Vienna", testEmbedding(0)); err != nil {
		t.Fatalf("QueryCreateSummary failed: %v", err)
	}
	if err := testDB.QueryCreateSummary(ctx, "alice", "conv-2", "Asked about apartment prices", testEmbedding(1)); err != nil {
		t.Fatalf("QueryCreateSummary failed: %v", err)
	}

	results, err := testDB.QuerySearchSummaries(ctx, testEmbedding(0), "alice", 4)
	if err != nil {
		t.Fatalf("QuerySearchSummaries failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	for _, r := range results {
		if r.UserID != "alice" {
			t.Errorf("Expected user_id 'alice', got %q", r.UserID)
		}
	}
	// Nearest first
	if results[0].ConversationID != "conv-1" {
		t.Errorf("Expected nearest result conv-1 first, got %q", results[0].ConversationID)
	}
}

func TestSearchSummariesUserIsolation(t *testing.T) {
	ctx := context.Background()
	wipe(t)

	if err := testDB.QueryCreateSummary(ctx, "alice", "conv-a", "Alice's private notes", testEmbedding(0)); err != nil {
		t.Fatalf("QueryCreateSummary failed: %v", err)
	}
	if err := testDB.QueryCreateSummary(ctx, "bob", "conv-b", "Bob's private notes", testEmbedding(0)); err != nil {
		t.Fatalf("QueryCreateSummary failed: %v", err)
	}

	// Identical embeddings, different users: each search must only see
	// its own user's rows.
	for _, user := range []string{"alice", "bob"} {
		results, err := testDB.QuerySearchSummaries(ctx, testEmbedding(0), user, 4)
		if err != nil {
			t.Fatalf("QuerySearchSummaries for %s failed: %v", user, err)
		}
		if len(results) != 1 {
			t.Fatalf("Expected 1 result for %s, got %d", user, len(results))
		}
		if results[0].UserID != user {
			t.Errorf("Search for %s returned row owned by %q", user, results[0].UserID)
		}
	}
}

func TestSearchSummariesLimit(t *testing.T) {
	ctx := context.Background()
	wipe(t)

	for i := 0; i < 6; i++ {
		convID := fmt.Sprintf("conv-%d", i)
		if err := testDB.QueryCreateSummary(ctx, "alice", convID, "Some conversation", testEmbedding(i)); err != nil {
			t.Fatalf("QueryCreateSummary failed: %v", err)
		}
	}

	results, err := testDB.QuerySearchSummaries(ctx, testEmbedding(0), "alice", 4)
	if err != nil {
		t.Fatalf("QuerySearchSummaries failed: %v", err)
	}
	if len(results) > 4 {
		t.Errorf("Expected at most 4 results, got %d", len(results))
	}
}

func TestSearchSummariesNoRows(t *testing.T) {
	ctx := context.Background()
	wipe(t)

	results, err := testDB.QuerySearchSummaries(ctx, testEmbedding(0), "nobody", 4)
	if err != nil {
		t.Fatalf("QuerySearchSummaries failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("Expected 0 results for unknown user, got %d", len(results))
	}
}

func TestCountSummaries(t *testing.T) {
	ctx := context.Background()
	wipe(t)

	if err := testDB.QueryCreateSummary(ctx, "alice", "conv-1", "one", testEmbedding(0)); err != nil {
		t.Fatalf("QueryCreateSummary failed: %v", err)
	}
	if err := testDB.QueryCreateSummary(ctx, "alice", "conv-2", "two", testEmbedding(1)); err != nil {
		t.Fatalf("QueryCreateSummary failed: %v", err)
	}
	if err := testDB.QueryCreateSummary(ctx, "bob", "conv-3", "three", testEmbedding(2)); err != nil {
		t.Fatalf("QueryCreateSummary failed: %v", err)
	}

	count, err := testDB.QueryCountSummaries(ctx, "alice")
	if err != nil {
		t.Fatalf("QueryCountSummaries failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 summaries for alice, got %d", count)
	}

	count, err = testDB.QueryCountSummaries(ctx, "nobody")
	if err != nil {
		t.Fatalf("QueryCountSummaries failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 summaries for unknown user, got %d", count)
	}
}
