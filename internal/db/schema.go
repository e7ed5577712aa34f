package db

import "fmt"

// schemaSQL returns the schema initialization SQL. The HNSW dimension is
// parameterized because it must match the embedding model in use.
func schemaSQL(embedDimension int) string {
	return fmt.Sprintf(`
    -- ==========================================================================
    -- SUMMARY TABLE (per-user conversation summaries)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS summary SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS user_id ON summary TYPE string;
    DEFINE FIELD IF NOT EXISTS conversation_id ON summary TYPE string;
    DEFINE FIELD IF NOT EXISTS content ON summary TYPE string;
    DEFINE FIELD IF NOT EXISTS embedding ON summary TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS created_at ON summary TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS summary_user ON summary FIELDS user_id;
    DEFINE INDEX IF NOT EXISTS summary_conversation ON summary FIELDS user_id, conversation_id;
    DEFINE INDEX IF NOT EXISTS summary_embedding ON summary FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;
`, embedDimension)
}
