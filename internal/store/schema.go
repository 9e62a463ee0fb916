package store

// SchemaVersion is the current schema version. Bump when adding a
// migration below.
const SchemaVersion = 1

// schemaV1 creates the match_history and candidate_properties tables.
// candidate_properties mirrors the subset of the properties table the
// matcher needs; the full properties record lives in an upstream
// service's own schema and is out of scope here.
const schemaV1 = `
CREATE TABLE IF NOT EXISTS match_history (
    match_id             BIGSERIAL PRIMARY KEY,
    matched_at           TIMESTAMPTZ NOT NULL,
    user_a               TEXT NOT NULL,
    user_b               TEXT NOT NULL,
    property_a           BIGINT NOT NULL,
    property_b           BIGINT NOT NULL,
    survey_a             BIGINT NOT NULL,
    survey_b             BIGINT NOT NULL,
    compatibility_score  DOUBLE PRECISION NOT NULL,
    a_approval           SMALLINT NOT NULL DEFAULT 0,
    b_approval           SMALLINT NOT NULL DEFAULT 0,
    final_match_status   SMALLINT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_match_history_matched_at ON match_history(matched_at DESC);
CREATE INDEX IF NOT EXISTS idx_match_history_user_a ON match_history(user_a);
CREATE INDEX IF NOT EXISTS idx_match_history_user_b ON match_history(user_b);

CREATE TABLE IF NOT EXISTS candidate_properties (
    property_id  BIGINT PRIMARY KEY,
    user_id      TEXT NOT NULL,
    match_status SMALLINT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_candidate_properties_status ON candidate_properties(match_status);
`

// migrations lists each schema version's statements in order, mirroring
// the teacher's versioned-schema-string convention.
var migrations = []string{schemaV1}
