package db

import "database/sql"

// MigrateUp creates the schema if it does not exist: the articles table,
// the user_responses feedback table, and the trigger that keeps
// updated_at current on every row modification.
func MigrateUp(database *sql.DB) error {
	if _, err := database.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id           BIGSERIAL PRIMARY KEY,
    source_uri   TEXT NOT NULL UNIQUE,
    url          TEXT,
    title        TEXT NOT NULL,
    body         TEXT,
    category     TEXT,
    sub_category TEXT,
    sentiment    DOUBLE PRECISION DEFAULT 0,
    fingerprint  TEXT NOT NULL,
    visibility   TEXT NOT NULL DEFAULT 'active'
                 CHECK (visibility IN ('active', 'excluded')),
    published_at TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := database.Exec(`
CREATE TABLE IF NOT EXISTS user_responses (
    id         BIGSERIAL PRIMARY KEY,
    user_id    BIGINT NOT NULL,
    article_id BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
    response   TEXT NOT NULL CHECK (response IN ('like', 'dislike')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (user_id, article_id)
)`); err != nil {
		return err
	}

	indexes := []string{
		// dedup scan groups on fingerprint
		`CREATE INDEX IF NOT EXISTS idx_articles_fingerprint ON articles(fingerprint)`,
		// bot listings read active articles newest first
		`CREATE INDEX IF NOT EXISTS idx_articles_visibility_created ON articles(visibility, created_at DESC)`,
		// unseen-article anti-join probes by user
		`CREATE INDEX IF NOT EXISTS idx_user_responses_user ON user_responses(user_id)`,
	}
	for _, idx := range indexes {
		if _, err := database.Exec(idx); err != nil {
			return err
		}
	}

	// updated_at is maintained by a trigger so that every write path,
	// including raw upserts, keeps it current.
	if _, err := database.Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN
    NEW.updated_at = now();
    RETURN NEW;
END;
$$ LANGUAGE plpgsql`); err != nil {
		return err
	}

	triggers := []string{
		`DROP TRIGGER IF EXISTS articles_set_updated_at ON articles`,
		`CREATE TRIGGER articles_set_updated_at
    BEFORE UPDATE ON articles
    FOR EACH ROW EXECUTE FUNCTION set_updated_at()`,
		`DROP TRIGGER IF EXISTS user_responses_set_updated_at ON user_responses`,
		`CREATE TRIGGER user_responses_set_updated_at
    BEFORE UPDATE ON user_responses
    FOR EACH ROW EXECUTE FUNCTION set_updated_at()`,
	}
	for _, stmt := range triggers {
		if _, err := database.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
