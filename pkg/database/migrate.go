package database

import (
	"database/sql"
	"fmt"
)

// schema is applied as a whole on startup; every statement is
// idempotent so re-running Migrate is safe.
const schema = `
CREATE TABLE IF NOT EXISTS navigations (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    title           TEXT NOT NULL,
    slug            TEXT NOT NULL UNIQUE,
    last_scraped_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS categories (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    title           TEXT NOT NULL,
    slug            TEXT NOT NULL UNIQUE,
    product_count   INTEGER NOT NULL DEFAULT 0,
    last_scraped_at TIMESTAMP,
    navigation_id   INTEGER NOT NULL REFERENCES navigations(id),
    parent_id       INTEGER REFERENCES categories(id)
);

CREATE TABLE IF NOT EXISTS products (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    source_id       TEXT UNIQUE,
    title           TEXT NOT NULL,
    price           NUMERIC,
    currency        TEXT,
    image_url       TEXT,
    author          TEXT,
    source_url      TEXT NOT NULL UNIQUE,
    last_scraped_at TIMESTAMP,
    category_id     INTEGER NOT NULL REFERENCES categories(id)
);

CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);

CREATE TABLE IF NOT EXISTS product_details (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    product_id    INTEGER NOT NULL UNIQUE REFERENCES products(id),
    description   TEXT,
    specs         TEXT, -- JSON object as text
    ratings_avg   REAL,
    reviews_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS reviews (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    product_id INTEGER NOT NULL REFERENCES products(id),
    author     TEXT NOT NULL,
    rating     REAL,
    text       TEXT NOT NULL,
    created_at TIMESTAMP,
    UNIQUE(product_id, author, text)
);

CREATE TABLE IF NOT EXISTS scrape_jobs (
    id          TEXT PRIMARY KEY,
    target_url  TEXT,
    target_type TEXT NOT NULL,
    status      TEXT NOT NULL DEFAULT 'PENDING',
    started_at  TIMESTAMP,
    finished_at TIMESTAMP,
    error_log   TEXT
);

CREATE TABLE IF NOT EXISTS view_history (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id    TEXT NOT NULL,
    product_id INTEGER NOT NULL REFERENCES products(id),
    viewed_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_view_history_user ON view_history(user_id);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
