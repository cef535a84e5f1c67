package repo

import (
	"context"
	"fmt"
)

// The schema is shared by SQLite and PostgreSQL. There are no
// foreign keys: reference integrity is checked by the catalogue service.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS authors (
		id TEXT PRIMARY KEY NOT NULL,
		first_name TEXT NOT NULL,
		family_name TEXT NOT NULL,
		date_of_birth DATE,
		date_of_death DATE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_authors_family_name ON authors (family_name)`,

	`CREATE TABLE IF NOT EXISTS books (
		id TEXT PRIMARY KEY NOT NULL,
		title TEXT NOT NULL,
		summary TEXT NOT NULL,
		isbn TEXT NOT NULL,
		author_id TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_books_title ON books (title)`,
	`CREATE INDEX IF NOT EXISTS idx_books_author_id ON books (author_id)`,

	`CREATE TABLE IF NOT EXISTS book_genres (
		book_id TEXT NOT NULL,
		genre_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (book_id, genre_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_book_genres_genre_id ON book_genres (genre_id)`,

	`CREATE TABLE IF NOT EXISTS genres (
		id TEXT PRIMARY KEY NOT NULL,
		name TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_genres_name ON genres (name)`,

	`CREATE TABLE IF NOT EXISTS book_instances (
		id TEXT PRIMARY KEY NOT NULL,
		book_id TEXT NOT NULL,
		imprint TEXT NOT NULL,
		status TEXT NOT NULL,
		due_back DATE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_book_instances_book_id ON book_instances (book_id)`,
}

// CreateSchema creates missing tables and indexes. It is safe to run repeatedly.
func (r *Repo) CreateSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}
