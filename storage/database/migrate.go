package database

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Migrate brings the schema up to date. Statements are idempotent so running
// it repeatedly (every deploy, every test setup) is safe.
func Migrate(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrap(err, "migrating database")
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		name          TEXT NOT NULL,
		username      TEXT NOT NULL,
		email         TEXT NOT NULL DEFAULT '',
		is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		password_hash BYTEA NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL,
		last_login    TIMESTAMPTZ,
		CONSTRAINT users_username_uniq UNIQUE (username)
	);`,

	`CREATE TABLE IF NOT EXISTS questions (
		id         UUID PRIMARY KEY,
		question   TEXT NOT NULL,
		choice1    TEXT NOT NULL,
		choice2    TEXT NOT NULL,
		choice3    TEXT NOT NULL,
		choice4    TEXT NOT NULL,
		answer     INTEGER NOT NULL CHECK (answer BETWEEN 1 AND 4),
		marks      INTEGER NOT NULL CHECK (marks > 0),
		remarks    TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS quizzes (
		id         UUID PRIMARY KEY,
		name       TEXT NOT NULL,
		is_active  BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);`,

	`CREATE TABLE IF NOT EXISTS quiz_questions (
		id          UUID PRIMARY KEY,
		quiz_id     UUID NOT NULL REFERENCES quizzes (id),
		question_id UUID NOT NULL REFERENCES questions (id),
		CONSTRAINT quiz_questions_quiz_question_uniq UNIQUE (quiz_id, question_id)
	);`,

	`CREATE TABLE IF NOT EXISTS quiz_assignments (
		id             UUID PRIMARY KEY,
		quiz_id        UUID NOT NULL REFERENCES quizzes (id),
		user_id        UUID NOT NULL REFERENCES users (id),
		score_achieved INTEGER NOT NULL DEFAULT 0,
		is_submitted   BOOLEAN NOT NULL DEFAULT FALSE,
		is_active      BOOLEAN NOT NULL DEFAULT TRUE,
		created_at     TIMESTAMPTZ NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL,
		CONSTRAINT quiz_assignments_quiz_user_uniq UNIQUE (quiz_id, user_id)
	);`,

	`CREATE TABLE IF NOT EXISTS user_responses (
		id          UUID PRIMARY KEY,
		quiz_id     UUID NOT NULL REFERENCES quizzes (id),
		user_id     UUID NOT NULL REFERENCES users (id),
		question_id UUID NOT NULL REFERENCES questions (id),
		choice      INTEGER NOT NULL CHECK (choice BETWEEN 1 AND 4),
		created_at  TIMESTAMPTZ NOT NULL,
		CONSTRAINT user_responses_quiz_user_question_uniq UNIQUE (quiz_id, user_id, question_id)
	);`,

	`CREATE INDEX IF NOT EXISTS idx_quiz_assignments_user ON quiz_assignments (user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_quiz_questions_quiz ON quiz_questions (quiz_id);`,
}
