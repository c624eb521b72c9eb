// Package database provides database connection management.
package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Open opens a SQLite connection with foreign keys enabled.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", path))
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open() > %w", err)
	}
	// SQLite serializes writes; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	return db, nil
}

// OpenInMemory opens a private in-memory database, used by tests.
func OpenInMemory() (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open() > %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS questions (
		qid INTEGER PRIMARY KEY AUTOINCREMENT,
		image_id TEXT NOT NULL,
		caption_id TEXT NOT NULL,
		caption TEXT NOT NULL,
		lemma TEXT NOT NULL,
		pos TEXT NOT NULL,
		cefr TEXT NOT NULL,
		answer TEXT NOT NULL,
		blanked_tokens TEXT NOT NULL,
		lemmatized_tokens TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(lemma, pos, cefr)
	)`,
	`CREATE TABLE IF NOT EXISTS choices (
		choice_id INTEGER PRIMARY KEY AUTOINCREMENT,
		qid INTEGER NOT NULL,
		choice_text TEXT NOT NULL,
		is_correct BOOLEAN DEFAULT FALSE,
		choice_order INTEGER DEFAULT 0,
		FOREIGN KEY (qid) REFERENCES questions (qid) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS learning_logs (
		log_id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		qid INTEGER NOT NULL,
		selected_choice TEXT NOT NULL,
		is_correct BOOLEAN NOT NULL,
		generated_image_path TEXT,
		session_id TEXT NOT NULL,
		answered_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users (user_id) ON DELETE CASCADE,
		FOREIGN KEY (qid) REFERENCES questions (qid) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS generated_images (
		image_id INTEGER PRIMARY KEY AUTOINCREMENT,
		qid INTEGER NOT NULL,
		wrong_choice TEXT NOT NULL,
		image_path TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (qid) REFERENCES questions (qid) ON DELETE CASCADE,
		UNIQUE(qid, wrong_choice)
	)`,
	`CREATE TABLE IF NOT EXISTS learning_sessions (
		session_id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		mode TEXT CHECK(mode IN ('learning', 'review')) NOT NULL,
		pos_filter TEXT NOT NULL,
		cefr_filter TEXT NOT NULL,
		total_questions INTEGER DEFAULT 10,
		current_question INTEGER DEFAULT 0,
		is_completed BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users (user_id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_criteria ON questions(pos, cefr)`,
	`CREATE INDEX IF NOT EXISTS idx_learning_logs_user ON learning_logs(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_learning_logs_session ON learning_logs(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_choices_qid ON choices(qid)`,
	`CREATE INDEX IF NOT EXISTS idx_generated_images_qid ON generated_images(qid)`,
}

// Migrate creates the tables and indexes when they do not exist yet.
func Migrate(db *sqlx.DB) error {
	for _, statement := range schema {
		if _, err := db.Exec(statement); err != nil {
			return fmt.Errorf("db.Exec(%.40s) > %w", statement, err)
		}
	}
	return nil
}
