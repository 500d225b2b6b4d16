package legacyforum

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

var seedSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id   INTEGER PRIMARY KEY,
		username  TEXT NOT NULL,
		email     TEXT NOT NULL,
		joined_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS forums (
		forum_id    INTEGER PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT,
		position    INTEGER NOT NULL DEFAULT 0,
		parent_id   INTEGER
	);`,
	`CREATE TABLE IF NOT EXISTS threads (
		thread_id  INTEGER PRIMARY KEY,
		forum_id   INTEGER NOT NULL,
		user_id    INTEGER NOT NULL,
		title      TEXT NOT NULL,
		body       TEXT NOT NULL,
		pinned     INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS comments (
		comment_id        INTEGER PRIMARY KEY,
		thread_id         INTEGER NOT NULL,
		user_id           INTEGER NOT NULL,
		parent_comment_id INTEGER,
		body              TEXT NOT NULL,
		created_at        TEXT NOT NULL
	);`,
}

// Seed creates a small demo legacy forum database at the given path:
// a few members, a forum tree with an archive, pinned and plain threads,
// and comment chains including replies to replies.
func Seed(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	for _, schema := range seedSchema {
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	statements := []struct {
		query string
		args  [][]any
	}{
		{
			query: `INSERT OR IGNORE INTO users (user_id, username, email, joined_at) VALUES (?, ?, ?, ?)`,
			args: [][]any{
				{1, "alice", "alice@example.com", "2019-03-12 09:15:00"},
				{2, "bob", "bob@example.com", "2019-05-02 18:40:00"},
				{3, "carol", "carol@example.com", "2020-01-20 11:05:00"},
				{4, "dave", "dave@example.com", "2020-07-30 22:10:00"},
			},
		},
		{
			query: `INSERT OR IGNORE INTO forums (forum_id, name, description, position, parent_id) VALUES (?, ?, ?, ?, ?)`,
			args: [][]any{
				{1, "General", "General discussion", 1, nil},
				{2, "Support", "Help and troubleshooting", 2, nil},
				{3, "Installation", "Setup questions", 1, 2},
				{4, "Archive", "Old threads, read only", 99, nil},
			},
		},
		{
			query: `INSERT OR IGNORE INTO threads (thread_id, forum_id, user_id, title, body, pinned, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			args: [][]any{
				{1, 1, 1, "Welcome to the forum", "Introduce yourself here.", 1, "2019-03-12 10:00:00"},
				{2, 2, 2, "Login problems after upgrade", "I can't log in since v2.3.", 0, "2019-06-14 08:25:00"},
				{3, 3, 3, "Install fails on Debian", "The installer exits with code 1.", 0, "2020-02-02 16:45:00"},
				{4, 4, 1, "Old announcement", "This one stays behind.", 0, "2018-01-01 00:00:00"},
			},
		},
		{
			query: `INSERT OR IGNORE INTO comments (comment_id, thread_id, user_id, parent_comment_id, body, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			args: [][]any{
				{1, 1, 2, nil, "Hi, I'm Bob.", "2019-03-12 12:30:00"},
				{2, 1, 3, 1, "Welcome Bob!", "2019-03-13 09:00:00"},
				{3, 2, 1, nil, "Which browser are you on?", "2019-06-14 09:10:00"},
				{4, 2, 2, 3, "Firefox, cache cleared already.", "2019-06-14 09:40:00"},
				{5, 3, 4, nil, "Attach the install log please.", "2020-02-03 10:20:00"},
				{6, 4, 2, nil, "Comment in the archive.", "2018-01-02 00:00:00"},
			},
		},
	}

	for _, stmt := range statements {
		for _, args := range stmt.args {
			if _, err := db.Exec(stmt.query, args...); err != nil {
				return fmt.Errorf("failed to seed row: %w", err)
			}
		}
	}
	return nil
}
