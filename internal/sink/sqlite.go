package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/newswatch-cli/internal/model"
)

// SQLiteSink persists runs with modernc.org/sqlite.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteSink, error) {
	if dsn == "" {
		dsn = "newswatch.db"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteSink{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	query         TEXT NOT NULL,
	max_pages     INTEGER NOT NULL,
	report        TEXT NOT NULL,
	total_records INTEGER NOT NULL,
	started_at    DATETIME NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS articles (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	title      TEXT NOT NULL,
	url        TEXT NOT NULL,
	date       TEXT,
	snippet    TEXT,
	source     TEXT,
	query      TEXT NOT NULL,
	source_url TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_articles_run_id ON articles(run_id);
CREATE INDEX IF NOT EXISTS idx_articles_query ON articles(query);
CREATE INDEX IF NOT EXISTS idx_articles_url ON articles(url);
`

func (s *SQLiteSink) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// Write stores the run row and its article rows in one transaction.
func (s *SQLiteSink) Write(ctx context.Context, res *model.RunResult) error {
	reportJSON, err := json.Marshal(res.Report)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal report")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, query, max_pages, report, total_records, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		res.Report.RunID, res.Report.Query, res.Report.MaxPages,
		string(reportJSON), len(res.Records), res.Report.StartedAt,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert run")
	}

	now := time.Now().UTC()
	for _, rec := range res.Records {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO articles (id, run_id, title, url, date, snippet, source, query, source_url, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), res.Report.RunID,
			rec.Title, rec.URL, rec.Date, rec.Snippet, rec.Source, rec.Query, rec.SourceURL, now,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert article %s", rec.URL)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}
