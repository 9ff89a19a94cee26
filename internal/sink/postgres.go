package sink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/newswatch-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the sink uses. pgxmock's pool
// implements it, which keeps the tests driverless.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresSink persists runs using pgxpool.
type PostgresSink struct {
	pool    Pool
	closeFn func()
}

// NewPostgres creates a PostgresSink with a connection pool.
func NewPostgres(ctx context.Context, cfg Config) (*PostgresSink, error) {
	if cfg.DatabaseURL == "" {
		return nil, eris.New("postgres: no database_url configured (set store.database_url)")
	}
	pgxCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if cfg.MaxConns > 0 {
		maxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		minConns = cfg.MinConns
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresSink{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	query         TEXT NOT NULL,
	max_pages     INTEGER NOT NULL,
	report        JSONB NOT NULL,
	total_records INTEGER NOT NULL,
	started_at    TIMESTAMPTZ NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
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
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_articles_run_id ON articles(run_id);
CREATE INDEX IF NOT EXISTS idx_articles_query ON articles(query);
CREATE INDEX IF NOT EXISTS idx_articles_url ON articles(url);
`

func (s *PostgresSink) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresSink) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

var articleColumns = []string{
	"id", "run_id", "title", "url", "date", "snippet", "source", "query", "source_url", "created_at",
}

// Write stores the run row, then bulk-loads the articles with COPY.
func (s *PostgresSink) Write(ctx context.Context, res *model.RunResult) error {
	reportJSON, err := json.Marshal(res.Report)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal report")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, query, max_pages, report, total_records, started_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		res.Report.RunID, res.Report.Query, res.Report.MaxPages,
		reportJSON, len(res.Records), res.Report.StartedAt,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: insert run")
	}

	if len(res.Records) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(res.Records))
	for _, rec := range res.Records {
		rows = append(rows, []any{
			uuid.New().String(), res.Report.RunID,
			rec.Title, rec.URL, rec.Date, rec.Snippet, rec.Source, rec.Query, rec.SourceURL, now,
		})
	}

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{"articles"}, articleColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return eris.Wrap(err, "postgres: copy articles")
	}
	if n != int64(len(rows)) {
		return eris.Errorf("postgres: copied %d of %d articles", n, len(rows))
	}
	return nil
}
