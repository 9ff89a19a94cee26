// Package sink persists completed runs. Three backends are supported:
// a dataset directory of JSON files, SQLite, and Postgres.
package sink

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/newswatch-cli/internal/model"
)

// Sink receives a finished run. Write is called once per run; Close
// releases any underlying handles.
type Sink interface {
	Write(ctx context.Context, res *model.RunResult) error
	Close() error
}

// Config selects and tunes the output backend.
type Config struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Dir         string `yaml:"dir" mapstructure:"dir"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// New builds the sink named by cfg.Driver, running migrations for the
// database backends. An empty driver means the dataset directory.
func New(ctx context.Context, cfg Config) (Sink, error) {
	switch cfg.Driver {
	case "", "dataset":
		return NewDataset(cfg.Dir), nil
	case "sqlite":
		s, err := NewSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := NewPostgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, eris.Errorf("sink: unknown store driver %q", cfg.Driver)
	}
}
