package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/newswatch-cli/internal/model"
)

// DatasetSink writes a run to a directory: one OUTPUT.json rollup, a
// report.json, and one numbered file per record under items/.
type DatasetSink struct {
	dir string
}

func NewDataset(dir string) *DatasetSink {
	if dir == "" {
		dir = "storage"
	}
	return &DatasetSink{dir: dir}
}

// datasetOutput is the OUTPUT.json shape.
type datasetOutput struct {
	Timestamp    string                `json:"timestamp"`
	Query        string                `json:"query"`
	MaxPages     int                   `json:"max_pages"`
	TotalResults int                   `json:"total_results"`
	Articles     []model.ArticleRecord `json:"articles"`
}

func (s *DatasetSink) Write(ctx context.Context, res *model.RunResult) error {
	itemsDir := filepath.Join(s.dir, "items")
	if err := os.MkdirAll(itemsDir, 0o755); err != nil {
		return eris.Wrapf(err, "dataset: create %s", itemsDir)
	}

	for i, rec := range res.Records {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "dataset: write cancelled")
		}
		name := filepath.Join(itemsDir, fmt.Sprintf("%06d.json", i+1))
		if err := writeJSON(name, rec); err != nil {
			return err
		}
	}

	out := datasetOutput{
		Timestamp:    res.Report.StartedAt.Format(time.RFC3339),
		Query:        res.Report.Query,
		MaxPages:     res.Report.MaxPages,
		TotalResults: len(res.Records),
		Articles:     res.Records,
	}
	if err := writeJSON(filepath.Join(s.dir, "OUTPUT.json"), out); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(s.dir, "report.json"), res.Report); err != nil {
		return err
	}

	zap.L().Info("dataset written",
		zap.String("component", "sink"),
		zap.String("dir", s.dir),
		zap.Int("items", len(res.Records)),
	)
	return nil
}

func (s *DatasetSink) Close() error { return nil }

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "dataset: marshal %s", filepath.Base(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "dataset: write %s", path)
	}
	return nil
}
