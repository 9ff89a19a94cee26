// Package fetch retrieves search result pages either by plain HTTP GET or
// through a headless browser session, returning serialized documents.
package fetch

import (
	"context"

	"github.com/sells-group/newswatch-cli/internal/model"
)

// Mode declares how a site's pages must be fetched.
type Mode string

const (
	ModeStatic   Mode = "static"
	ModeRendered Mode = "rendered"
)

// Fetcher retrieves one page per call. Calls are stateless with respect to
// page content: nothing is cached, every call fetches fresh.
type Fetcher interface {
	Fetch(ctx context.Context, instr model.Instruction) (*model.RawPage, error)
}
